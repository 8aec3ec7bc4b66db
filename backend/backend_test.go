package backend

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"sysproxy-service/config"
	"sysproxy-service/data"
	"sysproxy-service/resolver"
	"sysproxy-service/store"
)

const regExport = "Windows Registry Editor Version 5.00\n\n" +
	"[HKEY_CURRENT_USER\\Software\\Microsoft\\Windows\\CurrentVersion\\Internet Settings]\n" +
	"\"ProxyEnable\"=dword:00000001\n" +
	"\"ProxyServer\"=\"socks=10.1.1.1:1080\"\n"

func TestOpenReg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.reg")
	if err := os.WriteFile(path, []byte(regExport), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Open(config.StoreReg, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	u, _ := url.Parse("https://example.com/")
	if got := resolver.New(b).Resolve(u).String(); got != "socks://10.1.1.1:1080" {
		t.Errorf("Resolve = %q", got)
	}
}

func TestOpenBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	snap, err := data.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := snap.Put(resolver.ConnectionsKey, resolver.ValueConnectionSettings,
		store.BinaryValue([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x08})); err != nil {
		t.Fatalf("Put: %v", err)
	}
	snap.Close()

	b, err := Open(config.StoreBolt, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	u, _ := url.Parse("http://example.com/")
	if got := resolver.New(b).Resolve(u); got.Kind != resolver.AutoDiscover {
		t.Errorf("Resolve = %v, want auto-discover", got)
	}
}

func TestOpenErrors(t *testing.T) {
	cases := []struct {
		name, kind, source string
	}{
		{"file without source", config.StoreFile, ""},
		{"unknown kind", "etcd", "x"},
		{"missing reg file", config.StoreReg, filepath.Join(t.TempDir(), "none.reg")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Open(tc.kind, tc.source); err == nil {
				t.Errorf("Open(%q, %q) succeeded", tc.kind, tc.source)
			}
		})
	}
}
