package store

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const (
	testBase        = `Software\Microsoft\Windows\CurrentVersion\Internet Settings`
	testConnections = testBase + `\Connections`
)

func TestRead(t *testing.T) {
	m := NewMemory()
	m.Set(testBase, "ProxyEnable", DWordValue(1))
	m.Set(testBase, "ProxyServer", StringValue("10.0.0.1:3128\x00"))
	m.Set(testConnections, "DefaultConnectionSettings", BinaryValue([]byte{0x46, 0, 0, 0}))

	cases := []struct {
		name    string
		path    string
		value   string
		want    Want
		wantErr error
	}{
		{"dword as integer", testBase, "ProxyEnable", WantInteger, nil},
		{"dword as bytes", testBase, "ProxyEnable", WantBytes, ErrTypeMismatch},
		{"string as bytes", testBase, "ProxyServer", WantBytes, nil},
		{"string as integer", testBase, "ProxyServer", WantInteger, ErrTypeMismatch},
		{"binary as bytes", testConnections, "DefaultConnectionSettings", WantBytes, nil},
		{"missing value", testBase, "AutoConfigURL", WantBytes, ErrNotFound},
		{"missing key", `Software\Nowhere`, "ProxyEnable", WantInteger, ErrNotFound},
		{"both outputs", testBase, "ProxyEnable", WantBytes | WantInteger, ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(m, tc.path, tc.value, tc.want)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Read(%q) error = %v, want %v", tc.value, err, tc.wantErr)
			}
		})
	}
}

func TestReadHelpers(t *testing.T) {
	m := NewMemory()
	m.Set(testBase, "proxyserver", StringValue("http=1.1.1.1:80\x00\x00"))
	m.Set(slashed(testBase), "ProxyEnable", DWordValue(7))

	s, err := ReadString(m, testBase, "ProxyServer")
	if err != nil || s != "http=1.1.1.1:80" {
		t.Errorf("ReadString = %q, %v", s, err)
	}
	i, err := ReadInteger(m, testBase, "PROXYENABLE")
	if err != nil || i != 7 {
		t.Errorf("ReadInteger = %d, %v", i, err)
	}
}

// slashed swaps separators to check path normalization.
func slashed(p string) string {
	out := []byte(p)
	for i, c := range out {
		if c == '\\' {
			out[i] = '/'
		}
	}
	return string(out)
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	blob := []byte{1, 2, 3}
	m.Set(testConnections, "DefaultConnectionSettings", BinaryValue(blob))
	blob[0] = 9

	v, err := m.Lookup(testConnections, "DefaultConnectionSettings")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	v.Data[1] = 9

	again, _ := m.Lookup(testConnections, "DefaultConnectionSettings")
	if diff := cmp.Diff([]byte{1, 2, 3}, again.Data); diff != "" {
		t.Errorf("stored data changed (-want +got):\n%s", diff)
	}
}

func TestCopy(t *testing.T) {
	src := NewMemory()
	src.Set(testBase, "ProxyEnable", DWordValue(1))
	src.Set(testBase, "ProxyServer", StringValue("1.2.3.4:8080"))
	dst := NewMemory()

	n, err := Copy(dst, src, []Key{
		{testBase, "ProxyEnable"},
		{testBase, "ProxyServer"},
		{testBase, "AutoConfigURL"},
	})
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 2 {
		t.Errorf("Copy copied %d values, want 2", n)
	}
	if _, err := dst.Lookup(testBase, "AutoConfigURL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AutoConfigURL should stay absent, got %v", err)
	}
	if s, _ := ReadString(dst, testBase, "ProxyServer"); s != "1.2.3.4:8080" {
		t.Errorf("ProxyServer = %q", s)
	}
}
