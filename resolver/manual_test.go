package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tableStrings(t ManualTable) map[string]string {
	out := make(map[string]string, len(t))
	for k, u := range t {
		out[k] = u.String()
	}
	return out
}

func TestParseManual(t *testing.T) {
	cases := []struct {
		name string
		spec string
		want map[string]string
	}{
		{
			name: "bare host port",
			spec: "1.2.3.4:8080",
			want: map[string]string{"http": "http://1.2.3.4:8080"},
		},
		{
			name: "per scheme",
			spec: "ftp=1.2.3.4:8080;https=5.6.7.8:3128",
			want: map[string]string{"ftp": "ftp://1.2.3.4:8080", "https": "https://5.6.7.8:3128"},
		},
		{
			name: "first listed wins",
			spec: "http=1.1.1.1:80;http=2.2.2.2:80",
			want: map[string]string{"http": "http://1.1.1.1:80"},
		},
		{
			name: "first listed wins across three",
			spec: "socks=1.1.1.1:1080;ftp=3.3.3.3:21;socks=2.2.2.2:1080;socks=4.4.4.4:1080",
			want: map[string]string{"socks": "socks://1.1.1.1:1080", "ftp": "ftp://3.3.3.3:21"},
		},
		{
			name: "bare entry beats later http",
			spec: "9.9.9.9:3128;http=1.1.1.1:80",
			want: map[string]string{"http": "http://9.9.9.9:3128"},
		},
		{
			name: "malformed entry dropped",
			spec: "http=1.1.1.1:80;ftp=2.2.2.2:notaport;socks=3.3.3.3:1080",
			want: map[string]string{"http": "http://1.1.1.1:80", "socks": "socks://3.3.3.3:1080"},
		},
		{
			name: "malformed duplicate does not shadow",
			spec: "http=bad host:x;http=1.1.1.1:80",
			want: map[string]string{"http": "http://1.1.1.1:80"},
		},
		{
			name: "empty scheme dropped",
			spec: "=1.1.1.1:80;https=2.2.2.2:443",
			want: map[string]string{"https": "https://2.2.2.2:443"},
		},
		{
			name: "empty entries",
			spec: ";;https=2.2.2.2:443;",
			want: map[string]string{"https": "https://2.2.2.2:443"},
		},
		{
			name: "whitespace and case",
			spec: " HTTPS = proxy.example:443 ; socks=proxy.example:1080",
			want: map[string]string{"https": "https://proxy.example:443", "socks": "socks://proxy.example:1080"},
		},
		{
			name: "bare entry with its own scheme",
			spec: "http://1.2.3.4:8080",
			want: map[string]string{"http": "http://1.2.3.4:8080"},
		},
		{
			name: "keyed entry with its own scheme",
			spec: "http=http://1.2.3.4:8080;socks=socks://5.6.7.8:1080",
			want: map[string]string{"http": "http://1.2.3.4:8080", "socks": "socks://5.6.7.8:1080"},
		},
		{
			name: "keyed entry with another scheme dropped",
			spec: "https=http://1.2.3.4:8080;https=5.6.7.8:3128",
			want: map[string]string{"https": "https://5.6.7.8:3128"},
		},
		{
			name: "empty port dropped",
			spec: "http=1.2.3.4:;socks=5.6.7.8:1080",
			want: map[string]string{"socks": "socks://5.6.7.8:1080"},
		},
		{
			name: "empty string",
			spec: "",
			want: map[string]string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tableStrings(ParseManual(tc.spec))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseManual(%q) mismatch (-want +got):\n%s", tc.spec, diff)
			}
		})
	}
}

func TestManualTableLookup(t *testing.T) {
	cases := []struct {
		name   string
		spec   string
		scheme string
		want   string
	}{
		{"exact", "ftp=1.2.3.4:8080;https=5.6.7.8:3128", "ftp", "ftp://1.2.3.4:8080"},
		{"no fallback", "ftp=1.2.3.4:8080;https=5.6.7.8:3128", "gopher", ""},
		{"http fallback", "http=1.1.1.1:80;socks=2.2.2.2:1080", "wss", "http://1.1.1.1:80"},
		{"socks fallback", "ftp=1.2.3.4:21;socks=2.2.2.2:1080", "https", "socks://2.2.2.2:1080"},
		{"bare is http", "3.3.3.3:3128", "https", "http://3.3.3.3:3128"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := ParseManual(tc.spec).Lookup(tc.scheme)
			got := ""
			if ok {
				got = u.String()
			}
			if got != tc.want {
				t.Errorf("Lookup(%q) = %q, want %q", tc.scheme, got, tc.want)
			}
		})
	}
}
