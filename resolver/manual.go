package resolver

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ManualTable maps a lowercase scheme to its proxy.
type ManualTable map[string]*url.URL

// ParseManual parses a ProxyServer value. Two forms exist:
//
//	1.2.3.4:8080
//	ftp=1.2.3.4:8080;https=5.6.7.8:3128
//
// An entry without a scheme is the http proxy. When a scheme is listed
// more than once the leftmost entry wins. Malformed entries are dropped.
func ParseManual(spec string) ManualTable {
	head, tail, found := strings.Cut(spec, ";")

	table := ManualTable{}
	if found {
		table = ParseManual(tail)
	}

	scheme, u, err := manualEntry(head)
	if err != nil {
		klog.V(4).Infof("dropping proxy entry %q: %v", head, err)
		return table
	}
	table[scheme] = u
	return table
}

// manualEntry returns the table key and proxy of one entry. The proxy
// may be written with its own scheme, as Internet Options stores what
// the user typed.
func manualEntry(entry string) (string, *url.URL, error) {
	scheme, hostPort, keyed := strings.Cut(strings.TrimSpace(entry), "=")
	if !keyed {
		scheme, hostPort = "http", scheme
	}
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	hostPort = strings.TrimSpace(hostPort)
	if scheme == "" {
		return "", nil, errEmptyScheme
	}

	raw := scheme + "://" + hostPort
	if strings.Contains(hostPort, "://") {
		raw = hostPort
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, err
	}
	if keyed && u.Scheme != scheme {
		return "", nil, errors.Wrapf(errSchemeMismatch, "%s entry points at %s", scheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", nil, errEmptyHost
	}
	if u.Port() == "" && strings.HasSuffix(u.Host, ":") {
		return "", nil, errEmptyPort
	}
	return scheme, u, nil
}

// Lookup picks the entry for scheme, then http, then socks.
func (t ManualTable) Lookup(scheme string) (*url.URL, bool) {
	for _, s := range []string{scheme, "http", "socks"} {
		if u, ok := t[s]; ok {
			return u, true
		}
	}
	return nil, false
}
