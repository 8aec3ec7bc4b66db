// Package resolver decides which proxy a client should use for a
// destination from Windows Internet Settings.
package resolver

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"sysproxy-service/store"
)

const (
	BaseKey        = `Software\Microsoft\Windows\CurrentVersion\Internet Settings`
	ConnectionsKey = BaseKey + `\Connections`

	ValueConnectionSettings = "DefaultConnectionSettings"
	ValueAutoConfigURL      = "AutoConfigURL"
	ValueProxyEnable        = "ProxyEnable"
	ValueProxyServer        = "ProxyServer"

	pacPrefix = "pac+"
)

// Values lists every value Resolve may read.
var Values = []store.Key{
	{Path: ConnectionsKey, Name: ValueConnectionSettings},
	{Path: BaseKey, Name: ValueAutoConfigURL},
	{Path: BaseKey, Name: ValueProxyEnable},
	{Path: BaseKey, Name: ValueProxyServer},
}

var (
	errEmptyScheme    = errors.New("empty scheme")
	errEmptyHost      = errors.New("empty host")
	errEmptyPort      = errors.New("empty port")
	errSchemeMismatch = errors.New("scheme does not match its key")
	errDrivePath      = errors.New("bare drive path is not a URL")
)

// Resolver is implemented by every platform source of proxy settings.
type Resolver interface {
	Resolve(dst *url.URL) Setting
}

// Registry resolves from WinINET settings read through a store.
type Registry struct {
	store store.Store
}

var _ Resolver = (*Registry)(nil)

func New(s store.Store) *Registry {
	return &Registry{store: s}
}

// Resolve walks auto-discovery, the auto-config script, then the manual
// proxy list, and falls back to a direct connection. It never fails.
func (r *Registry) Resolve(dst *url.URL) Setting {
	flags := r.flags()

	if flags.AutoDiscover {
		klog.V(2).Infof("%s: auto-discovery enabled", target(dst))
		return AutoDiscoverSetting()
	}

	if flags.AutoConfig {
		if u, ok := r.autoConfigURL(); ok {
			klog.V(2).Infof("%s: auto-config script %s", target(dst), u)
			return AutoConfigSetting(u)
		}
	}

	if table, ok := r.manualTable(); ok {
		scheme := ""
		if dst != nil {
			scheme = dst.Scheme
		}
		if u, ok := table.Lookup(scheme); ok {
			klog.V(2).Infof("%s: manual proxy %s", target(dst), u)
			return ManualSetting(u)
		}
		klog.V(4).Infof("%s: no manual proxy for scheme %q", target(dst), scheme)
	}

	klog.V(2).Infof("%s: direct", target(dst))
	return DirectSetting()
}

func (r *Registry) flags() EnabledFlags {
	blob, err := store.ReadBytes(r.store, ConnectionsKey, ValueConnectionSettings)
	if err != nil {
		klog.V(4).Infof("%s not configured: %v", ValueConnectionSettings, err)
		return EnabledFlags{}
	}
	return DecodeFlags(blob)
}

func (r *Registry) autoConfigURL() (*url.URL, bool) {
	raw, err := store.ReadString(r.store, BaseKey, ValueAutoConfigURL)
	if err != nil {
		klog.V(4).Infof("%s not configured: %v", ValueAutoConfigURL, err)
		return nil, false
	}
	u, err := parseAutoConfig(raw)
	if err != nil {
		klog.V(4).Infof("ignoring %s %q: %v", ValueAutoConfigURL, raw, err)
		return nil, false
	}
	return u, true
}

// parseAutoConfig prefixes raw with pac+ and requires the result to be
// an absolute URL naming a host or a path. A bare Windows path such as
// C:\proxy.pac has no scheme and is rejected; WinINET wants file:// here.
func parseAutoConfig(raw string) (*url.URL, error) {
	u, err := url.Parse(pacPrefix + strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	scheme := strings.TrimPrefix(u.Scheme, pacPrefix)
	if scheme == u.Scheme || scheme == "" {
		return nil, errEmptyScheme
	}
	if len(scheme) == 1 {
		return nil, errDrivePath
	}
	if u.Host == "" && u.Path == "" && u.Opaque == "" {
		return nil, errEmptyHost
	}
	return u, nil
}

func (r *Registry) manualEnabled() bool {
	enabled, err := store.ReadInteger(r.store, BaseKey, ValueProxyEnable)
	if err != nil {
		klog.V(4).Infof("%s not configured: %v", ValueProxyEnable, err)
		return false
	}
	return enabled != 0
}

func (r *Registry) manualTable() (ManualTable, bool) {
	if !r.manualEnabled() {
		return nil, false
	}
	spec, err := store.ReadString(r.store, BaseKey, ValueProxyServer)
	if err != nil {
		klog.V(4).Infof("%s not configured: %v", ValueProxyServer, err)
		return nil, false
	}
	return ParseManual(spec), true
}

func target(dst *url.URL) string {
	if dst == nil {
		return "<nil>"
	}
	return dst.Redacted()
}
