package resolver

import (
	"github.com/pkg/errors"

	"sysproxy-service/store"
)

// Snapshot is the decoded view of every value Resolve consults.
type Snapshot struct {
	Flags         EnabledFlags      `json:"flags"`
	RawFlags      *uint8            `json:"raw_flags,omitempty"`
	AutoConfigURL string            `json:"auto_config_url,omitempty"`
	ProxyEnable   *uint32           `json:"proxy_enable,omitempty"`
	ProxyServer   string            `json:"proxy_server,omitempty"`
	Manual        map[string]string `json:"manual,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// Inspect reads the consulted values for diagnostics. Values that are
// absent are left empty; other read failures are listed in Errors.
func (r *Registry) Inspect() Snapshot {
	var snap Snapshot
	note := func(name string, err error) {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return
		}
		if snap.Errors == nil {
			snap.Errors = make(map[string]string)
		}
		snap.Errors[name] = err.Error()
	}

	blob, err := store.ReadBytes(r.store, ConnectionsKey, ValueConnectionSettings)
	note(ValueConnectionSettings, err)
	snap.Flags = DecodeFlags(blob)
	if len(blob) > flagsOffset {
		b := blob[flagsOffset]
		snap.RawFlags = &b
	}

	snap.AutoConfigURL, err = store.ReadString(r.store, BaseKey, ValueAutoConfigURL)
	note(ValueAutoConfigURL, err)

	if enabled, err := store.ReadInteger(r.store, BaseKey, ValueProxyEnable); err == nil {
		snap.ProxyEnable = &enabled
	} else {
		note(ValueProxyEnable, err)
	}

	snap.ProxyServer, err = store.ReadString(r.store, BaseKey, ValueProxyServer)
	note(ValueProxyServer, err)
	if snap.ProxyServer != "" {
		snap.Manual = make(map[string]string)
		for scheme, u := range ParseManual(snap.ProxyServer) {
			snap.Manual[scheme] = u.String()
		}
	}
	return snap
}
