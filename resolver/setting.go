package resolver

import (
	"encoding/json"
	"net/url"
)

type Kind uint8

const (
	Direct Kind = iota
	AutoDiscover
	AutoConfig
	Manual
)

func (k Kind) String() string {
	switch k {
	case AutoDiscover:
		return "auto-discover"
	case AutoConfig:
		return "auto-config"
	case Manual:
		return "manual"
	default:
		return "direct"
	}
}

// Setting is the outcome of one resolution. URL is always set:
// direct://, wpad://, pac+<script url> or the manual proxy.
type Setting struct {
	Kind Kind
	URL  *url.URL
}

func DirectSetting() Setting {
	return Setting{Kind: Direct, URL: &url.URL{Scheme: "direct"}}
}

func AutoDiscoverSetting() Setting {
	return Setting{Kind: AutoDiscover, URL: &url.URL{Scheme: "wpad"}}
}

func AutoConfigSetting(u *url.URL) Setting {
	return Setting{Kind: AutoConfig, URL: u}
}

func ManualSetting(u *url.URL) Setting {
	return Setting{Kind: Manual, URL: u}
}

func (s Setting) String() string {
	if s.URL == nil {
		return s.Kind.String() + "://"
	}
	// url.URL drops the "//" of an empty authority
	if s.URL.Host == "" && s.URL.Path == "" && s.URL.Opaque == "" {
		return s.URL.Scheme + "://"
	}
	return s.URL.String()
}

func (s Setting) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		URL  string `json:"url"`
	}{s.Kind.String(), s.String()})
}
