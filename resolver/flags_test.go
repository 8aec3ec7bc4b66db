package resolver

import "testing"

func TestIsEnabled(t *testing.T) {
	blob := func(flags byte) []byte {
		return []byte{0x46, 0, 0, 0, 0x05, 0, 0, 0, flags}
	}
	cases := []struct {
		name string
		blob []byte
		flag Flag
		want bool
	}{
		{"nil blob", nil, FlagAutoDiscover, false},
		{"eight bytes", []byte{0, 0, 0, 0, 0, 0, 0, 0xff}, FlagAutoDiscover, false},
		{"eight bytes pac", []byte{0, 0, 0, 0, 0, 0, 0, 0xff}, FlagAutoConfig, false},
		{"wpad set", blob(0x09), FlagAutoDiscover, true},
		{"wpad clear", blob(0x05), FlagAutoDiscover, false},
		{"pac set", blob(0x05), FlagAutoConfig, true},
		{"pac clear", blob(0x09), FlagAutoConfig, false},
		{"all bits", blob(0x0f), FlagAutoConfig, true},
		{"proxy only", blob(0x03), FlagAutoConfig, false},
		{"longer blob", append(blob(0x08), 1, 2, 3), FlagAutoDiscover, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEnabled(tc.blob, tc.flag); got != tc.want {
				t.Errorf("IsEnabled(%x, %d) = %v, want %v", tc.blob, tc.flag, got, tc.want)
			}
		})
	}
}

func TestIsEnabledComparesMaskedByte(t *testing.T) {
	// With the comparison bound before the AND, 0x04 & (0x04 == 0x04)
	// would be 0x04 & 1 == 0 and report the flag as clear.
	if !IsEnabled([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x04}, FlagAutoConfig) {
		t.Errorf("auto-config bit not detected")
	}
	// and 0x01 & (x == mask) would be truthy for any odd byte
	if IsEnabled([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x01}, FlagAutoDiscover) {
		t.Errorf("auto-discover reported for direct-only flags")
	}
}

func TestDecodeFlags(t *testing.T) {
	got := DecodeFlags([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0x0d})
	if !got.AutoDiscover || !got.AutoConfig {
		t.Errorf("DecodeFlags = %+v, want both enabled", got)
	}
	if got := DecodeFlags([]byte{0x0d}); got != (EnabledFlags{}) {
		t.Errorf("DecodeFlags(short) = %+v, want none", got)
	}
}
