package resolver

// Flag is a bit of the ninth byte of DefaultConnectionSettings.
type Flag uint8

const (
	FlagDirect       Flag = 1 << 0 // direct connection allowed
	FlagProxy        Flag = 1 << 1 // manual proxy checked in Internet Options
	FlagAutoConfig   Flag = 1 << 2 // use an automatic configuration script
	FlagAutoDiscover Flag = 1 << 3 // automatically detect settings (WPAD)
)

const flagsOffset = 8

// EnabledFlags are the flags Resolve consults.
type EnabledFlags struct {
	AutoDiscover bool `json:"auto_discover"`
	AutoConfig   bool `json:"auto_config"`
}

// IsEnabled reports whether f is set in a connection settings blob.
// Blobs too short to carry the flags byte enable nothing.
func IsEnabled(blob []byte, f Flag) bool {
	if len(blob) <= flagsOffset {
		return false
	}
	return (blob[flagsOffset] & byte(f)) == byte(f)
}

// DecodeFlags reads the auto-discovery and auto-config flags of blob.
func DecodeFlags(blob []byte) EnabledFlags {
	return EnabledFlags{
		AutoDiscover: IsEnabled(blob, FlagAutoDiscover),
		AutoConfig:   IsEnabled(blob, FlagAutoConfig),
	}
}
