//go:build windows

package store

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

// Registry reads values below HKEY_CURRENT_USER.
type Registry struct {
	root registry.Key
}

func NewRegistry() (*Registry, error) {
	return &Registry{root: registry.CURRENT_USER}, nil
}

func (r *Registry) Lookup(path, name string) (Value, error) {
	k, err := registry.OpenKey(r.root, path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Value{}, ErrNotFound
		}
		return Value{}, errors.Wrapf(err, "open %s", path)
	}
	defer k.Close()

	_, typ, err := k.GetValue(name, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Value{}, ErrNotFound
		}
		return Value{}, errors.Wrapf(err, "query %s\\%s", path, name)
	}

	switch typ {
	case registry.BINARY:
		b, _, err := k.GetBinaryValue(name)
		if err != nil {
			return Value{}, errors.Wrapf(err, "read %s\\%s", path, name)
		}
		return Value{Kind: Binary, Data: b}, nil
	case registry.SZ, registry.EXPAND_SZ:
		s, _, err := k.GetStringValue(name)
		if err != nil {
			return Value{}, errors.Wrapf(err, "read %s\\%s", path, name)
		}
		kind := String
		if typ == registry.EXPAND_SZ {
			kind = ExpandString
		}
		return Value{Kind: kind, Data: []byte(s)}, nil
	case registry.DWORD:
		i, _, err := k.GetIntegerValue(name)
		if err != nil {
			return Value{}, errors.Wrapf(err, "read %s\\%s", path, name)
		}
		return Value{Kind: DWord, Integer: uint32(i)}, nil
	default:
		return Value{}, errors.Wrapf(ErrTypeMismatch, "%s\\%s has registry type %d", path, name, typ)
	}
}
