// Package backend picks the settings store the resolver reads from.
package backend

import (
	"runtime"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"sysproxy-service/config"
	"sysproxy-service/data"
	"sysproxy-service/store"
)

// Backend is an opened store. Close releases files held by the store.
type Backend struct {
	store.Store
	closer func() error
}

func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// Open opens the store named by kind. source is the file read by the
// file, reg and bolt stores and is ignored by the registry store.
func Open(kind, source string) (*Backend, error) {
	if kind == "" {
		kind = Default()
	}
	if kind != config.StoreRegistry && source == "" {
		return nil, errors.Errorf("store %q needs a source file", kind)
	}

	klog.V(1).Infof("opening %s store %s", kind, source)
	switch kind {
	case config.StoreRegistry:
		r, err := store.NewRegistry()
		if err != nil {
			return nil, err
		}
		return &Backend{Store: r}, nil
	case config.StoreFile:
		m, err := store.LoadFile(source)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: m}, nil
	case config.StoreReg:
		m, err := store.LoadRegFile(source)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: m}, nil
	case config.StoreBolt:
		s, err := data.Open(source)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: s, closer: s.Close}, nil
	default:
		return nil, errors.Errorf("unknown store %q", kind)
	}
}

// Default is the live registry on Windows and the bolt snapshot
// elsewhere.
func Default() string {
	if runtime.GOOS == "windows" {
		return config.StoreRegistry
	}
	return config.StoreBolt
}
