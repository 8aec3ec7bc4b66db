// Package store reads named values from a Windows-style settings store.
package store

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound       = errors.New("value not found")
	ErrTypeMismatch   = errors.New("value has unexpected type")
	ErrInvalidRequest = errors.New("bytes and integer output requested together")
)

type Kind uint8

const (
	Binary Kind = iota + 1
	String
	ExpandString
	DWord
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case String:
		return "sz"
	case ExpandString:
		return "expand_sz"
	case DWord:
		return "dword"
	default:
		return "unknown"
	}
}

// Value is a single named value. Data holds the raw payload of binary
// and string kinds, Integer the payload of DWord values.
type Value struct {
	Kind    Kind
	Data    []byte
	Integer uint32
}

func BinaryValue(b []byte) Value {
	return Value{Kind: Binary, Data: append([]byte(nil), b...)}
}

func StringValue(s string) Value {
	return Value{Kind: String, Data: []byte(s)}
}

func DWordValue(v uint32) Value {
	return Value{Kind: DWord, Integer: v}
}

// Text returns the value as a string without trailing NULs.
func (v Value) Text() string {
	return strings.TrimRight(string(v.Data), "\x00")
}

type Store interface {
	Lookup(path, name string) (Value, error)
}

// Writer is implemented by stores that accept values.
type Writer interface {
	Put(path, name string, v Value) error
}

// Want selects how a value is decoded by Read.
type Want uint8

const (
	WantBytes Want = 1 << iota
	WantInteger
)

// Read looks up path\name and checks it can be decoded as requested.
// Binary and string kinds decode as bytes, DWord only as an integer.
func Read(s Store, path, name string, want Want) (Value, error) {
	if want&WantBytes != 0 && want&WantInteger != 0 {
		return Value{}, ErrInvalidRequest
	}
	v, err := s.Lookup(path, name)
	if err != nil {
		return Value{}, err
	}
	switch v.Kind {
	case Binary, String, ExpandString:
		if want&WantBytes == 0 {
			return Value{}, errors.Wrapf(ErrTypeMismatch, "%s\\%s is %s", path, name, v.Kind)
		}
	case DWord:
		if want&WantInteger == 0 {
			return Value{}, errors.Wrapf(ErrTypeMismatch, "%s\\%s is %s", path, name, v.Kind)
		}
	default:
		return Value{}, errors.Wrapf(ErrTypeMismatch, "%s\\%s is %s", path, name, v.Kind)
	}
	return v, nil
}

func ReadBytes(s Store, path, name string) ([]byte, error) {
	v, err := Read(s, path, name, WantBytes)
	if err != nil {
		return nil, err
	}
	return v.Data, nil
}

func ReadString(s Store, path, name string) (string, error) {
	v, err := Read(s, path, name, WantBytes)
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}

func ReadInteger(s Store, path, name string) (uint32, error) {
	v, err := Read(s, path, name, WantInteger)
	if err != nil {
		return 0, err
	}
	return v.Integer, nil
}

type Key struct {
	Path string
	Name string
}

// Copy writes every key present in src to dst. Missing keys are skipped
// and the number of copied values is returned.
func Copy(dst Writer, src Store, keys []Key) (int, error) {
	n := 0
	for _, k := range keys {
		v, err := src.Lookup(k.Path, k.Name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return n, errors.Wrapf(err, "read %s\\%s", k.Path, k.Name)
		}
		if err := dst.Put(k.Path, k.Name, v); err != nil {
			return n, errors.Wrapf(err, "write %s\\%s", k.Path, k.Name)
		}
		n++
	}
	return n, nil
}

// CanonicalPath folds separators and case so paths compare the way the
// registry compares key names.
func CanonicalPath(path string) string {
	path = strings.ReplaceAll(path, "/", `\`)
	path = strings.Trim(path, `\`)
	return strings.ToLower(path)
}
