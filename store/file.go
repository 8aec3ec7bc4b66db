package store

import (
	"encoding/hex"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Keys map[string]map[string]fileValue `yaml:"keys"`
}

type fileValue struct {
	Type string `yaml:"type"`
	Data string `yaml:"data"`
}

// LoadFile reads a YAML fixture into a Memory store:
//
//	keys:
//	  Software\Microsoft\Windows\CurrentVersion\Internet Settings:
//	    ProxyEnable: {type: dword, data: "1"}
//	    ProxyServer: {type: sz, data: "http=10.0.0.1:3128"}
func LoadFile(path string) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture")
	}
	return ParseFile(b)
}

func ParseFile(b []byte) (*Memory, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "parse fixture")
	}

	m := NewMemory()
	for path, values := range doc.Keys {
		for name, fv := range values {
			v, err := fv.decode()
			if err != nil {
				return nil, errors.Wrapf(err, "%s\\%s", path, name)
			}
			m.Set(path, name, v)
		}
	}
	return m, nil
}

func (fv fileValue) decode() (Value, error) {
	switch strings.ToLower(fv.Type) {
	case "binary", "hex":
		b, err := decodeHex(fv.Data)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: Binary, Data: b}, nil
	case "sz", "string", "":
		return StringValue(fv.Data), nil
	case "expand_sz":
		return Value{Kind: ExpandString, Data: []byte(fv.Data)}, nil
	case "dword":
		i, err := strconv.ParseUint(strings.TrimSpace(fv.Data), 0, 32)
		if err != nil {
			return Value{}, errors.Wrap(err, "parse dword")
		}
		return DWordValue(uint32(i)), nil
	default:
		return Value{}, errors.Errorf("unknown value type %q", fv.Type)
	}
}

// WriteFile stores every value of m as a YAML fixture.
func WriteFile(path string, m *Memory) error {
	doc := fileDocument{Keys: make(map[string]map[string]fileValue)}
	for _, k := range m.Keys() {
		v, err := m.Lookup(k.Path, k.Name)
		if err != nil {
			return err
		}
		if doc.Keys[k.Path] == nil {
			doc.Keys[k.Path] = make(map[string]fileValue)
		}
		doc.Keys[k.Path][k.Name] = encodeFileValue(v)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Wrap(err, "marshal fixture")
	}
	return errors.Wrap(os.WriteFile(path, out, 0o644), "write fixture")
}

func encodeFileValue(v Value) fileValue {
	switch v.Kind {
	case Binary:
		return fileValue{Type: "binary", Data: hex.EncodeToString(v.Data)}
	case ExpandString:
		return fileValue{Type: "expand_sz", Data: v.Text()}
	case DWord:
		return fileValue{Type: "dword", Data: strconv.FormatUint(uint64(v.Integer), 10)}
	default:
		return fileValue{Type: "sz", Data: v.Text()}
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', ':', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "parse hex")
	}
	return b, nil
}
