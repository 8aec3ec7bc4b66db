package store

import (
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory store. Paths and names are case-insensitive.
type Memory struct {
	sync.RWMutex
	keys map[string]map[string]Value
}

func NewMemory() *Memory {
	return &Memory{keys: make(map[string]map[string]Value)}
}

func (m *Memory) Lookup(path, name string) (Value, error) {
	m.RLock()
	defer m.RUnlock()

	values, ok := m.keys[CanonicalPath(path)]
	if !ok {
		return Value{}, ErrNotFound
	}
	v, ok := values[strings.ToLower(name)]
	if !ok {
		return Value{}, ErrNotFound
	}
	v.Data = append([]byte(nil), v.Data...)
	return v, nil
}

func (m *Memory) Put(path, name string, v Value) error {
	m.Set(path, name, v)
	return nil
}

func (m *Memory) Set(path, name string, v Value) {
	m.Lock()
	defer m.Unlock()

	p := CanonicalPath(path)
	if m.keys[p] == nil {
		m.keys[p] = make(map[string]Value)
	}
	v.Data = append([]byte(nil), v.Data...)
	m.keys[p][strings.ToLower(name)] = v
}

func (m *Memory) Delete(path, name string) {
	m.Lock()
	defer m.Unlock()

	if values, ok := m.keys[CanonicalPath(path)]; ok {
		delete(values, strings.ToLower(name))
	}
}

// Keys lists every stored key, sorted by path then name.
func (m *Memory) Keys() []Key {
	m.RLock()
	defer m.RUnlock()

	var keys []Key
	for p, values := range m.keys {
		for n := range values {
			keys = append(keys, Key{Path: p, Name: n})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}
