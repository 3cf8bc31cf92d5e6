package objmodel

import (
	"bytes"
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

const DefaultSnapshotDepth = 2

// Marker stands in for a value that a snapshot does not expand.
type Marker string

const (
	UndefinedMarker Marker = "[undefined]"
	CircularMarker  Marker = "[Circular]"
	ObjectMarker    Marker = "[Object]"
)

func functionMarker(name string) Marker {
	if name == "" {
		return "[Function (anonymous)]"
	}
	return Marker("[Function " + name + "]")
}

type MaterializeOptions struct {
	// MaxDepth is how many levels of nested objects are expanded below the
	// snapshotted object. Zero means DefaultSnapshotDepth; a negative value
	// expands nothing.
	MaxDepth int
}

// Snapshot is a host-side copy of the own enumerable properties of an
// object, in [[OwnPropertyKeys]] order.
//
// Values are nil (null), bool, float64, string, Marker or *Snapshot.
// Symbol-valued properties are rendered as "Symbol(desc)". Symbol keys stay
// keys of their own kind and never collide with a string key.
type Snapshot struct {
	entries []snapshotEntry
	strings map[string]int
	symbols map[uint64]int
}

type snapshotEntry struct {
	key   PropertyKey
	value any
}

func newSnapshot(size int) *Snapshot {
	return &Snapshot{
		strings: make(map[string]int, size),
		symbols: make(map[uint64]int),
	}
}

func (s *Snapshot) Len() int { return len(s.entries) }

func (s *Snapshot) Keys() []PropertyKey {
	keys := make([]PropertyKey, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.key
	}
	return keys
}

// Get looks up a string key.
func (s *Snapshot) Get(name string) (any, bool) {
	return s.GetKey(StringKey(name))
}

func (s *Snapshot) GetKey(key PropertyKey) (any, bool) {
	i, found := s.index(key)
	if !found {
		return nil, false
	}
	return s.entries[i].value, true
}

func (s *Snapshot) index(key PropertyKey) (int, bool) {
	if key.IsSymbol() {
		i, found := s.symbols[key.Symbol().ID()]
		return i, found
	}
	i, found := s.strings[key.Name()]
	return i, found
}

func (s *Snapshot) set(key PropertyKey, v any) {
	if i, found := s.index(key); found {
		s.entries[i].value = v
		return
	}
	if key.IsSymbol() {
		s.symbols[key.Symbol().ID()] = len(s.entries)
	} else {
		s.strings[key.Name()] = len(s.entries)
	}
	s.entries = append(s.entries, snapshotEntry{key: key, value: v})
}

// Materialize snapshots o. Getters run with o as the receiver; a getter
// that throws aborts the snapshot and its throw completion is returned.
// Objects below opts.MaxDepth become ObjectMarker, and an object that is
// already being materialized further up becomes CircularMarker.
func Materialize(o *Object, opts MaterializeOptions) (*Snapshot, error) {
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultSnapshotDepth
	}
	m := materializer{
		maxDepth: maxDepth,
		active:   make(map[uint64]struct{}),
	}
	return m.object(o, 0)
}

type materializer struct {
	maxDepth int
	// ids of the objects on the current path
	active map[uint64]struct{}
}

func (m *materializer) object(o *Object, depth int) (*Snapshot, error) {
	m.active[o.id] = struct{}{}
	defer delete(m.active, o.id)

	keys, err := o.OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	snap := newSnapshot(len(keys))
	for _, k := range keys {
		desc, err := o.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if desc == nil || !desc.Enumerable.Bool() {
			continue
		}
		v, err := o.Get(k, o)
		if err != nil {
			return nil, err
		}
		hv, err := m.value(v, depth)
		if err != nil {
			return nil, err
		}
		snap.set(k, hv)
	}
	return snap, nil
}

func (m *materializer) value(v Value, depth int) (any, error) {
	switch v := v.(type) {
	case Undefined:
		return UndefinedMarker, nil
	case Null:
		return nil, nil
	case Boolean:
		return v.b, nil
	case Number:
		return v.f, nil
	case String:
		return v.s, nil
	case *Symbol:
		return v.String(), nil
	case *Object:
		if _, found := m.active[v.id]; found {
			return CircularMarker, nil
		}
		if v.isCallable() {
			if v.kind == KindFunction {
				return functionMarker(v.FunctionName()), nil
			}
			return functionMarker(""), nil
		}
		if depth >= m.maxDepth {
			return ObjectMarker, nil
		}
		return m.object(v, depth+1)
	default:
		panic("bug: unknown value type in snapshot")
	}
}

const symbolKeyTag = "!symbol"

// MarshalYAML writes symbol keys with the !symbol tag, so they stay
// distinct from a string key of the same text.
func (s *Snapshot) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range s.entries {
		var val yaml.Node
		if err := val.Encode(scalarValue(e.value)); err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.key.Name()}
		if e.key.IsSymbol() {
			key = &yaml.Node{Kind: yaml.ScalarNode, Tag: symbolKeyTag, Value: e.key.Symbol().String()}
		}
		node.Content = append(node.Content, key, &val)
	}
	return node, nil
}

// MarshalJSON writes symbol keys as "[Symbol(desc)]". JSON has only string
// keys, so a string key spelled the same way is ambiguous in this output.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		name := e.key.Name()
		if e.key.IsSymbol() {
			name = "[" + e.key.Symbol().String() + "]"
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(scalarValue(e.value))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// scalarValue converts the values that neither JSON nor YAML can carry
// as-is. JSON has no NaN or Infinity.
func scalarValue(v any) any {
	switch v := v.(type) {
	case Marker:
		return string(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NumberToString(v)
		}
	}
	return v
}
