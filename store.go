package objmodel

import (
	"fmt"
	"sort"
)

type property struct {
	key PropertyKey

	// data
	value    Value
	writable bool

	// accessor
	get, set Value
	accessor bool

	enumerable   bool
	configurable bool
}

// descriptor materializes a fresh copy of the attributes, with exactly the
// fields of the property's kind.
func (p *property) descriptor() *PropertyDescriptor {
	desc := &PropertyDescriptor{
		Enumerable:   ToFlag(p.enumerable),
		Configurable: ToFlag(p.configurable),
	}
	if p.accessor {
		desc.Get = p.get
		desc.Set = p.set
	} else {
		desc.Value = p.value
		desc.Writable = ToFlag(p.writable)
	}
	return desc
}

// propertyStore keeps own properties in creation order. Deleting leaves a
// hole in slots that gets compacted once holes make up half of the slice.
type propertyStore struct {
	slots []*property
	index map[keyID]int
	dead  int
}

func newPropertyStore() propertyStore {
	return propertyStore{index: make(map[keyID]int)}
}

func (ps *propertyStore) lookup(k PropertyKey) *property {
	i, found := ps.index[k.id()]
	if !found {
		return nil
	}
	return ps.slots[i]
}

func (ps *propertyStore) has(k PropertyKey) bool {
	_, found := ps.index[k.id()]
	return found
}

func (ps *propertyStore) len() int {
	return len(ps.index)
}

// put stores p under p.key. A key that already exists keeps its position.
func (ps *propertyStore) put(p *property) {
	id := p.key.id()
	if i, found := ps.index[id]; found {
		old := ps.slots[i]
		if !old.configurable && !old.accessor && !old.writable {
			if p.accessor || !SameValue(old.value, p.value) {
				panic(fmt.Sprintf("bug: frozen property %s modified in storage", p.key))
			}
		}
		ps.slots[i] = p
		return
	}
	ps.index[id] = len(ps.slots)
	ps.slots = append(ps.slots, p)
}

func (ps *propertyStore) remove(k PropertyKey) bool {
	id := k.id()
	i, found := ps.index[id]
	if !found {
		return false
	}
	delete(ps.index, id)
	ps.slots[i] = nil
	ps.dead++
	if ps.dead*2 > len(ps.slots) {
		ps.compact()
	}
	return true
}

func (ps *propertyStore) compact() {
	live := ps.slots[:0]
	for _, p := range ps.slots {
		if p != nil {
			ps.index[p.key.id()] = len(live)
			live = append(live, p)
		}
	}
	for i := len(live); i < len(ps.slots); i++ {
		ps.slots[i] = nil
	}
	ps.slots = live
	ps.dead = 0
}

// keys lists the keys in the enumeration order of [[OwnPropertyKeys]]:
// array indices ascending, then the other strings in creation order, then
// symbols in creation order.
func (ps *propertyStore) keys() []PropertyKey {
	var indices, strs, syms []PropertyKey
	for _, p := range ps.slots {
		switch {
		case p == nil:
		case p.key.IsSymbol():
			syms = append(syms, p.key)
		case p.key.IsArrayIndex():
			indices = append(indices, p.key)
		default:
			strs = append(strs, p.key)
		}
	}
	sort.Slice(indices, func(i, j int) bool {
		return indices[i].index < indices[j].index
	})

	keys := make([]PropertyKey, 0, len(indices)+len(strs)+len(syms))
	keys = append(keys, indices...)
	keys = append(keys, strs...)
	keys = append(keys, syms...)
	return keys
}
