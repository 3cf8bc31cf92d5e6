package objmodel

import (
	"math"
	"strconv"
)

// PropertyKey is either a String or a Symbol. String keys remember whether
// they are an array index, i.e. the canonical decimal form of an integer in
// [0, 2^32-2].
type PropertyKey struct {
	name    string
	symbol  *Symbol
	index   uint32
	isIndex bool
}

func StringKey(name string) PropertyKey {
	k := PropertyKey{name: name}
	k.index, k.isIndex = parseArrayIndex(name)
	return k
}

func SymbolKey(sym *Symbol) PropertyKey {
	if sym == nil {
		panic("bug: SymbolKey(nil)")
	}
	return PropertyKey{symbol: sym}
}

func IndexKey(index uint32) PropertyKey {
	if index == math.MaxUint32 {
		// 2^32-1 is a valid integer key but not an array index
		return PropertyKey{name: strconv.FormatUint(uint64(index), 10)}
	}
	return PropertyKey{name: strconv.FormatUint(uint64(index), 10), index: index, isIndex: true}
}

func parseArrayIndex(s string) (uint32, bool) {
	if len(s) == 0 || len(s) > 10 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

func (k PropertyKey) IsSymbol() bool     { return k.symbol != nil }
func (k PropertyKey) IsString() bool     { return k.symbol == nil }
func (k PropertyKey) IsArrayIndex() bool { return k.isIndex }
func (k PropertyKey) ArrayIndex() uint32 { return k.index }

// Name is the string contents of a String key.
func (k PropertyKey) Name() string { return k.name }

func (k PropertyKey) Symbol() *Symbol { return k.symbol }

func (k PropertyKey) Equals(other PropertyKey) bool {
	if k.IsSymbol() || other.IsSymbol() {
		return k.IsSymbol() && other.IsSymbol() && k.symbol.id == other.symbol.id
	}
	return k.name == other.name
}

// ToValue returns the key as a language value.
func (k PropertyKey) ToValue() Value {
	if k.symbol != nil {
		return k.symbol
	}
	return NewString(k.name)
}

func (k PropertyKey) String() string {
	if k.symbol != nil {
		return k.symbol.String()
	}
	return k.name
}

type keyID struct {
	name  string
	sym   uint64
	isSym bool
}

func (k PropertyKey) id() keyID {
	if k.symbol != nil {
		return keyID{sym: k.symbol.id, isSym: true}
	}
	return keyID{name: k.name}
}

func formatIndex(i uint64) string {
	return strconv.FormatUint(i, 10)
}
