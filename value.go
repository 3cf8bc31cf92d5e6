package objmodel

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Type is the language type of a Value.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeSymbol
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Value is any language value. Every instance carries an identity that is
// unique for the lifetime of the process.
type Value interface {
	Type() Type
	ID() uint64
}

// identities are shared by every realm, possibly running on different
// goroutines, hence the atomic.
var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

type Undefined struct{ id uint64 }

func (v Undefined) Type() Type { return TypeUndefined }
func (v Undefined) ID() uint64 { return v.id }

type Null struct{ id uint64 }

func (v Null) Type() Type { return TypeNull }
func (v Null) ID() uint64 { return v.id }

type Boolean struct {
	id uint64
	b  bool
}

func (v Boolean) Type() Type { return TypeBoolean }
func (v Boolean) ID() uint64 { return v.id }
func (v Boolean) Bool() bool { return v.b }

type Number struct {
	id uint64
	f  float64
}

func NewNumber(f float64) Number { return Number{id: nextID(), f: f} }

func (v Number) Type() Type     { return TypeNumber }
func (v Number) ID() uint64     { return v.id }
func (v Number) Float() float64 { return v.f }

type String struct {
	id uint64
	s  string
}

func NewString(s string) String { return String{id: nextID(), s: s} }

func (v String) Type() Type     { return TypeString }
func (v String) ID() uint64     { return v.id }
func (v String) String() string { return v.s }

// Symbol values are compared by identity only.
type Symbol struct {
	id             uint64
	description    string
	hasDescription bool
}

func NewSymbol(description string) *Symbol {
	return &Symbol{id: nextID(), description: description, hasDescription: true}
}

// NewAnonymousSymbol creates a symbol whose [[Description]] is undefined.
func NewAnonymousSymbol() *Symbol {
	return &Symbol{id: nextID()}
}

func (s *Symbol) Type() Type { return TypeSymbol }
func (s *Symbol) ID() uint64 { return s.id }

func (s *Symbol) Description() (string, bool) {
	return s.description, s.hasDescription
}

// String is SymbolDescriptiveString.
func (s *Symbol) String() string {
	return "Symbol(" + s.description + ")"
}

func IsUndefined(v Value) bool { return v != nil && v.Type() == TypeUndefined }
func IsNull(v Value) bool      { return v != nil && v.Type() == TypeNull }

// IsNullish reports whether v is undefined or null.
func IsNullish(v Value) bool {
	return IsUndefined(v) || IsNull(v)
}

func IsPrimitive(v Value) bool {
	return v.Type() != TypeObject
}

func IsCallable(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.isCallable()
}

func IsConstructor(v Value) bool {
	o, ok := v.(*Object)
	return ok && o.isConstructor()
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.Type() {
	case TypeNull:
		return "object"
	case TypeObject:
		if IsCallable(v) {
			return "function"
		}
		return "object"
	default:
		return v.Type().String()
	}
}

// SameValue compares values by identity for objects and symbols and by
// contents for everything else. NaN equals NaN; +0 and -0 differ.
func SameValue(x, y Value) bool {
	if x.Type() != y.Type() {
		return false
	}
	if xn, isNum := x.(Number); isNum {
		yn := y.(Number)
		if math.IsNaN(xn.f) && math.IsNaN(yn.f) {
			return true
		}
		if xn.f == 0 && yn.f == 0 {
			return math.Signbit(xn.f) == math.Signbit(yn.f)
		}
		return xn.f == yn.f
	}
	return sameValueNonNumber(x, y)
}

// SameValueZero is SameValue, except that +0 and -0 are equal.
func SameValueZero(x, y Value) bool {
	if xn, isNum := x.(Number); isNum {
		yn, isNum := y.(Number)
		if !isNum {
			return false
		}
		if math.IsNaN(xn.f) && math.IsNaN(yn.f) {
			return true
		}
		return xn.f == yn.f
	}
	return SameValue(x, y)
}

// IsStrictlyEqual implements ===.
func IsStrictlyEqual(x, y Value) bool {
	if x.Type() != y.Type() {
		return false
	}
	if xn, isNum := x.(Number); isNum {
		return xn.f == y.(Number).f
	}
	return sameValueNonNumber(x, y)
}

func sameValueNonNumber(x, y Value) bool {
	switch x := x.(type) {
	case Undefined, Null:
		return true
	case Boolean:
		return x.b == y.(Boolean).b
	case String:
		return x.s == y.(String).s
	case *Symbol:
		return x.id == y.(*Symbol).id
	case *Object:
		return x.id == y.(*Object).id
	default:
		panic(fmt.Sprintf("bug: unexpected value kind %T", x))
	}
}
