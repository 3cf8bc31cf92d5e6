package objmodel

import (
	"math"
	"unicode/utf16"
)

// Hint is the preferred type passed to ToPrimitive.
type Hint uint8

const (
	HintDefault Hint = iota
	HintString
	HintNumber
)

func (h Hint) String() string {
	switch h {
	case HintString:
		return "string"
	case HintNumber:
		return "number"
	default:
		return "default"
	}
}

// ToPrimitive returns primitives unchanged. For objects, @@toPrimitive wins
// when present; otherwise the default hint becomes number and
// OrdinaryToPrimitive runs.
func (r *Realm) ToPrimitive(v Value, hint Hint) (Value, error) {
	o, isObj := v.(*Object)
	if !isObj {
		return v, nil
	}

	exotic, err := r.GetMethod(o, SymbolKey(r.SymbolToPrimitive()))
	if err != nil {
		return nil, err
	}
	if exotic != nil {
		res, err := r.Call(exotic, o, []Value{NewString(hint.String())})
		if err != nil {
			return nil, err
		}
		if !IsPrimitive(res) {
			return nil, r.ThrowTypeError("cannot convert object to primitive value")
		}
		return res, nil
	}

	if hint == HintDefault {
		hint = HintNumber
	}
	return r.OrdinaryToPrimitive(o, hint)
}

func (r *Realm) OrdinaryToPrimitive(o *Object, hint Hint) (Value, error) {
	var methodNames []string
	switch hint {
	case HintString:
		methodNames = []string{"toString", "valueOf"}
	case HintNumber:
		methodNames = []string{"valueOf", "toString"}
	default:
		panic("bug: OrdinaryToPrimitive with hint " + hint.String())
	}

	for _, name := range methodNames {
		method, err := o.Get(StringKey(name), o)
		if err != nil {
			return nil, err
		}
		if !IsCallable(method) {
			continue
		}
		res, err := r.Call(method, o, nil)
		if err != nil {
			return nil, err
		}
		if IsPrimitive(res) {
			return res, nil
		}
	}
	return nil, r.ThrowTypeError("cannot convert object to primitive value")
}

// ToBoolean converts objects in two steps, like every other conversion:
// ToPrimitive with the number hint first.
func (r *Realm) ToBoolean(v Value) (bool, error) {
	if _, isObj := v.(*Object); isObj {
		prim, err := r.ToPrimitive(v, HintNumber)
		if err != nil {
			return false, err
		}
		v = prim
	}
	return primitiveToBoolean(v), nil
}

func primitiveToBoolean(v Value) bool {
	switch v := v.(type) {
	case Undefined, Null:
		return false
	case Boolean:
		return v.b
	case Number:
		return !(v.f == 0 || math.IsNaN(v.f))
	case String:
		return v.s != ""
	case *Symbol:
		return true
	default:
		panic("bug: primitiveToBoolean on " + v.Type().String())
	}
}

func (r *Realm) ToNumber(v Value) (float64, error) {
	switch v := v.(type) {
	case Undefined:
		return math.NaN(), nil
	case Null:
		return 0, nil
	case Boolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case Number:
		return v.f, nil
	case String:
		return StringToNumber(v.s), nil
	case *Symbol:
		return 0, r.ThrowTypeError("cannot convert a Symbol value to a number")
	case *Object:
		prim, err := r.ToPrimitive(v, HintNumber)
		if err != nil {
			return 0, err
		}
		return r.ToNumber(prim)
	default:
		panic("bug: ToNumber on an unknown value")
	}
}

// ToNumeric has no BigInt to deal with, so it is ToNumber.
func (r *Realm) ToNumeric(v Value) (float64, error) {
	return r.ToNumber(v)
}

func (r *Realm) ToString(v Value) (string, error) {
	switch v := v.(type) {
	case Undefined:
		return "undefined", nil
	case Null:
		return "null", nil
	case Boolean:
		if v.b {
			return "true", nil
		}
		return "false", nil
	case Number:
		return NumberToString(v.f), nil
	case String:
		return v.s, nil
	case *Symbol:
		return "", r.ThrowTypeError("cannot convert a Symbol value to a string")
	case *Object:
		prim, err := r.ToPrimitive(v, HintString)
		if err != nil {
			return "", err
		}
		return r.ToString(prim)
	default:
		panic("bug: ToString on an unknown value")
	}
}

// ToIntegerOrInfinity truncates towards zero; NaN becomes 0.
func (r *Realm) ToIntegerOrInfinity(v Value) (float64, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return integerOrInfinity(n), nil
}

func integerOrInfinity(n float64) float64 {
	if math.IsNaN(n) || n == 0 {
		return 0
	}
	if math.IsInf(n, 0) {
		return n
	}
	return math.Trunc(n)
}

// modulo2 maps n to an integer in [0, 2^bits) congruent to trunc(n).
func modulo2(n float64, bits uint) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	size := math.Ldexp(1, int(bits))
	m := math.Mod(math.Trunc(n), size)
	if m < 0 {
		m += size
	}
	return m
}

func (r *Realm) ToInt32(v Value) (int32, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return int32(uint32(modulo2(n, 32))), nil
}

func (r *Realm) ToUint32(v Value) (uint32, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return uint32(modulo2(n, 32)), nil
}

func (r *Realm) ToInt16(v Value) (int16, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return int16(uint16(modulo2(n, 16))), nil
}

func (r *Realm) ToUint16(v Value) (uint16, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return uint16(modulo2(n, 16)), nil
}

func (r *Realm) ToInt8(v Value) (int8, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return int8(uint8(modulo2(n, 8))), nil
}

func (r *Realm) ToUint8(v Value) (uint8, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	return uint8(modulo2(n, 8)), nil
}

// ToUint8Clamp saturates to [0, 255] and rounds half to even.
func (r *Realm) ToUint8Clamp(v Value) (uint8, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(n) || n <= 0:
		return 0, nil
	case n >= 255:
		return 255, nil
	}
	return uint8(math.RoundToEven(n)), nil
}

const maxSafeInteger = 1<<53 - 1

func (r *Realm) ToLength(v Value) (uint64, error) {
	n, err := r.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, nil
	}
	return uint64(math.Min(n, maxSafeInteger)), nil
}

func (r *Realm) ToIndex(v Value) (uint64, error) {
	if IsUndefined(v) {
		return 0, nil
	}
	n, err := r.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > maxSafeInteger {
		return 0, r.ThrowRangeError("index out of range: %s", NumberToString(n))
	}
	return uint64(n), nil
}

func (r *Realm) ToPropertyKey(v Value) (PropertyKey, error) {
	key, err := r.ToPrimitive(v, HintString)
	if err != nil {
		return PropertyKey{}, err
	}
	if sym, isSym := key.(*Symbol); isSym {
		return SymbolKey(sym), nil
	}
	s, err := r.ToString(key)
	if err != nil {
		return PropertyKey{}, err
	}
	return StringKey(s), nil
}

// ToObject boxes primitives into wrapper objects; undefined and null throw.
func (r *Realm) ToObject(v Value) (*Object, error) {
	switch v := v.(type) {
	case Undefined, Null:
		return nil, r.ThrowTypeError("cannot convert %s to object", v.Type())
	case *Object:
		return v, nil
	default:
		return r.newPrimitiveWrapper(v, nil), nil
	}
}

// CanonicalNumericIndexString returns the number s stands for when s is
// the canonical string form of that number ("-0" included).
func CanonicalNumericIndexString(s string) (float64, bool) {
	if s == "-0" {
		return math.Copysign(0, -1), true
	}
	n := StringToNumber(s)
	if NumberToString(n) != s {
		return 0, false
	}
	return n, true
}

// newPrimitiveWrapper creates the wrapper object for a primitive. proto nil
// means the intrinsic prototype of the primitive's type.
func (r *Realm) newPrimitiveWrapper(v Value, proto *Object) *Object {
	in := &r.intrinsics
	var class string
	var defaultProto *Object
	switch v.(type) {
	case Boolean:
		class, defaultProto = "Boolean", in.BooleanPrototype
	case Number:
		class, defaultProto = "Number", in.NumberPrototype
	case String:
		class, defaultProto = "String", in.StringPrototype
	case *Symbol:
		class, defaultProto = "Symbol", in.SymbolPrototype
	default:
		panic("bug: no wrapper for " + v.Type().String())
	}
	if proto == nil {
		proto = defaultProto
	}

	obj := r.newObject(KindPrimitiveWrapper, class, proto)
	obj.primitive = v
	if s, isStr := v.(String); isStr {
		units := utf16.Encode([]rune(s.s))
		// each unit is decoded on its own, so a surrogate half reads back as
		// U+FFFD and indexing an astral character is lossy
		for i, u := range units {
			obj.props.put(&property{
				key:        IndexKey(uint32(i)),
				value:      NewString(string(rune(u))),
				enumerable: true,
			})
		}
		obj.props.put(&property{key: lengthKey, value: NewNumber(float64(len(units)))})
	}
	return obj
}

// StringLength is the length of s in UTF-16 code units.
func StringLength(s string) int {
	n := 0
	for _, c := range s {
		if c >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// IsLooselyEqual implements ==.
func (r *Realm) IsLooselyEqual(x, y Value) (bool, error) {
	for {
		if x.Type() == y.Type() {
			return IsStrictlyEqual(x, y), nil
		}
		if IsNullish(x) && IsNullish(y) {
			return true, nil
		}

		switch {
		case x.Type() == TypeNumber && y.Type() == TypeString:
			return x.(Number).f == StringToNumber(y.(String).s), nil
		case x.Type() == TypeString && y.Type() == TypeNumber:
			return StringToNumber(x.(String).s) == y.(Number).f, nil
		case x.Type() == TypeBoolean:
			n, _ := r.ToNumber(x)
			x = NewNumber(n)
		case y.Type() == TypeBoolean:
			n, _ := r.ToNumber(y)
			y = NewNumber(n)
		case y.Type() == TypeObject && (x.Type() == TypeString || x.Type() == TypeNumber || x.Type() == TypeSymbol):
			prim, err := r.ToPrimitive(y, HintDefault)
			if err != nil {
				return false, err
			}
			y = prim
		case x.Type() == TypeObject && (y.Type() == TypeString || y.Type() == TypeNumber || y.Type() == TypeSymbol):
			prim, err := r.ToPrimitive(x, HintDefault)
			if err != nil {
				return false, err
			}
			x = prim
		default:
			return false, nil
		}
	}
}
