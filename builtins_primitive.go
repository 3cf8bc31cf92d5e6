package objmodel

import (
	"math"
	"strconv"
	"strings"
)

// addPrimitiveWrapperConstructor installs Boolean, Number or String. Called
// as a function the constructor converts its argument; with new it wraps
// the converted value.
func addPrimitiveWrapperConstructor[T Value](
	r *Realm,
	name string,
	proto *Object,
	empty T,
	convert func(r *Realm, v Value) (T, error),
) *Object {
	return r.defineConstructor(name, 1, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		prim := empty
		if len(args) > 0 {
			var err error
			prim, err = convert(r, args[0])
			if err != nil {
				return nil, err
			}
		}
		if !flags.IsNew {
			return prim, nil
		}

		wrapperProto, err := r.GetPrototypeFromConstructor(flags.NewTarget, proto)
		if err != nil {
			return nil, err
		}
		return r.newPrimitiveWrapper(prim, wrapperProto), nil
	})
}

// thisPrimitive unwraps this for the valueOf/toString methods of a wrapper
// prototype, accepting both the primitive and its wrapper.
func thisPrimitive[T Value](r *Realm, this Value, method string) (T, error) {
	if prim, ok := this.(T); ok {
		return prim, nil
	}
	if obj, isObj := this.(*Object); isObj && obj.kind == KindPrimitiveWrapper {
		if prim, ok := obj.primitive.(T); ok {
			return prim, nil
		}
	}
	var zero T
	return zero, r.ThrowTypeError("%s requires that 'this' be a %s", method, zero.Type())
}

func (r *Realm) setupPrimitiveBuiltins() {
	in := &r.intrinsics

	addPrimitiveWrapperConstructor(r, "Boolean", in.BooleanPrototype, in.False, func(r *Realm, v Value) (Boolean, error) {
		b, err := r.ToBoolean(v)
		return r.Bool(b), err
	})
	r.defineMethod(in.BooleanPrototype, "valueOf", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[Boolean](r, this, "Boolean.prototype.valueOf")
	})
	r.defineMethod(in.BooleanPrototype, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		b, err := thisPrimitive[Boolean](r, this, "Boolean.prototype.toString")
		if err != nil {
			return nil, err
		}
		return NewString(strconv.FormatBool(b.b)), nil
	})

	numberCons := addPrimitiveWrapperConstructor(r, "Number", in.NumberPrototype, NewNumber(0), func(r *Realm, v Value) (Number, error) {
		n, err := r.ToNumeric(v)
		return NewNumber(n), err
	})
	numberCons.defineBuiltin(StringKey("MAX_SAFE_INTEGER"), DataDescriptor(NewNumber(maxSafeInteger), false, false, false))
	numberCons.defineBuiltin(StringKey("MIN_SAFE_INTEGER"), DataDescriptor(NewNumber(-maxSafeInteger), false, false, false))
	numberCons.defineBuiltin(StringKey("MAX_VALUE"), DataDescriptor(NewNumber(math.MaxFloat64), false, false, false))
	numberCons.defineBuiltin(StringKey("MIN_VALUE"), DataDescriptor(NewNumber(math.SmallestNonzeroFloat64), false, false, false))
	numberCons.defineBuiltin(StringKey("EPSILON"), DataDescriptor(NewNumber(math.Nextafter(1, 2)-1), false, false, false))
	numberCons.defineBuiltin(StringKey("NaN"), DataDescriptor(NewNumber(math.NaN()), false, false, false))
	numberCons.defineBuiltin(StringKey("POSITIVE_INFINITY"), DataDescriptor(NewNumber(math.Inf(1)), false, false, false))
	numberCons.defineBuiltin(StringKey("NEGATIVE_INFINITY"), DataDescriptor(NewNumber(math.Inf(-1)), false, false, false))
	r.defineMethod(numberCons, "isInteger", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		n, isNum := r.Arg(args, 0).(Number)
		return r.Bool(isNum && !math.IsInf(n.f, 0) && n.f == math.Trunc(n.f)), nil
	})
	r.defineMethod(in.NumberPrototype, "valueOf", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[Number](r, this, "Number.prototype.valueOf")
	})
	r.defineMethod(in.NumberPrototype, "toString", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		n, err := thisPrimitive[Number](r, this, "Number.prototype.toString")
		if err != nil {
			return nil, err
		}
		radix := 10.0
		if !IsUndefined(r.Arg(args, 0)) {
			radix, err = r.ToIntegerOrInfinity(args[0])
			if err != nil {
				return nil, err
			}
		}
		if radix < 2 || radix > 36 {
			return nil, r.ThrowRangeError("toString() radix must be between 2 and 36")
		}
		if radix == 10 || math.IsNaN(n.f) || math.IsInf(n.f, 0) || n.f != math.Trunc(n.f) || math.Abs(n.f) > maxSafeInteger {
			// TODO: fractional and huge values in radixes other than 10
			return NewString(NumberToString(n.f)), nil
		}
		return NewString(strconv.FormatInt(int64(n.f), int(radix))), nil
	})

	addPrimitiveWrapperConstructor(r, "String", in.StringPrototype, NewString(""), func(r *Realm, v Value) (String, error) {
		if sym, isSym := v.(*Symbol); isSym {
			return NewString(sym.String()), nil
		}
		s, err := r.ToString(v)
		return NewString(s), err
	})
	stringMethod := func(name string, length int, fn func(r *Realm, s string, args []Value) (Value, error)) {
		r.defineMethod(in.StringPrototype, name, length, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			if IsNullish(this) {
				return nil, r.ThrowTypeError("String.prototype.%s called on null or undefined", name)
			}
			s, err := r.ToString(this)
			if err != nil {
				return nil, err
			}
			return fn(r, s, args)
		})
	}
	r.defineMethod(in.StringPrototype, "valueOf", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[String](r, this, "String.prototype.valueOf")
	})
	r.defineMethod(in.StringPrototype, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[String](r, this, "String.prototype.toString")
	})
	stringMethod("indexOf", 1, func(r *Realm, s string, args []Value) (Value, error) {
		search, err := r.ToString(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		i := strings.Index(s, search)
		if i < 0 {
			return NewNumber(-1), nil
		}
		return NewNumber(float64(StringLength(s[:i]))), nil
	})
	stringMethod("toUpperCase", 0, func(r *Realm, s string, args []Value) (Value, error) {
		return NewString(strings.ToUpper(s)), nil
	})
	stringMethod("toLowerCase", 0, func(r *Realm, s string, args []Value) (Value, error) {
		return NewString(strings.ToLower(s)), nil
	})
}

func (r *Realm) setupSymbolBuiltins() {
	proto := r.intrinsics.SymbolPrototype
	cons := r.defineConstructor("Symbol", 0, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if flags.IsNew {
			return nil, r.ThrowTypeError("Symbol is not a constructor")
		}
		desc := r.Arg(args, 0)
		if IsUndefined(desc) {
			return NewAnonymousSymbol(), nil
		}
		s, err := r.ToString(desc)
		if err != nil {
			return nil, err
		}
		return NewSymbol(s), nil
	})

	for _, name := range wellKnownSymbolNames {
		cons.defineBuiltin(StringKey(name), DataDescriptor(r.wellKnown[name], false, false, false))
	}

	r.defineMethod(cons, "for", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		key, err := r.ToString(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return r.SymbolFor(key), nil
	})
	r.defineMethod(cons, "keyFor", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		sym, isSym := r.Arg(args, 0).(*Symbol)
		if !isSym {
			return nil, r.ThrowTypeError("%s is not a symbol", describe(r.Arg(args, 0)))
		}
		if key, found := r.symbolKeyFor(sym); found {
			return NewString(key), nil
		}
		return r.Undefined(), nil
	})

	r.defineMethod(proto, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		sym, err := thisPrimitive[*Symbol](r, this, "Symbol.prototype.toString")
		if err != nil {
			return nil, err
		}
		return NewString(sym.String()), nil
	})
	r.defineMethod(proto, "valueOf", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[*Symbol](r, this, "Symbol.prototype.valueOf")
	})
	r.defineGetter(proto, "description", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		sym, err := thisPrimitive[*Symbol](r, this, "Symbol.prototype.description")
		if err != nil {
			return nil, err
		}
		if desc, ok := sym.Description(); ok {
			return NewString(desc), nil
		}
		return r.Undefined(), nil
	})
	proto.defineBuiltin(SymbolKey(r.WellKnownSymbol("toStringTag")), DataDescriptor(NewString("Symbol"), false, false, true))
	r.defineSymbolMethod(proto, r.SymbolToPrimitive(), "[Symbol.toPrimitive]", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return thisPrimitive[*Symbol](r, this, "Symbol.prototype[@@toPrimitive]")
	})
	// [Symbol.toPrimitive] is not writable
	proto.defineBuiltin(SymbolKey(r.SymbolToPrimitive()), PropertyDescriptor{Writable: FlagFalse})
}
