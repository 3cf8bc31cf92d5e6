package objmodel

import "strings"

func (r *Realm) setupArrayBuiltins() {
	proto := r.intrinsics.ArrayPrototype
	cons := r.defineConstructor("Array", 1, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		arrProto, err := r.GetPrototypeFromConstructor(flags.NewTargetOr(r.intrinsics.Array), proto)
		if err != nil {
			return nil, err
		}

		if len(args) == 1 {
			n, isNum := args[0].(Number)
			if !isNum {
				arr := r.ArrayCreate(0, arrProto)
				arr.defineBuiltin(IndexKey(0), DataDescriptor(args[0], true, true, true))
				return arr, nil
			}
			if !validArrayLength(n.f) {
				return nil, r.ThrowRangeError("invalid array length")
			}
			return r.ArrayCreate(uint32(n.f), arrProto), nil
		}

		arr := r.ArrayCreate(0, arrProto)
		for i, el := range args {
			arr.defineBuiltin(IndexKey(uint32(i)), DataDescriptor(el, true, true, true))
		}
		return arr, nil
	})
	r.intrinsics.Array = cons

	r.defineMethod(cons, "isArray", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		ok, err := r.IsArray(r.Arg(args, 0))
		return r.Bool(ok), err
	})

	r.defineMethod(proto, "push", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		n, err := r.LengthOfArrayLike(obj)
		if err != nil {
			return nil, err
		}
		if n+uint64(len(args)) > maxSafeInteger {
			return nil, r.ThrowTypeError("pushing %d elements on an array-like of length %d is disallowed", len(args), n)
		}
		for _, el := range args {
			if err := r.Set(obj, StringKey(formatIndex(n)), el, true); err != nil {
				return nil, err
			}
			n++
		}
		length := NewNumber(float64(n))
		if err := r.Set(obj, lengthKey, length, true); err != nil {
			return nil, err
		}
		return length, nil
	})

	r.defineMethod(proto, "join", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		s, err := r.arrayJoin(obj, r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})

	r.defineMethod(proto, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		join, err := obj.Get(StringKey("join"), obj)
		if err != nil {
			return nil, err
		}
		if !IsCallable(join) {
			s, err := r.ObjectToString(obj)
			if err != nil {
				return nil, err
			}
			return NewString(s), nil
		}
		return r.Call(join, obj, nil)
	})
}

func (r *Realm) arrayJoin(obj *Object, separator Value) (string, error) {
	n, err := r.LengthOfArrayLike(obj)
	if err != nil {
		return "", err
	}
	sep := ","
	if !IsUndefined(separator) {
		sep, err = r.ToString(separator)
		if err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for i := uint64(0); i < n; i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		el, err := obj.Get(StringKey(formatIndex(i)), obj)
		if err != nil {
			return "", err
		}
		if IsNullish(el) {
			continue
		}
		s, err := r.ToString(el)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
