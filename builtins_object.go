package objmodel

func (r *Realm) setupObjectBuiltins() {
	proto := r.intrinsics.ObjectPrototype
	var cons *Object
	cons = r.defineConstructor("Object", 1, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if flags.IsNew && !flags.NewTarget.Is(cons) {
			return r.OrdinaryCreateFromConstructor(flags.NewTarget, proto)
		}
		value := r.Arg(args, 0)
		if IsNullish(value) {
			return r.NewObject(), nil
		}
		return r.ToObject(value)
	})
	r.intrinsics.Object = cons

	r.defineMethod(cons, "getPrototypeOf", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		p, err := obj.GetPrototypeOf()
		if err != nil {
			return nil, err
		}
		return r.objectOrNull(p), nil
	})

	r.defineMethod(cons, "setPrototypeOf", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		o := r.Arg(args, 0)
		if IsNullish(o) {
			return nil, r.ThrowTypeError("Object.setPrototypeOf called on null or undefined")
		}
		p, err := r.protoArg(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		obj, isObj := o.(*Object)
		if !isObj {
			return o, nil
		}
		ok, err := obj.SetPrototypeOf(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.ThrowTypeError("cannot set prototype of %s", describe(obj))
		}
		return obj, nil
	})

	r.defineMethod(cons, "defineProperty", 3, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return nil, r.ThrowTypeError("Object.defineProperty called on non-object")
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		desc, err := r.ToPropertyDescriptor(r.Arg(args, 2))
		if err != nil {
			return nil, err
		}
		if err := r.DefinePropertyOrThrow(obj, k, desc); err != nil {
			return nil, err
		}
		return obj, nil
	})

	r.defineMethod(cons, "defineProperties", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return nil, r.ThrowTypeError("Object.defineProperties called on non-object")
		}
		return r.objectDefineProperties(obj, r.Arg(args, 1))
	})

	r.defineMethod(cons, "getOwnPropertyDescriptor", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		desc, err := obj.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		return r.FromPropertyDescriptor(desc), nil
	})

	r.defineMethod(cons, "getOwnPropertyDescriptors", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := r.ToObject(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		keys, err := obj.OwnPropertyKeys()
		if err != nil {
			return nil, err
		}
		descriptors := r.NewObject()
		for _, k := range keys {
			desc, err := obj.GetOwnProperty(k)
			if err != nil {
				return nil, err
			}
			if desc != nil {
				if _, err := r.CreateDataProperty(descriptors, k, r.FromPropertyDescriptor(desc)); err != nil {
					return nil, err
				}
			}
		}
		return descriptors, nil
	})

	ownKeys := func(wantSymbols bool) NativeCallback {
		return func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			obj, err := r.ToObject(r.Arg(args, 0))
			if err != nil {
				return nil, err
			}
			keys, err := obj.OwnPropertyKeys()
			if err != nil {
				return nil, err
			}
			var list []Value
			for _, k := range keys {
				if k.IsSymbol() == wantSymbols {
					list = append(list, k.ToValue())
				}
			}
			return r.CreateArrayFromList(list), nil
		}
	}
	r.defineMethod(cons, "getOwnPropertyNames", 1, ownKeys(false))
	r.defineMethod(cons, "getOwnPropertySymbols", 1, ownKeys(true))

	enumerable := func(kind EnumerableKind) NativeCallback {
		return func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			obj, err := r.ToObject(r.Arg(args, 0))
			if err != nil {
				return nil, err
			}
			list, err := r.EnumerableOwnProperties(obj, kind)
			if err != nil {
				return nil, err
			}
			return r.CreateArrayFromList(list), nil
		}
	}
	r.defineMethod(cons, "keys", 1, enumerable(EnumerateKeys))
	r.defineMethod(cons, "values", 1, enumerable(EnumerateValues))
	r.defineMethod(cons, "entries", 1, enumerable(EnumerateEntries))

	r.defineMethod(cons, "assign", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		to, err := r.ToObject(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		for _, src := range args[min(1, len(args)):] {
			if IsNullish(src) {
				continue
			}
			from, err := r.ToObject(src)
			if err != nil {
				return nil, err
			}
			keys, err := from.OwnPropertyKeys()
			if err != nil {
				return nil, err
			}
			for _, k := range keys {
				desc, err := from.GetOwnProperty(k)
				if err != nil {
					return nil, err
				}
				if desc == nil || !desc.Enumerable.Bool() {
					continue
				}
				v, err := from.Get(k, from)
				if err != nil {
					return nil, err
				}
				if err := r.Set(to, k, v, true); err != nil {
					return nil, err
				}
			}
		}
		return to, nil
	})

	r.defineMethod(cons, "create", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		p, err := r.protoArg(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		obj := r.OrdinaryObjectCreate(p)
		if props := r.Arg(args, 1); !IsUndefined(props) {
			return r.objectDefineProperties(obj, props)
		}
		return obj, nil
	})

	r.defineMethod(cons, "preventExtensions", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return r.Arg(args, 0), nil
		}
		ok, err := obj.PreventExtensions()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.ThrowTypeError("cannot prevent extensions")
		}
		return obj, nil
	})

	r.defineMethod(cons, "isExtensible", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return r.Bool(false), nil
		}
		ok, err := obj.IsExtensible()
		return r.Bool(ok), err
	})

	integrity := func(name string, level IntegrityLevel) {
		r.defineMethod(cons, name, 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			obj, isObj := r.Arg(args, 0).(*Object)
			if !isObj {
				return r.Arg(args, 0), nil
			}
			ok, err := r.SetIntegrityLevel(obj, level)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, r.ThrowTypeError("cannot %s object", name)
			}
			return obj, nil
		})
	}
	integrity("freeze", Frozen)
	integrity("seal", Sealed)

	testIntegrity := func(name string, level IntegrityLevel) {
		r.defineMethod(cons, name, 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			obj, isObj := r.Arg(args, 0).(*Object)
			if !isObj {
				return r.Bool(true), nil
			}
			ok, err := r.TestIntegrityLevel(obj, level)
			return r.Bool(ok), err
		})
	}
	testIntegrity("isFrozen", Frozen)
	testIntegrity("isSealed", Sealed)

	r.defineMethod(cons, "is", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Bool(SameValue(r.Arg(args, 0), r.Arg(args, 1))), nil
	})

	r.defineMethod(proto, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		s, err := r.ObjectToString(this)
		if err != nil {
			return nil, err
		}
		return NewString(s), nil
	})

	r.defineMethod(proto, "toLocaleString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Invoke(this, StringKey("toString"), nil)
	})

	r.defineMethod(proto, "valueOf", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.ToObject(this)
	})

	r.defineMethod(proto, "hasOwnProperty", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		k, err := r.ToPropertyKey(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		has, err := r.HasOwnProperty(obj, k)
		return r.Bool(has), err
	})

	r.defineMethod(proto, "isPrototypeOf", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		v, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return r.Bool(false), nil
		}
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		for {
			v, err = v.GetPrototypeOf()
			if err != nil {
				return nil, err
			}
			if v == nil {
				return r.Bool(false), nil
			}
			if v.Is(obj) {
				return r.Bool(true), nil
			}
		}
	})

	r.defineMethod(proto, "propertyIsEnumerable", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		k, err := r.ToPropertyKey(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		obj, err := r.ToObject(this)
		if err != nil {
			return nil, err
		}
		desc, err := obj.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		return r.Bool(desc != nil && desc.Enumerable.Bool()), nil
	})
}

// ObjectToString implements Object.prototype.toString.
func (r *Realm) ObjectToString(this Value) (string, error) {
	switch this.(type) {
	case Undefined:
		return "[object Undefined]", nil
	case Null:
		return "[object Null]", nil
	}
	obj, err := r.ToObject(this)
	if err != nil {
		return "", err
	}

	isArray, err := r.IsArray(obj)
	if err != nil {
		return "", err
	}
	builtinTag := "Object"
	switch {
	case isArray:
		builtinTag = "Array"
	case obj.isCallable():
		builtinTag = "Function"
	case obj.kind == KindError:
		builtinTag = "Error"
	case obj.kind == KindArguments:
		builtinTag = "Arguments"
	case obj.kind == KindPrimitiveWrapper && obj.class != "Symbol":
		builtinTag = obj.class
	}

	tag, err := obj.Get(SymbolKey(r.WellKnownSymbol("toStringTag")), obj)
	if err != nil {
		return "", err
	}
	if s, isStr := tag.(String); isStr {
		builtinTag = s.s
	}
	return "[object " + builtinTag + "]", nil
}

func (r *Realm) objectDefineProperties(obj *Object, properties Value) (Value, error) {
	props, err := r.ToObject(properties)
	if err != nil {
		return nil, err
	}
	keys, err := props.OwnPropertyKeys()
	if err != nil {
		return nil, err
	}

	type pending struct {
		key  PropertyKey
		desc PropertyDescriptor
	}
	var descriptors []pending
	for _, k := range keys {
		propDesc, err := props.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if propDesc == nil || !propDesc.Enumerable.Bool() {
			continue
		}
		descObj, err := props.Get(k, props)
		if err != nil {
			return nil, err
		}
		desc, err := r.ToPropertyDescriptor(descObj)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, pending{k, desc})
	}

	for _, p := range descriptors {
		if err := r.DefinePropertyOrThrow(obj, p.key, p.desc); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// protoArg accepts an object or null as a prototype.
func (r *Realm) protoArg(v Value) (*Object, error) {
	switch v := v.(type) {
	case *Object:
		return v, nil
	case Null:
		return nil, nil
	default:
		return nil, r.ThrowTypeError("object prototype may only be an object or null: %s", describe(v))
	}
}

func (r *Realm) objectOrNull(o *Object) Value {
	if o == nil {
		return r.Null()
	}
	return o
}
