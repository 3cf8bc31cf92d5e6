package objmodel

func (r *Realm) setupReflectBuiltins() {
	reflect := r.NewObject()
	r.defineValue(r.global, "Reflect", reflect)
	reflect.defineBuiltin(SymbolKey(r.WellKnownSymbol("toStringTag")), DataDescriptor(NewString("Reflect"), false, false, true))

	target := func(r *Realm, args []Value, method string) (*Object, error) {
		obj, isObj := r.Arg(args, 0).(*Object)
		if !isObj {
			return nil, r.ThrowTypeError("Reflect.%s called on non-object", method)
		}
		return obj, nil
	}
	// receiver defaults to the target
	receiver := func(r *Realm, obj *Object, args []Value, i int) Value {
		if i < len(args) {
			return args[i]
		}
		return obj
	}

	r.defineMethod(reflect, "apply", 3, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		list, err := r.CreateListFromArrayLike(r.Arg(args, 2))
		if err != nil {
			return nil, err
		}
		return r.Call(r.Arg(args, 0), r.Arg(args, 1), list)
	})

	r.defineMethod(reflect, "construct", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		f := r.Arg(args, 0)
		if !IsConstructor(f) {
			return nil, r.ThrowTypeError("Reflect.construct: %s is not a constructor", describe(f))
		}
		newTarget := f.(*Object)
		if len(args) > 2 {
			if !IsConstructor(args[2]) {
				return nil, r.ThrowTypeError("Reflect.construct: %s is not a constructor", describe(args[2]))
			}
			newTarget = args[2].(*Object)
		}
		list, err := r.CreateListFromArrayLike(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return r.Construct(f, list, newTarget)
	})

	r.defineMethod(reflect, "defineProperty", 3, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "defineProperty")
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		desc, err := r.ToPropertyDescriptor(r.Arg(args, 2))
		if err != nil {
			return nil, err
		}
		ok, err := obj.DefineOwnProperty(k, desc)
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "deleteProperty", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "deleteProperty")
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		ok, err := obj.Delete(k)
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "get", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "get")
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return obj.Get(k, receiver(r, obj, args, 2))
	})

	r.defineMethod(reflect, "getOwnPropertyDescriptor", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "getOwnPropertyDescriptor")
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

	r.defineMethod(reflect, "getPrototypeOf", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "getPrototypeOf")
		if err != nil {
			return nil, err
		}
		p, err := obj.GetPrototypeOf()
		if err != nil {
			return nil, err
		}
		return r.objectOrNull(p), nil
	})

	r.defineMethod(reflect, "has", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "has")
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		ok, err := obj.HasProperty(k)
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "isExtensible", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "isExtensible")
		if err != nil {
			return nil, err
		}
		ok, err := obj.IsExtensible()
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "ownKeys", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "ownKeys")
		if err != nil {
			return nil, err
		}
		keys, err := obj.OwnPropertyKeys()
		if err != nil {
			return nil, err
		}
		list := make([]Value, len(keys))
		for i, k := range keys {
			list[i] = k.ToValue()
		}
		return r.CreateArrayFromList(list), nil
	})

	r.defineMethod(reflect, "preventExtensions", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "preventExtensions")
		if err != nil {
			return nil, err
		}
		ok, err := obj.PreventExtensions()
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "set", 3, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "set")
		if err != nil {
			return nil, err
		}
		k, err := r.ToPropertyKey(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		ok, err := obj.Set(k, r.Arg(args, 2), receiver(r, obj, args, 3))
		return r.Bool(ok), err
	})

	r.defineMethod(reflect, "setPrototypeOf", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, err := target(r, args, "setPrototypeOf")
		if err != nil {
			return nil, err
		}
		p, err := r.protoArg(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		ok, err := obj.SetPrototypeOf(p)
		return r.Bool(ok), err
	})

	r.setupProxyBuiltins()
}

func (r *Realm) setupProxyBuiltins() {
	cons := r.NewFunction(func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if !flags.IsNew {
			return nil, r.ThrowTypeError("constructor Proxy requires 'new'")
		}
		return r.ProxyCreate(r.Arg(args, 0), r.Arg(args, 1))
	}, FunctionOptions{Name: "Proxy", Length: 2, Constructor: ConstructorNative})
	r.defineValue(r.global, "Proxy", cons)

	r.defineMethod(cons, "revocable", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		p, err := r.ProxyCreate(r.Arg(args, 0), r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		revoke := r.NewNativeFunction("", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			if p.proxy.Handler != nil {
				p.Revoke()
			}
			return r.Undefined(), nil
		})
		result := r.NewObject()
		result.defineBuiltin(StringKey("proxy"), DataDescriptor(p, true, true, true))
		result.defineBuiltin(StringKey("revoke"), DataDescriptor(revoke, true, true, true))
		return result, nil
	})
}
