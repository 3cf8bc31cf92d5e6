package objmodel

func (r *Realm) setupErrorBuiltins() {
	in := &r.intrinsics
	in.Error = r.addErrorConstructor("Error", in.ErrorPrototype, nil)

	for _, name := range nativeErrorNames {
		r.addErrorConstructor(name, in.NativeErrorPrototypes[name], in.Error)
	}

	r.defineMethod(in.ErrorPrototype, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		obj, isObj := this.(*Object)
		if !isObj {
			return nil, r.ThrowTypeError("Error.prototype.toString called on non-object")
		}
		name, err := r.stringPropertyOr(obj, "name", "Error")
		if err != nil {
			return nil, err
		}
		msg, err := r.stringPropertyOr(obj, "message", "")
		if err != nil {
			return nil, err
		}
		switch {
		case name == "":
			return NewString(msg), nil
		case msg == "":
			return NewString(name), nil
		}
		return NewString(name + ": " + msg), nil
	})
}

// addErrorConstructor installs Error or a native error constructor.
// parent is the [[Prototype]] of the constructor; nil means
// Function.prototype.
func (r *Realm) addErrorConstructor(name string, proto *Object, parent *Object) *Object {
	var cons *Object
	cons = r.defineConstructor(name, 1, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		errProto, err := r.GetPrototypeFromConstructor(flags.NewTargetOr(cons), proto)
		if err != nil {
			return nil, err
		}
		obj := r.newObject(KindError, "Error", errProto)

		if msg := r.Arg(args, 0); !IsUndefined(msg) {
			s, err := r.ToString(msg)
			if err != nil {
				return nil, err
			}
			obj.defineBuiltin(StringKey("message"), DataDescriptor(NewString(s), true, false, true))
		}

		if options, isObj := r.Arg(args, 1).(*Object); isObj {
			has, err := options.HasProperty(StringKey("cause"))
			if err != nil {
				return nil, err
			}
			if has {
				cause, err := options.Get(StringKey("cause"), options)
				if err != nil {
					return nil, err
				}
				obj.defineBuiltin(StringKey("cause"), DataDescriptor(cause, true, false, true))
			}
		}
		return obj, nil
	})
	if parent != nil {
		cons.proto = parent
	}

	r.defineValue(proto, "name", NewString(name))
	r.defineValue(proto, "message", NewString(""))
	return cons
}

func (r *Realm) stringPropertyOr(obj *Object, name string, fallback string) (string, error) {
	v, err := obj.Get(StringKey(name), obj)
	if err != nil {
		return "", err
	}
	if IsUndefined(v) {
		return fallback, nil
	}
	return r.ToString(v)
}
