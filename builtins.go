package objmodel

import "math"

// Arg returns args[i], or undefined when the argument is missing.
func (r *Realm) Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return r.Undefined()
}

// builtin property attributes: writable, not enumerable, configurable
func (r *Realm) defineMethod(o *Object, name string, length int, cb NativeCallback) *Object {
	fn := r.NewNativeFunction(name, length, cb)
	o.defineBuiltin(StringKey(name), DataDescriptor(fn, true, false, true))
	return fn
}

func (r *Realm) defineSymbolMethod(o *Object, sym *Symbol, name string, length int, cb NativeCallback) *Object {
	fn := r.NewNativeFunction(name, length, cb)
	o.defineBuiltin(SymbolKey(sym), DataDescriptor(fn, true, false, true))
	return fn
}

func (r *Realm) defineValue(o *Object, name string, v Value) {
	o.defineBuiltin(StringKey(name), DataDescriptor(v, true, false, true))
}

func (r *Realm) defineGetter(o *Object, name string, cb NativeCallback) {
	getter := r.NewNativeFunction("get "+name, 0, cb)
	o.defineBuiltin(StringKey(name), AccessorDescriptor(getter, r.Undefined(), false, true))
}

// defineConstructor installs a constructor on the global object and links
// it with its prototype object.
func (r *Realm) defineConstructor(name string, length int, proto *Object, cb NativeCallback) *Object {
	cons := r.NewFunction(cb, FunctionOptions{
		Name:        name,
		Length:      length,
		Constructor: ConstructorNative,
	})
	cons.defineBuiltin(StringKey("prototype"), DataDescriptor(proto, false, false, false))
	proto.defineBuiltin(StringKey("constructor"), DataDescriptor(cons, true, false, true))
	r.defineValue(r.global, name, cons)
	return cons
}

// NewTargetOr returns the constructor that new was applied to, or fallback
// for plain calls.
func (flags CallFlags) NewTargetOr(fallback *Object) *Object {
	if flags.IsNew && flags.NewTarget != nil {
		return flags.NewTarget
	}
	return fallback
}

func (r *Realm) setupGlobals() {
	g := r.global
	r.defineValue(g, "globalThis", g)
	g.defineBuiltin(StringKey("NaN"), DataDescriptor(NewNumber(math.NaN()), false, false, false))
	g.defineBuiltin(StringKey("Infinity"), DataDescriptor(NewNumber(math.Inf(1)), false, false, false))
	g.defineBuiltin(StringKey("undefined"), DataDescriptor(r.Undefined(), false, false, false))

	r.defineMethod(g, "isNaN", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		n, err := r.ToNumber(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return r.Bool(math.IsNaN(n)), nil
	})
	r.defineMethod(g, "isFinite", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		n, err := r.ToNumber(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		return r.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})
}
