package objmodel

import "math"

func (r *Realm) setupFunctionBuiltins() {
	proto := r.intrinsics.FunctionPrototype
	proto.fn.Name = ""
	proto.defineBuiltin(StringKey("length"), DataDescriptor(NewNumber(0), false, false, true))
	proto.defineBuiltin(StringKey("name"), DataDescriptor(NewString(""), false, false, true))

	cons := r.defineConstructor("Function", 1, proto, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if r.functionCompiler == nil {
			return nil, r.ThrowSyntaxError("dynamic function compilation is not available")
		}
		params := make([]string, 0, len(args))
		body := ""
		for i, arg := range args {
			s, err := r.ToString(arg)
			if err != nil {
				return nil, err
			}
			if i == len(args)-1 {
				body = s
			} else {
				params = append(params, s)
			}
		}
		return r.functionCompiler(params, body)
	})
	r.intrinsics.Function = cons

	r.defineMethod(proto, "call", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if !IsCallable(this) {
			return nil, r.ThrowTypeError("Function.prototype.call called on a non-callable value")
		}
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return r.Call(this, r.Arg(args, 0), rest)
	})

	r.defineMethod(proto, "apply", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		if !IsCallable(this) {
			return nil, r.ThrowTypeError("Function.prototype.apply called on a non-callable value")
		}
		argArray := r.Arg(args, 1)
		if IsNullish(argArray) {
			return r.Call(this, r.Arg(args, 0), nil)
		}
		list, err := r.CreateListFromArrayLike(argArray)
		if err != nil {
			return nil, err
		}
		return r.Call(this, r.Arg(args, 0), list)
	})

	r.defineMethod(proto, "bind", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		target, isObj := this.(*Object)
		if !isObj || !target.isCallable() {
			return nil, r.ThrowTypeError("Function.prototype.bind: 'this' is not callable")
		}
		var boundArgs []Value
		if len(args) > 1 {
			boundArgs = args[1:]
		}
		bound, err := r.BoundFunctionCreate(target, r.Arg(args, 0), boundArgs)
		if err != nil {
			return nil, err
		}

		length := 0.0
		hasLength, err := r.HasOwnProperty(target, StringKey("length"))
		if err != nil {
			return nil, err
		}
		if hasLength {
			targetLen, err := target.Get(StringKey("length"), target)
			if err != nil {
				return nil, err
			}
			if n, isNum := targetLen.(Number); isNum {
				switch {
				case math.IsInf(n.f, 1):
					length = n.f
				case !math.IsInf(n.f, -1):
					length = math.Max(0, integerOrInfinity(n.f)-float64(len(boundArgs)))
				}
			}
		}
		bound.defineBuiltin(StringKey("length"), DataDescriptor(NewNumber(length), false, false, true))

		targetName, err := target.Get(StringKey("name"), target)
		if err != nil {
			return nil, err
		}
		name := ""
		if s, isStr := targetName.(String); isStr {
			name = s.s
		}
		bound.fn.Name = "bound " + name
		bound.defineBuiltin(StringKey("name"), DataDescriptor(NewString(bound.fn.Name), false, false, true))
		return bound, nil
	})

	r.defineMethod(proto, "toString", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		fn, isObj := this.(*Object)
		if !isObj || !fn.isCallable() {
			return nil, r.ThrowTypeError("Function.prototype.toString: 'this' is not a function")
		}
		if fn.kind == KindFunction && fn.fn.Source != "" {
			return NewString(fn.fn.Source), nil
		}
		return NewString("function " + fn.FunctionName() + "() { [native code] }"), nil
	})

	r.defineSymbolMethod(proto, r.WellKnownSymbol("hasInstance"), "[Symbol.hasInstance]", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		ok, err := r.OrdinaryHasInstance(this, r.Arg(args, 0))
		return r.Bool(ok), err
	})
	// [Symbol.hasInstance] is not writable
	hasInstance := SymbolKey(r.WellKnownSymbol("hasInstance"))
	proto.defineBuiltin(hasInstance, PropertyDescriptor{Writable: FlagFalse, Configurable: FlagFalse})
}

// FunctionCompiler compiles the parameter list and body given to the
// Function constructor.
type FunctionCompiler func(params []string, body string) (*Object, error)

// SetFunctionCompiler lets an evaluator back the Function constructor.
func (r *Realm) SetFunctionCompiler(compile FunctionCompiler) {
	r.functionCompiler = compile
}
