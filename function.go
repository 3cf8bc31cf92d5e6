package objmodel

type CallFlags struct {
	IsNew bool
	// NewTarget is set when IsNew is.
	NewTarget *Object
}

// NativeCallback implements the body of a function object. For
// ConstructorBase functions called with new, this is the freshly allocated
// object.
type NativeCallback func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error)

type ConstructorKind uint8

const (
	ConstructorNone ConstructorKind = iota
	// ConstructorBase allocates this from newTarget.prototype before the
	// callback runs; an object returned by the callback replaces it.
	ConstructorBase
	// ConstructorNative leaves allocation to the callback, which must
	// return an object when flags.IsNew is set.
	ConstructorNative
)

type FunctionSlots struct {
	Name        string
	Native      NativeCallback
	Constructor ConstructorKind
	// Source is returned by Function.prototype.toString when set.
	Source string

	// set for bound functions
	BoundTarget *Object
}

type FunctionOptions struct {
	Name        string
	Length      int
	Constructor ConstructorKind
	// Prototype is the [[Prototype]] of the function; nil means
	// Function.prototype.
	Prototype *Object
	// WithPrototype gives the function a fresh "prototype" object whose
	// "constructor" points back at it.
	WithPrototype bool
	Source        string
}

func (r *Realm) NewFunction(cb NativeCallback, opts FunctionOptions) *Object {
	proto := opts.Prototype
	if proto == nil {
		proto = r.intrinsics.FunctionPrototype
	}
	fn := r.newObject(KindFunction, "Function", proto)
	fn.fn = &FunctionSlots{
		Name:        opts.Name,
		Native:      cb,
		Constructor: opts.Constructor,
		Source:      opts.Source,
	}
	fn.defineBuiltin(StringKey("length"), DataDescriptor(NewNumber(float64(opts.Length)), false, false, true))
	fn.defineBuiltin(StringKey("name"), DataDescriptor(NewString(opts.Name), false, false, true))

	if opts.WithPrototype {
		protoObj := r.NewObject()
		protoObj.defineBuiltin(StringKey("constructor"), DataDescriptor(fn, true, false, true))
		fn.defineBuiltin(StringKey("prototype"), DataDescriptor(protoObj, true, false, false))
	}
	return fn
}

// NewNativeFunction creates a builtin that is not a constructor.
func (r *Realm) NewNativeFunction(name string, length int, cb NativeCallback) *Object {
	return r.NewFunction(cb, FunctionOptions{Name: name, Length: length})
}

// FunctionName is the name the function was created with.
func (o *Object) FunctionName() string {
	if o.kind != KindFunction {
		return ""
	}
	return o.fn.Name
}

func (o *Object) callFunction(this Value, args []Value) (ret Value, err error) {
	r := o.realm
	if err := r.enterCall(); err != nil {
		return nil, err
	}
	defer r.leaveCall()

	ret, err = o.fn.Native(r, this, args, CallFlags{})
	if err != nil {
		return nil, err
	}
	if ret == nil {
		ret = r.Undefined()
	}
	return ret, nil
}

func (o *Object) constructFunction(args []Value, newTarget *Object) (*Object, error) {
	r := o.realm
	if err := r.enterCall(); err != nil {
		return nil, err
	}
	defer r.leaveCall()

	flags := CallFlags{IsNew: true, NewTarget: newTarget}
	switch o.fn.Constructor {
	case ConstructorBase:
		this, err := r.OrdinaryCreateFromConstructor(newTarget, r.intrinsics.ObjectPrototype)
		if err != nil {
			return nil, err
		}
		ret, err := o.fn.Native(r, this, args, flags)
		if err != nil {
			return nil, err
		}
		if obj, isObj := ret.(*Object); isObj {
			return obj, nil
		}
		return this, nil

	case ConstructorNative:
		ret, err := o.fn.Native(r, r.Undefined(), args, flags)
		if err != nil {
			return nil, err
		}
		obj, isObj := ret.(*Object)
		if !isObj {
			panic("bug: native constructor " + o.fn.Name + " returned a non-object")
		}
		return obj, nil

	default:
		panic("bug: constructFunction on a non-constructor")
	}
}

// BoundFunctionCreate implements Function.prototype.bind.
func (r *Realm) BoundFunctionCreate(target *Object, boundThis Value, boundArgs []Value) (*Object, error) {
	proto, err := target.GetPrototypeOf()
	if err != nil {
		return nil, err
	}

	boundArgs = append([]Value(nil), boundArgs...)
	cons := ConstructorNone
	if target.isConstructor() {
		cons = ConstructorNative
	}

	var bound *Object
	cb := func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		fullArgs := make([]Value, 0, len(boundArgs)+len(args))
		fullArgs = append(fullArgs, boundArgs...)
		fullArgs = append(fullArgs, args...)
		if flags.IsNew {
			newTarget := flags.NewTarget
			if newTarget.Is(bound) {
				newTarget = target
			}
			return target.Construct(fullArgs, newTarget)
		}
		return target.Call(boundThis, fullArgs)
	}

	bound = r.newObject(KindFunction, "Function", proto)
	bound.fn = &FunctionSlots{
		Native:      cb,
		Constructor: cons,
		BoundTarget: target,
	}
	return bound, nil
}

// CreateUnmappedArgumentsObject builds the arguments object of a call. The
// indices are plain data properties that do not alias the parameters.
func (r *Realm) CreateUnmappedArgumentsObject(args []Value) *Object {
	obj := r.newObject(KindArguments, "Arguments", r.intrinsics.ObjectPrototype)
	obj.defineBuiltin(lengthKey, DataDescriptor(NewNumber(float64(len(args))), true, false, true))
	for i, arg := range args {
		obj.defineBuiltin(IndexKey(uint32(i)), DataDescriptor(arg, true, true, true))
	}
	return obj
}
