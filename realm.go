package objmodel

import (
	"fmt"
)

const DefaultMaxCallDepth = 1000

// Intrinsics are the canonical values and objects a realm creates before
// any other object exists.
type Intrinsics struct {
	Undefined Undefined
	Null      Null
	True      Boolean
	False     Boolean

	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	BooleanPrototype  *Object
	NumberPrototype   *Object
	StringPrototype   *Object
	SymbolPrototype   *Object
	ErrorPrototype    *Object

	// keyed by constructor name: TypeError, RangeError, ...
	NativeErrorPrototypes map[string]*Object

	Object   *Object
	Function *Object
	Array    *Object
	Error    *Object
}

var wellKnownSymbolNames = []string{
	"hasInstance",
	"iterator",
	"toPrimitive",
	"toStringTag",
}

var nativeErrorNames = []string{
	"EvalError",
	"RangeError",
	"ReferenceError",
	"SyntaxError",
	"TypeError",
	"URIError",
}

// Realm owns a set of intrinsics and every object created from them.
// A realm is not safe for concurrent use.
type Realm struct {
	intrinsics Intrinsics
	wellKnown  map[string]*Symbol
	registry   map[string]*Symbol
	global     *Object

	functionCompiler FunctionCompiler

	maxCallDepth int
	callDepth    int
}

type RealmOption func(*Realm)

// WithMaxCallDepth bounds the nesting of calls, constructs and proxy traps.
func WithMaxCallDepth(depth int) RealmOption {
	return func(r *Realm) {
		if depth > 0 {
			r.maxCallDepth = depth
		}
	}
}

func NewRealm(opts ...RealmOption) *Realm {
	r := &Realm{
		wellKnown:    make(map[string]*Symbol),
		registry:     make(map[string]*Symbol),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(r)
	}

	in := &r.intrinsics
	in.Undefined = Undefined{id: nextID()}
	in.Null = Null{id: nextID()}
	in.True = Boolean{id: nextID(), b: true}
	in.False = Boolean{id: nextID(), b: false}

	for _, name := range wellKnownSymbolNames {
		r.wellKnown[name] = NewSymbol("Symbol." + name)
	}

	in.ObjectPrototype = r.newObject(KindOrdinary, "Object", nil)
	in.FunctionPrototype = r.newObject(KindFunction, "Function", in.ObjectPrototype)
	in.FunctionPrototype.fn = &FunctionSlots{
		Native: func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
			return r.Undefined(), nil
		},
	}
	in.ArrayPrototype = r.ArrayCreate(0, in.ObjectPrototype)
	in.BooleanPrototype = r.newObject(KindPrimitiveWrapper, "Boolean", in.ObjectPrototype)
	in.BooleanPrototype.primitive = in.False
	in.NumberPrototype = r.newObject(KindPrimitiveWrapper, "Number", in.ObjectPrototype)
	in.NumberPrototype.primitive = NewNumber(0)
	in.StringPrototype = r.newObject(KindPrimitiveWrapper, "String", in.ObjectPrototype)
	in.StringPrototype.primitive = NewString("")
	in.StringPrototype.defineBuiltin(StringKey("length"), DataDescriptor(NewNumber(0), false, false, false))
	in.SymbolPrototype = r.newObject(KindOrdinary, "Symbol", in.ObjectPrototype)
	in.ErrorPrototype = r.newObject(KindOrdinary, "Error", in.ObjectPrototype)
	in.NativeErrorPrototypes = make(map[string]*Object, len(nativeErrorNames))
	for _, name := range nativeErrorNames {
		in.NativeErrorPrototypes[name] = r.newObject(KindOrdinary, "Error", in.ErrorPrototype)
	}

	r.global = r.newObject(KindOrdinary, "global", in.ObjectPrototype)

	r.setupObjectBuiltins()
	r.setupFunctionBuiltins()
	r.setupArrayBuiltins()
	r.setupPrimitiveBuiltins()
	r.setupSymbolBuiltins()
	r.setupErrorBuiltins()
	r.setupReflectBuiltins()
	r.setupGlobals()
	return r
}

func (r *Realm) Intrinsics() *Intrinsics { return &r.intrinsics }
func (r *Realm) GlobalObject() *Object   { return r.global }

func (r *Realm) Undefined() Undefined { return r.intrinsics.Undefined }
func (r *Realm) Null() Null           { return r.intrinsics.Null }

func (r *Realm) Bool(b bool) Boolean {
	if b {
		return r.intrinsics.True
	}
	return r.intrinsics.False
}

// WellKnownSymbol returns @@name, e.g. WellKnownSymbol("toPrimitive").
func (r *Realm) WellKnownSymbol(name string) *Symbol {
	sym, found := r.wellKnown[name]
	if !found {
		panic("bug: unknown well-known symbol: " + name)
	}
	return sym
}

func (r *Realm) SymbolToPrimitive() *Symbol {
	return r.WellKnownSymbol("toPrimitive")
}

// SymbolFor implements the Symbol.for registry.
func (r *Realm) SymbolFor(key string) *Symbol {
	if sym, found := r.registry[key]; found {
		return sym
	}
	sym := NewSymbol(key)
	r.registry[key] = sym
	return sym
}

func (r *Realm) symbolKeyFor(sym *Symbol) (string, bool) {
	for key, s := range r.registry {
		if s.id == sym.id {
			return key, true
		}
	}
	return "", false
}

func (r *Realm) newObject(kind ObjectKind, class string, proto *Object) *Object {
	return &Object{
		id:         nextID(),
		realm:      r,
		kind:       kind,
		class:      class,
		proto:      proto,
		extensible: true,
		props:      newPropertyStore(),
	}
}

// OrdinaryObjectCreate creates an ordinary object with the given prototype
// (nil for null).
func (r *Realm) OrdinaryObjectCreate(proto *Object) *Object {
	if proto != nil && proto.realm != r {
		panic("bug: prototype from a different realm")
	}
	return r.newObject(KindOrdinary, "Object", proto)
}

// NewObject creates an object inheriting from Object.prototype.
func (r *Realm) NewObject() *Object {
	return r.OrdinaryObjectCreate(r.intrinsics.ObjectPrototype)
}

// NewError creates an error object. kind is "Error" or the name of a native
// error constructor.
func (r *Realm) NewError(kind string, message string) *Object {
	proto := r.intrinsics.ErrorPrototype
	if kind != "Error" {
		p, found := r.intrinsics.NativeErrorPrototypes[kind]
		if !found {
			panic("bug: unknown error kind: " + kind)
		}
		proto = p
	}
	obj := r.newObject(KindError, "Error", proto)
	obj.defineBuiltin(StringKey("message"), DataDescriptor(NewString(message), true, false, true))
	return obj
}

func (r *Realm) Throw(kind string, format string, args ...any) error {
	return ThrowCompletion(r.NewError(kind, fmt.Sprintf(format, args...)))
}

func (r *Realm) ThrowTypeError(format string, args ...any) error {
	return r.Throw("TypeError", format, args...)
}

func (r *Realm) ThrowRangeError(format string, args ...any) error {
	return r.Throw("RangeError", format, args...)
}

func (r *Realm) ThrowReferenceError(format string, args ...any) error {
	return r.Throw("ReferenceError", format, args...)
}

func (r *Realm) ThrowSyntaxError(format string, args ...any) error {
	return r.Throw("SyntaxError", format, args...)
}

// enterCall must be paired with leaveCall when it succeeds.
func (r *Realm) enterCall() error {
	if r.callDepth >= r.maxCallDepth {
		return r.ThrowRangeError("maximum call stack size exceeded")
	}
	r.callDepth++
	return nil
}

func (r *Realm) leaveCall() {
	r.callDepth--
}

// CallDepth is the current nesting of calls, constructs and proxy traps.
func (r *Realm) CallDepth() int {
	return r.callDepth
}
