package objmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookup resolves a dotted path starting at the global object.
func lookup(t *testing.T, r *Realm, path ...string) Value {
	t.Helper()
	var cur Value = r.GlobalObject()
	for _, name := range path {
		v, err := r.GetV(cur, StringKey(name))
		require.NoError(t, err, "reading %s", name)
		cur = v
	}
	return cur
}

func callGlobal(t *testing.T, r *Realm, this Value, args []Value, path ...string) (Value, error) {
	t.Helper()
	return r.Call(lookup(t, r, path...), this, args)
}

func TestRealmBootstrap(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	in := r.Intrinsics()

	assert.Nil(in.ObjectPrototype.proto)
	assert.True(in.FunctionPrototype.proto.Is(in.ObjectPrototype))
	assert.True(IsCallable(in.FunctionPrototype))
	assert.True(in.NativeErrorPrototypes["TypeError"].proto.Is(in.ErrorPrototype))

	assert.True(SameValue(lookup(t, r, "Object", "prototype"), in.ObjectPrototype))
	assert.True(SameValue(lookup(t, r, "Object", "prototype", "constructor"), in.Object))
	assert.True(SameValue(lookup(t, r, "globalThis"), r.GlobalObject()))
	assert.True(SameValue(lookup(t, r, "Symbol", "toPrimitive"), r.SymbolToPrimitive()))

	typeErrorCons := lookup(t, r, "TypeError").(*Object)
	assert.True(typeErrorCons.proto.Is(in.Error))

	// singletons are shared
	assert.Equal(r.Undefined().ID(), in.Undefined.ID())
	assert.Equal(r.Bool(true).ID(), r.Bool(true).ID())

	assert.Panics(func() { r.WellKnownSymbol("nope") })
}

func TestRealmsAreIsolated(t *testing.T) {
	a := NewRealm()
	b := NewRealm()
	assert.False(t, a.Intrinsics().ObjectPrototype.Is(b.Intrinsics().ObjectPrototype))
	assert.Panics(t, func() { a.OrdinaryObjectCreate(b.NewObject()) })
}

func TestObjectStatics(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(o, StringKey("b"), NewNumber(2)))
	require.NoError(t, r.CreateDataPropertyOrThrow(o, StringKey("a"), NewNumber(1)))

	keys, err := callGlobal(t, r, r.Undefined(), []Value{o}, "Object", "keys")
	require.NoError(t, err)
	s, err := r.ToString(keys)
	require.NoError(t, err)
	assert.Equal("b,a", s)

	frozen, err := callGlobal(t, r, r.Undefined(), []Value{o}, "Object", "freeze")
	require.NoError(t, err)
	assert.True(SameValue(o, frozen))

	isFrozen, err := callGlobal(t, r, r.Undefined(), []Value{o}, "Object", "isFrozen")
	require.NoError(t, err)
	assert.True(isFrozen.(Boolean).Bool())

	ok, err := o.Set(StringKey("a"), NewNumber(5), o)
	require.NoError(t, err)
	assert.False(ok)

	is, err := callGlobal(t, r, r.Undefined(), []Value{NewNumber(negZero()), NewNumber(0)}, "Object", "is")
	require.NoError(t, err)
	assert.False(is.(Boolean).Bool())
}

func TestObjectDefinePropertyThrows(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	mustDefine(t, o, StringKey("k"), DataDescriptor(NewNumber(1), false, false, false))

	attrs := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(attrs, StringKey("value"), NewNumber(2)))
	_, err := callGlobal(t, r, r.Undefined(), []Value{o, NewString("k"), attrs}, "Object", "defineProperty")
	require.Error(t, err)

	// Reflect reports the same rejection as false
	res, err := callGlobal(t, r, r.Undefined(), []Value{o, NewString("k"), attrs}, "Reflect", "defineProperty")
	require.NoError(t, err)
	assert.False(t, res.(Boolean).Bool())
}

func TestObjectCreateAndGetPrototypeOf(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	bare, err := callGlobal(t, r, r.Undefined(), []Value{r.Null()}, "Object", "create")
	require.NoError(t, err)
	p, err := callGlobal(t, r, r.Undefined(), []Value{bare}, "Object", "getPrototypeOf")
	require.NoError(t, err)
	assert.True(IsNull(p))

	_, err = callGlobal(t, r, r.Undefined(), []Value{NewNumber(1)}, "Object", "create")
	assert.Error(err)
}

func TestObjectPrototypeToString(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	for _, tt := range []struct {
		v    Value
		want string
	}{
		{r.Undefined(), "[object Undefined]"},
		{r.Null(), "[object Null]"},
		{r.NewObject(), "[object Object]"},
		{r.ArrayCreate(0, nil), "[object Array]"},
		{r.NewError("TypeError", "x"), "[object Error]"},
		{NewNumber(1), "[object Number]"},
		{lookup(t, r, "Object"), "[object Function]"},
	} {
		v, err := callGlobal(t, r, tt.v, nil, "Object", "prototype", "toString")
		require.NoError(t, err)
		assert.Equal(tt.want, v.(String).String())
	}

	tagged := r.NewObject()
	mustDefine(t, tagged, SymbolKey(r.WellKnownSymbol("toStringTag")), DataDescriptor(NewString("Custom"), false, false, true))
	v, err := callGlobal(t, r, tagged, nil, "Object", "prototype", "toString")
	require.NoError(t, err)
	assert.Equal("[object Custom]", v.(String).String())
}

func TestReflectGetWithReceiver(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	getter := r.NewNativeFunction("who", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.GetV(this, StringKey("name"))
	})
	mustDefine(t, o, StringKey("who"), AccessorDescriptor(getter, r.Undefined(), true, true))
	require.NoError(t, r.CreateDataPropertyOrThrow(o, StringKey("name"), NewString("o")))
	other := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(other, StringKey("name"), NewString("other")))

	v, err := callGlobal(t, r, r.Undefined(), []Value{o, NewString("who")}, "Reflect", "get")
	require.NoError(t, err)
	assert.Equal(t, "o", v.(String).String())

	v, err = callGlobal(t, r, r.Undefined(), []Value{o, NewString("who"), other}, "Reflect", "get")
	require.NoError(t, err)
	assert.Equal(t, "other", v.(String).String())
}

func TestReflectOwnKeysAndConstruct(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	sym := NewSymbol("s")
	require.NoError(t, r.CreateDataPropertyOrThrow(o, SymbolKey(sym), NewNumber(1)))
	require.NoError(t, r.CreateDataPropertyOrThrow(o, StringKey("x"), NewNumber(1)))

	keys, err := callGlobal(t, r, r.Undefined(), []Value{o}, "Reflect", "ownKeys")
	require.NoError(t, err)
	list, err := r.CreateListFromArrayLike(keys)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal("x", list[0].(String).String())
	assert.True(SameValue(sym, list[1]))

	errCons := lookup(t, r, "RangeError")
	obj, err := callGlobal(t, r, r.Undefined(), []Value{errCons, r.CreateArrayFromList([]Value{NewString("m")})}, "Reflect", "construct")
	require.NoError(t, err)
	assert.Equal("RangeError: m", describe(obj))

	_, err = callGlobal(t, r, r.Undefined(), []Value{NewNumber(1), r.CreateArrayFromList(nil)}, "Reflect", "construct")
	assert.Error(err)
}

func TestProxyConstructorAndRevocable(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	_, err := callGlobal(t, r, r.Undefined(), []Value{r.NewObject(), r.NewObject()}, "Proxy")
	assert.Error(err, "Proxy requires new")

	p, err := r.Construct(lookup(t, r, "Proxy"), []Value{r.NewObject(), r.NewObject()}, nil)
	require.NoError(t, err)
	assert.Equal(KindProxy, p.Kind())

	res, err := callGlobal(t, r, r.Undefined(), []Value{r.NewObject(), r.NewObject()}, "Proxy", "revocable")
	require.NoError(t, err)
	revocable := res.(*Object)
	proxy := mustGet(t, revocable, StringKey("proxy")).(*Object)

	_, err = proxy.Get(StringKey("x"), proxy)
	require.NoError(t, err)

	_, err = r.Invoke(revocable, StringKey("revoke"), nil)
	require.NoError(t, err)
	_, err = r.Invoke(revocable, StringKey("revoke"), nil)
	require.NoError(t, err, "revoking twice is a no-op")

	_, err = proxy.Get(StringKey("x"), proxy)
	assert.Error(err)
}

func TestErrorConstructors(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	e, err := r.Construct(lookup(t, r, "TypeError"), []Value{NewString("bad thing")}, nil)
	require.NoError(t, err)
	assert.Equal(KindError, e.Kind())

	s, err := r.ToString(e)
	require.NoError(t, err)
	assert.Equal("TypeError: bad thing", s)

	ok, err := r.InstanceofOperator(e, lookup(t, r, "Error"))
	require.NoError(t, err)
	assert.True(ok)

	plain, err := callGlobal(t, r, r.Undefined(), nil, "Error")
	require.NoError(t, err)
	s, err = r.ToString(plain)
	require.NoError(t, err)
	assert.Equal("Error", s)

	has, err := r.HasOwnProperty(plain.(*Object), StringKey("message"))
	require.NoError(t, err)
	assert.False(has)

	opts := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(opts, StringKey("cause"), NewNumber(7)))
	withCause, err := r.Construct(lookup(t, r, "Error"), []Value{NewString("m"), opts}, nil)
	require.NoError(t, err)
	assert.Equal(7.0, mustGet(t, withCause, StringKey("cause")).(Number).Float())
}

func TestFunctionBindAndCall(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	add := r.NewNativeFunction("add", 2, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		a, err := r.ToNumber(r.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		b, err := r.ToNumber(r.Arg(args, 1))
		if err != nil {
			return nil, err
		}
		return NewNumber(a + b), nil
	})

	bound, err := r.Invoke(add, StringKey("bind"), []Value{r.Null(), NewNumber(40)})
	require.NoError(t, err)
	assert.Equal("bound add", mustGet(t, bound.(*Object), StringKey("name")).(String).String())
	assert.Equal(1.0, mustGet(t, bound.(*Object), StringKey("length")).(Number).Float())

	v, err := r.Call(bound, r.Undefined(), []Value{NewNumber(2)})
	require.NoError(t, err)
	assert.Equal(42.0, v.(Number).Float())

	v, err = r.Invoke(add, StringKey("call"), []Value{r.Null(), NewNumber(1), NewNumber(2)})
	require.NoError(t, err)
	assert.Equal(3.0, v.(Number).Float())

	v, err = r.Invoke(add, StringKey("apply"), []Value{r.Null(), r.CreateArrayFromList([]Value{NewNumber(3), NewNumber(4)})})
	require.NoError(t, err)
	assert.Equal(7.0, v.(Number).Float())

	src, err := r.Invoke(add, StringKey("toString"), nil)
	require.NoError(t, err)
	assert.Equal("function add() { [native code] }", src.(String).String())
}

func TestFunctionConstructorWithoutCompiler(t *testing.T) {
	r := NewRealm()
	_, err := callGlobal(t, r, r.Undefined(), []Value{NewString("return 1")}, "Function")
	require.Error(t, err)
	thrown, ok := ThrownValue(err)
	require.True(t, ok)
	assert.Contains(t, describe(thrown), "SyntaxError")
}

func TestPrimitiveWrappers(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	n, err := callGlobal(t, r, r.Undefined(), []Value{NewString("12")}, "Number")
	require.NoError(t, err)
	assert.Equal(12.0, n.(Number).Float())

	wrapped, err := r.Construct(lookup(t, r, "Number"), []Value{NewNumber(5)}, nil)
	require.NoError(t, err)
	assert.Equal(KindPrimitiveWrapper, wrapped.Kind())
	sum, err := r.ToNumber(wrapped)
	require.NoError(t, err)
	assert.Equal(5.0, sum)

	hex, err := r.Invoke(NewNumber(255), StringKey("toString"), []Value{NewNumber(16)})
	require.NoError(t, err)
	assert.Equal("ff", hex.(String).String())

	_, err = r.Invoke(NewNumber(1), StringKey("toString"), []Value{NewNumber(1)})
	assert.Error(err)

	s, err := callGlobal(t, r, r.Undefined(), []Value{NewSymbol("d")}, "String")
	require.NoError(t, err)
	assert.Equal("Symbol(d)", s.(String).String())

	upper, err := r.Invoke(NewString("abc"), StringKey("toUpperCase"), nil)
	require.NoError(t, err)
	assert.Equal("ABC", upper.(String).String())

	b, err := callGlobal(t, r, r.Undefined(), []Value{NewString("")}, "Boolean")
	require.NoError(t, err)
	assert.False(b.(Boolean).Bool())

	_, err = callGlobal(t, r, NewString("x"), nil, "Number", "prototype", "valueOf")
	assert.Error(err)
}

func TestSymbolBuiltins(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	a, err := callGlobal(t, r, r.Undefined(), []Value{NewString("k")}, "Symbol", "for")
	require.NoError(t, err)
	b, err := callGlobal(t, r, r.Undefined(), []Value{NewString("k")}, "Symbol", "for")
	require.NoError(t, err)
	assert.True(SameValue(a, b))

	key, err := callGlobal(t, r, r.Undefined(), []Value{a}, "Symbol", "keyFor")
	require.NoError(t, err)
	assert.Equal("k", key.(String).String())

	local, err := callGlobal(t, r, r.Undefined(), []Value{NewString("k")}, "Symbol")
	require.NoError(t, err)
	assert.False(SameValue(a, local))
	key, err = callGlobal(t, r, r.Undefined(), []Value{local}, "Symbol", "keyFor")
	require.NoError(t, err)
	assert.True(IsUndefined(key))

	desc, err := r.GetV(local, StringKey("description"))
	require.NoError(t, err)
	assert.Equal("k", desc.(String).String())

	_, err = r.Construct(lookup(t, r, "Symbol"), nil, nil)
	assert.Error(err)

	// a symbol wrapper converts back through Symbol.prototype[@@toPrimitive]
	wrapper, err := r.ToObject(local)
	require.NoError(t, err)
	prim, err := r.ToPrimitive(wrapper, HintDefault)
	require.NoError(t, err)
	assert.True(SameValue(local, prim))
}

func TestArrayBuiltins(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	arr, err := r.Construct(lookup(t, r, "Array"), []Value{NewNumber(3)}, nil)
	require.NoError(t, err)
	assert.Equal(uint32(3), arr.ArrayLength())
	assert.Equal([]string{"length"}, keyNames(t, arr))

	_, err = r.Construct(lookup(t, r, "Array"), []Value{NewNumber(-1)}, nil)
	assert.Error(err)

	n, err := r.Invoke(arr, StringKey("push"), []Value{NewString("x"), NewString("y")})
	require.NoError(t, err)
	assert.Equal(5.0, n.(Number).Float())

	s, err := r.Invoke(arr, StringKey("join"), []Value{NewString("-")})
	require.NoError(t, err)
	assert.Equal("---x-y", s.(String).String())

	isArr, err := callGlobal(t, r, r.Undefined(), []Value{arr}, "Array", "isArray")
	require.NoError(t, err)
	assert.True(isArr.(Boolean).Bool())
}

func TestInstanceofWithHasInstance(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	always := r.NewObject()
	hook := r.NewNativeFunction("hasInstance", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Bool(true), nil
	})
	mustDefine(t, always, SymbolKey(r.WellKnownSymbol("hasInstance")), DataDescriptor(hook, true, false, true))

	ok, err := r.InstanceofOperator(NewNumber(1), always)
	require.NoError(t, err)
	assert.True(ok)

	_, err = r.InstanceofOperator(r.NewObject(), r.NewObject())
	assert.Error(err)
}
