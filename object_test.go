package objmodel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyNames(t *testing.T, o *Object) []string {
	t.Helper()
	keys, err := o.OwnPropertyKeys()
	require.NoError(t, err)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return names
}

func mustDefine(t *testing.T, o *Object, k PropertyKey, desc PropertyDescriptor) {
	t.Helper()
	ok, err := o.DefineOwnProperty(k, desc)
	require.NoError(t, err)
	require.True(t, ok, "define %s", k)
}

func mustGet(t *testing.T, o *Object, k PropertyKey) Value {
	t.Helper()
	v, err := o.Get(k, o)
	require.NoError(t, err)
	return v
}

func TestOwnPropertyKeysOrder(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	x := NewSymbol("x")

	for _, k := range []PropertyKey{
		StringKey("b"),
		StringKey("0"),
		StringKey("a"),
		StringKey("2"),
		SymbolKey(x),
		StringKey("1"),
	} {
		mustDefine(t, o, k, DataDescriptor(NewNumber(1), true, true, true))
	}

	want := []string{"0", "1", "2", "b", "a", "Symbol(x)"}
	if diff := cmp.Diff(want, keyNames(t, o)); diff != "" {
		t.Errorf("OwnPropertyKeys mismatch (-want +got):\n%s", diff)
	}
}

func TestOwnPropertyKeysNonCanonicalIndex(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()

	for _, name := range []string{"10", "01", "4294967295", "4294967294", "-1", "9"} {
		mustDefine(t, o, StringKey(name), DataDescriptor(r.Null(), true, true, true))
	}

	// only canonical integers below 2^32-1 are sorted as indices
	assert.Equal([]string{"9", "10", "4294967294", "01", "4294967295", "-1"}, keyNames(t, o))
}

func TestDeletePreservesOrder(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()

	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, name := range names {
		mustDefine(t, o, StringKey(name), DataDescriptor(NewString(name), true, true, true))
	}

	for _, name := range []string{"b", "d", "a", "e"} {
		ok, err := o.Delete(StringKey(name))
		require.NoError(t, err)
		assert.True(ok)
	}
	assert.Equal([]string{"c", "f"}, keyNames(t, o))

	// re-adding goes at the end, and survivors keep their values after compaction
	mustDefine(t, o, StringKey("a"), DataDescriptor(NewString("again"), true, true, true))
	assert.Equal([]string{"c", "f", "a"}, keyNames(t, o))
	assert.Equal("c", mustGet(t, o, StringKey("c")).(String).String())
	assert.Equal("again", mustGet(t, o, StringKey("a")).(String).String())
}

func TestDeleteMissingAndNonConfigurable(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	mustDefine(t, o, StringKey("fixed"), DataDescriptor(NewNumber(1), true, true, false))

	ok, err := o.Delete(StringKey("missing"))
	require.NoError(t, err)
	assert.True(ok)

	ok, err = o.Delete(StringKey("fixed"))
	require.NoError(t, err)
	assert.False(ok)
	assert.Equal([]string{"fixed"}, keyNames(t, o))
}

func TestDefineOnNonExtensible(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()

	ok, err := o.PreventExtensions()
	require.NoError(t, err)
	assert.True(ok)

	ok, err = o.DefineOwnProperty(StringKey("x"), DataDescriptor(NewNumber(1), true, true, true))
	require.NoError(t, err)
	assert.False(ok)

	desc, err := o.GetOwnProperty(StringKey("x"))
	require.NoError(t, err)
	assert.Nil(desc)
}

func TestFrozenPropertyRedefinition(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	mustDefine(t, o, StringKey("k"), DataDescriptor(NewNumber(3), false, true, false))

	ok, err := o.DefineOwnProperty(StringKey("k"), PropertyDescriptor{Value: NewNumber(3)})
	require.NoError(t, err)
	assert.True(ok, "unchanged value is accepted")

	ok, err = o.DefineOwnProperty(StringKey("k"), PropertyDescriptor{Value: NewNumber(4)})
	require.NoError(t, err)
	assert.False(ok, "changed value is rejected")

	assert.Equal(3.0, mustGet(t, o, StringKey("k")).(Number).Float())
}

func TestSetPrototypeOfRejectsCycles(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	a := r.NewObject()
	b := r.OrdinaryObjectCreate(a)
	c := r.OrdinaryObjectCreate(b)

	ok, err := a.SetPrototypeOf(c)
	require.NoError(t, err)
	assert.False(ok)

	ok, err = a.SetPrototypeOf(a)
	require.NoError(t, err)
	assert.False(ok)

	p, err := a.GetPrototypeOf()
	require.NoError(t, err)
	assert.True(p.Is(r.Intrinsics().ObjectPrototype), "prototype is unchanged")

	ok, err = a.SetPrototypeOf(nil)
	require.NoError(t, err)
	assert.True(ok)
	p, err = a.GetPrototypeOf()
	require.NoError(t, err)
	assert.Nil(p)
}

func TestSetPrototypeOfSameValueOnNonExtensible(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	_, err := o.PreventExtensions()
	require.NoError(t, err)

	ok, err := o.SetPrototypeOf(r.Intrinsics().ObjectPrototype)
	require.NoError(t, err)
	assert.True(ok)

	ok, err = o.SetPrototypeOf(nil)
	require.NoError(t, err)
	assert.False(ok)
}

func TestGetAbsentKey(t *testing.T) {
	r := NewRealm()
	o := r.OrdinaryObjectCreate(r.NewObject())
	v, err := o.Get(StringKey("nowhere"), o)
	require.NoError(t, err)
	assert.True(t, IsUndefined(v))
}

func TestGetterOnPrototypeAndShadowing(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	p := r.NewObject()
	getter := r.NewNativeFunction("x", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(42), nil
	})
	mustDefine(t, p, StringKey("x"), AccessorDescriptor(getter, r.Undefined(), true, true))
	o := r.OrdinaryObjectCreate(p)

	assert.Equal(42.0, mustGet(t, o, StringKey("x")).(Number).Float())

	mustDefine(t, o, StringKey("x"), DataDescriptor(NewNumber(7), true, true, true))
	assert.Equal(7.0, mustGet(t, o, StringKey("x")).(Number).Float())
	assert.Equal(42.0, mustGet(t, p, StringKey("x")).(Number).Float())
}

func TestGetterReceiver(t *testing.T) {
	r := NewRealm()
	p := r.NewObject()
	getter := r.NewNativeFunction("self", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return this, nil
	})
	mustDefine(t, p, StringKey("self"), AccessorDescriptor(getter, r.Undefined(), true, true))
	o := r.OrdinaryObjectCreate(p)
	other := r.NewObject()

	v, err := o.Get(StringKey("self"), other)
	require.NoError(t, err)
	assert.True(t, SameValue(v, other))
}

func TestSetCreatesOnReceiver(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	p := r.NewObject()
	mustDefine(t, p, StringKey("x"), DataDescriptor(NewNumber(1), true, true, true))
	o := r.OrdinaryObjectCreate(p)

	ok, err := o.Set(StringKey("x"), NewNumber(2), o)
	require.NoError(t, err)
	assert.True(ok)

	assert.Equal(2.0, mustGet(t, o, StringKey("x")).(Number).Float())
	assert.Equal(1.0, mustGet(t, p, StringKey("x")).(Number).Float())

	desc, err := o.GetOwnProperty(StringKey("x"))
	require.NoError(t, err)
	assert.Equal(FlagTrue, desc.Writable)
	assert.Equal(FlagTrue, desc.Enumerable)
	assert.Equal(FlagTrue, desc.Configurable)
}

func TestSetReadOnlyInherited(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	p := r.NewObject()
	mustDefine(t, p, StringKey("x"), DataDescriptor(NewNumber(1), false, true, true))
	o := r.OrdinaryObjectCreate(p)

	ok, err := o.Set(StringKey("x"), NewNumber(2), o)
	require.NoError(t, err)
	assert.False(ok)

	desc, err := o.GetOwnProperty(StringKey("x"))
	require.NoError(t, err)
	assert.Nil(desc)

	err = r.Set(o, StringKey("x"), NewNumber(2), true)
	require.Error(t, err)
	thrown, ok := ThrownValue(err)
	require.True(t, ok)
	assert.Contains(describe(thrown), "TypeError")
}

func TestSetNonWritableReceiverUnchangedValue(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	p := r.NewObject()
	mustDefine(t, p, StringKey("x"), DataDescriptor(NewNumber(0), true, true, true))
	recv := r.NewObject()
	mustDefine(t, recv, StringKey("x"), DataDescriptor(NewNumber(5), false, true, true))

	ok, err := p.Set(StringKey("x"), NewNumber(5), recv)
	require.NoError(t, err)
	assert.True(ok)

	ok, err = p.Set(StringKey("x"), NewNumber(6), recv)
	require.NoError(t, err)
	assert.False(ok)
	assert.Equal(5.0, mustGet(t, recv, StringKey("x")).(Number).Float())
}

func TestSetThroughSetter(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()
	var got Value
	setter := r.NewNativeFunction("x", 1, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		got = r.Arg(args, 0)
		return r.Undefined(), nil
	})
	mustDefine(t, o, StringKey("x"), AccessorDescriptor(r.Undefined(), setter, true, true))
	mustDefine(t, o, StringKey("getterOnly"), AccessorDescriptor(setter, r.Undefined(), true, true))

	ok, err := o.Set(StringKey("x"), NewString("v"), o)
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal("v", got.(String).String())

	ok, err = o.Set(StringKey("getterOnly"), NewString("w"), o)
	require.NoError(t, err)
	assert.False(ok)
}

func TestSetPrimitiveReceiver(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	ok, err := o.Set(StringKey("x"), NewNumber(1), NewString("prim"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOwnPropertyIsACopy(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	mustDefine(t, o, StringKey("x"), DataDescriptor(NewNumber(1), true, true, true))

	desc, err := o.GetOwnProperty(StringKey("x"))
	require.NoError(t, err)
	desc.Value = NewNumber(2)
	desc.Writable = FlagFalse

	assert.Equal(t, 1.0, mustGet(t, o, StringKey("x")).(Number).Float())
	again, err := o.GetOwnProperty(StringKey("x"))
	require.NoError(t, err)
	assert.Equal(t, FlagTrue, again.Writable)
}

func TestDeepPrototypeChain(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	root := r.NewObject()
	mustDefine(t, root, StringKey("deep"), DataDescriptor(NewString("found"), true, true, true))

	o := root
	for i := 0; i < 100000; i++ {
		o = r.OrdinaryObjectCreate(o)
	}

	has, err := o.HasProperty(StringKey("deep"))
	require.NoError(t, err)
	assert.True(has)
	assert.Equal("found", mustGet(t, o, StringKey("deep")).(String).String())

	ok, err := root.SetPrototypeOf(o)
	require.NoError(t, err)
	assert.False(ok)
}

func TestObjectIdentity(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	a := r.NewObject()
	b := r.NewObject()

	assert.NotEqual(a.ID(), b.ID())
	assert.True(SameValue(a, a))
	assert.False(SameValue(a, b))
	assert.True(a.Is(a))
	assert.False(a.Is(nil))
	assert.True((*Object)(nil).Is(nil))
}

func TestCallNonCallableThrows(t *testing.T) {
	r := NewRealm()
	_, err := r.Call(r.NewObject(), r.Undefined(), nil)
	require.Error(t, err)
	c, ok := AsCompletion(err)
	require.True(t, ok)
	assert.Equal(t, Throw, c.Type)
}

func TestCallDepthLimit(t *testing.T) {
	r := NewRealm(WithMaxCallDepth(50))
	var fn *Object
	fn = r.NewNativeFunction("recurse", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Call(fn, this, nil)
	})

	_, err := r.Call(fn, r.Undefined(), nil)
	require.Error(t, err)
	thrown, ok := ThrownValue(err)
	require.True(t, ok)
	assert.Contains(t, describe(thrown), "RangeError")
	assert.Equal(t, 0, r.CallDepth())
}
