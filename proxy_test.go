package objmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trap(r *Realm, o *Object, name string, cb NativeCallback) {
	r.defineMethod(o, name, 0, cb)
}

func TestProxyForwardsMissingTraps(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	target := r.NewObject()
	p, err := r.ProxyCreate(target, r.NewObject())
	require.NoError(t, err)

	ok, err := p.Set(StringKey("x"), NewNumber(1), p)
	require.NoError(t, err)
	assert.True(ok)

	assert.Equal(1.0, mustGet(t, target, StringKey("x")).(Number).Float())
	assert.Equal(1.0, mustGet(t, p, StringKey("x")).(Number).Float())
	assert.Equal([]string{"x"}, keyNames(t, p))

	ok, err = p.Delete(StringKey("x"))
	require.NoError(t, err)
	assert.True(ok)
	has, err := target.HasProperty(StringKey("x"))
	require.NoError(t, err)
	assert.False(has)
}

func TestProxyGetTrap(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	handler := r.NewObject()
	var gotReceiver Value
	trap(r, handler, "get", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		gotReceiver = args[2]
		return NewString("trapped " + args[1].(String).String()), nil
	})
	p, err := r.ProxyCreate(r.NewObject(), handler)
	require.NoError(t, err)

	v := mustGet(t, p, StringKey("foo"))
	assert.Equal("trapped foo", v.(String).String())
	assert.True(SameValue(p, gotReceiver))

	// a proxy on the prototype chain sees the original receiver
	child := r.OrdinaryObjectCreate(p)
	v = mustGet(t, child, StringKey("bar"))
	assert.Equal("trapped bar", v.(String).String())
	assert.True(SameValue(child, gotReceiver))
}

func TestProxyGetInvariant(t *testing.T) {
	r := NewRealm()
	target := r.NewObject()
	mustDefine(t, target, StringKey("fixed"), DataDescriptor(NewNumber(1), false, false, false))
	handler := r.NewObject()
	trap(r, handler, "get", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(2), nil
	})
	p, err := r.ProxyCreate(target, handler)
	require.NoError(t, err)

	_, err = p.Get(StringKey("fixed"), p)
	assert.Error(t, err)

	v := mustGet(t, p, StringKey("other"))
	assert.Equal(t, 2.0, v.(Number).Float())
}

func TestProxyHasInvariant(t *testing.T) {
	r := NewRealm()
	target := r.NewObject()
	mustDefine(t, target, StringKey("fixed"), DataDescriptor(NewNumber(1), false, false, false))
	handler := r.NewObject()
	trap(r, handler, "has", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Bool(false), nil
	})
	p, err := r.ProxyCreate(target, handler)
	require.NoError(t, err)

	_, err = p.HasProperty(StringKey("fixed"))
	assert.Error(t, err)

	has, err := p.HasProperty(StringKey("absent"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestProxyOwnKeysInvariants(t *testing.T) {
	r := NewRealm()
	target := r.NewObject()
	mustDefine(t, target, StringKey("fixed"), DataDescriptor(NewNumber(1), true, true, false))

	var result []Value
	handler := r.NewObject()
	trap(r, handler, "ownKeys", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.CreateArrayFromList(result), nil
	})
	p, err := r.ProxyCreate(target, handler)
	require.NoError(t, err)

	for _, tt := range []struct {
		name    string
		result  []Value
		wantErr bool
	}{
		{"omits non-configurable", []Value{NewString("x")}, true},
		{"duplicate", []Value{NewString("fixed"), NewString("fixed")}, true},
		{"not a key", []Value{NewString("fixed"), NewNumber(1)}, true},
		{"extra keys on extensible target", []Value{NewString("fixed"), NewString("extra")}, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			result = tt.result
			_, err := p.OwnPropertyKeys()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err = target.PreventExtensions()
	require.NoError(t, err)
	result = []Value{NewString("fixed"), NewString("extra")}
	_, err = p.OwnPropertyKeys()
	assert.Error(t, err, "extra keys on a non-extensible target")
}

func TestProxyDefinePropertyTrap(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	target := r.NewObject()
	handler := r.NewObject()
	var seen Value
	trap(r, handler, "defineProperty", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		seen = args[2]
		return r.Bool(true), nil
	})
	p, err := r.ProxyCreate(target, handler)
	require.NoError(t, err)

	ok, err := p.DefineOwnProperty(StringKey("x"), DataDescriptor(NewNumber(1), true, true, true))
	require.NoError(t, err)
	assert.True(ok)
	require.NotNil(t, seen)
	assert.Equal([]string{"value", "writable", "enumerable", "configurable"}, keyNames(t, seen.(*Object)))

	// reporting success for a non-configurable property the target lacks
	_, err = p.DefineOwnProperty(StringKey("y"), DataDescriptor(NewNumber(1), true, true, false))
	assert.Error(err)
}

func TestProxyRevoked(t *testing.T) {
	r := NewRealm()
	p, err := r.ProxyCreate(r.NewObject(), r.NewObject())
	require.NoError(t, err)
	p.Revoke()

	_, err = p.Get(StringKey("x"), p)
	assert.Error(t, err)
	_, err = p.OwnPropertyKeys()
	assert.Error(t, err)
	_, err = p.GetPrototypeOf()
	assert.Error(t, err)
	assert.Equal(t, 0, r.CallDepth())
}

func TestProxyCallAndConstruct(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	target := r.NewFunction(func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewString("target"), nil
	}, FunctionOptions{Name: "f", Constructor: ConstructorBase, WithPrototype: true})

	plain, err := r.ProxyCreate(target, r.NewObject())
	require.NoError(t, err)
	assert.True(IsCallable(plain))
	assert.True(IsConstructor(plain))
	assert.Equal("function", TypeOf(plain))

	v, err := r.Call(plain, r.Undefined(), nil)
	require.NoError(t, err)
	assert.Equal("target", v.(String).String())

	handler := r.NewObject()
	trap(r, handler, "apply", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		list, err := r.CreateListFromArrayLike(args[2])
		if err != nil {
			return nil, err
		}
		return NewNumber(float64(len(list))), nil
	})
	trap(r, handler, "construct", func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(1), nil
	})
	trapped, err := r.ProxyCreate(target, handler)
	require.NoError(t, err)

	v, err = r.Call(trapped, r.Undefined(), []Value{r.Null(), r.Null()})
	require.NoError(t, err)
	assert.Equal(2.0, v.(Number).Float())

	_, err = r.Construct(trapped, nil, nil)
	assert.Error(err, "construct trap must return an object")

	nonCallable, err := r.ProxyCreate(r.NewObject(), r.NewObject())
	require.NoError(t, err)
	assert.False(IsCallable(nonCallable))
	_, err = r.Call(nonCallable, r.Undefined(), nil)
	assert.Error(err)
}

func TestProxyPrototypeChainCycleCheckStops(t *testing.T) {
	r := NewRealm()
	a := r.NewObject()
	p, err := r.ProxyCreate(a, r.NewObject())
	require.NoError(t, err)

	// the walk cannot see through the proxy, so the assignment is accepted
	ok, err := a.SetPrototypeOf(p)
	require.NoError(t, err)
	assert.True(t, ok)
}
