package objmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorKinds(t *testing.T) {
	r := NewRealm()
	getter := r.NewNativeFunction("g", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return r.Undefined(), nil
	})

	for _, tt := range []struct {
		name             string
		desc             PropertyDescriptor
		data, acc, gener bool
	}{
		{"empty", PropertyDescriptor{}, false, false, true},
		{"enumerable only", PropertyDescriptor{Enumerable: FlagTrue}, false, false, true},
		{"value", PropertyDescriptor{Value: NewNumber(1)}, true, false, false},
		{"writable only", PropertyDescriptor{Writable: FlagFalse}, true, false, false},
		{"getter", PropertyDescriptor{Get: getter}, false, true, false},
		{"undefined setter", PropertyDescriptor{Set: r.Undefined()}, false, true, false},
		{"full data", DataDescriptor(r.Null(), true, true, true), true, false, false},
		{"full accessor", AccessorDescriptor(getter, r.Undefined(), false, false), false, true, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			d := tt.desc
			assert.Equal(tt.data, d.IsDataDescriptor())
			assert.Equal(tt.acc, d.IsAccessorDescriptor())
			assert.Equal(tt.gener, d.IsGenericDescriptor())
			assert.False(d.IsDataDescriptor() && d.IsAccessorDescriptor())
		})
	}

	var absent *PropertyDescriptor
	assert.False(t, absent.IsDataDescriptor())
	assert.False(t, absent.IsAccessorDescriptor())
	assert.False(t, absent.IsGenericDescriptor())
}

func TestValidateAndApply(t *testing.T) {
	r := NewRealm()
	getter := r.NewNativeFunction("g", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(1), nil
	})
	otherGetter := r.NewNativeFunction("h", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(2), nil
	})

	frozen := DataDescriptor(NewNumber(1), false, false, false)
	frozenZero := DataDescriptor(NewNumber(0), false, false, false)
	fixedWritable := DataDescriptor(NewNumber(1), true, false, false)
	fixedAccessor := AccessorDescriptor(getter, r.Undefined(), false, false)
	loose := DataDescriptor(NewNumber(1), true, true, true)

	for _, tt := range []struct {
		name       string
		extensible bool
		current    *PropertyDescriptor
		desc       PropertyDescriptor
		want       bool
	}{
		{"new on extensible", true, nil, loose, true},
		{"new on non-extensible", false, nil, loose, false},
		{"empty desc on frozen", true, &frozen, PropertyDescriptor{}, true},
		{"make frozen configurable", true, &frozen, PropertyDescriptor{Configurable: FlagTrue}, false},
		{"flip enumerable on frozen", true, &frozen, PropertyDescriptor{Enumerable: FlagTrue}, false},
		{"same enumerable on frozen", true, &frozen, PropertyDescriptor{Enumerable: FlagFalse}, true},
		{"frozen to accessor", true, &frozen, PropertyDescriptor{Get: getter}, false},
		{"frozen same value", true, &frozen, PropertyDescriptor{Value: NewNumber(1)}, true},
		{"frozen other value", true, &frozen, PropertyDescriptor{Value: NewNumber(2)}, false},
		{"frozen writable", true, &frozen, PropertyDescriptor{Writable: FlagTrue}, false},
		{"frozen +0 vs -0", true, &frozenZero, PropertyDescriptor{Value: NewNumber(negZero())}, false},
		{"non-configurable writable value change", true, &fixedWritable, PropertyDescriptor{Value: NewNumber(9)}, true},
		{"non-configurable drop writable", true, &fixedWritable, PropertyDescriptor{Writable: FlagFalse}, true},
		{"non-configurable accessor same getter", true, &fixedAccessor, PropertyDescriptor{Get: getter}, true},
		{"non-configurable accessor other getter", true, &fixedAccessor, PropertyDescriptor{Get: otherGetter}, false},
		{"non-configurable accessor same setter", true, &fixedAccessor, PropertyDescriptor{Set: r.Undefined()}, true},
		{"non-configurable accessor to data", true, &fixedAccessor, PropertyDescriptor{Value: NewNumber(1)}, false},
		{"configurable to accessor", true, &loose, PropertyDescriptor{Get: getter}, true},
		{"existing on non-extensible", false, &loose, PropertyDescriptor{Value: NewNumber(5)}, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatiblePropertyDescriptor(tt.extensible, tt.desc, tt.current))
		})
	}
}

func TestValidateAndApplyMerge(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	getter := r.NewNativeFunction("g", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return NewNumber(1), nil
	})
	o := r.NewObject()
	k := StringKey("p")

	mustDefine(t, o, k, DataDescriptor(NewNumber(1), true, true, true))

	// switching kind keeps enumerable/configurable and resets the rest
	mustDefine(t, o, k, PropertyDescriptor{Get: getter})
	desc, err := o.GetOwnProperty(k)
	require.NoError(t, err)
	assert.True(desc.IsAccessorDescriptor())
	assert.True(SameValue(getter, desc.Get))
	assert.True(IsUndefined(desc.Set))
	assert.Equal(FlagTrue, desc.Enumerable)
	assert.Equal(FlagTrue, desc.Configurable)
	assert.Nil(desc.Value)
	assert.Equal(FlagNotSet, desc.Writable)

	mustDefine(t, o, k, PropertyDescriptor{Value: NewString("back")})
	desc, err = o.GetOwnProperty(k)
	require.NoError(t, err)
	assert.True(desc.IsDataDescriptor())
	assert.Equal(FlagFalse, desc.Writable)
	assert.Equal("back", desc.Value.(String).String())
	assert.Nil(desc.Get)

	// partial update leaves the other fields alone
	mustDefine(t, o, k, PropertyDescriptor{Enumerable: FlagFalse})
	desc, err = o.GetOwnProperty(k)
	require.NoError(t, err)
	assert.Equal(FlagFalse, desc.Enumerable)
	assert.Equal("back", desc.Value.(String).String())
}

func TestNewPropertyDefaults(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	o := r.NewObject()

	mustDefine(t, o, StringKey("bare"), PropertyDescriptor{})
	desc, err := o.GetOwnProperty(StringKey("bare"))
	require.NoError(t, err)
	assert.True(IsUndefined(desc.Value))
	assert.Equal(FlagFalse, desc.Writable)
	assert.Equal(FlagFalse, desc.Enumerable)
	assert.Equal(FlagFalse, desc.Configurable)
}

func TestToPropertyDescriptor(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	attrs := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(attrs, StringKey("value"), NewNumber(1)))
	require.NoError(t, r.CreateDataPropertyOrThrow(attrs, StringKey("enumerable"), NewString("yes")))
	desc, err := r.ToPropertyDescriptor(attrs)
	require.NoError(t, err)
	assert.Equal(FlagTrue, desc.Enumerable)
	assert.Equal(FlagNotSet, desc.Writable)
	assert.Equal(FlagNotSet, desc.Configurable)
	assert.Equal(1.0, desc.Value.(Number).Float())

	require.NoError(t, r.CreateDataPropertyOrThrow(attrs, StringKey("get"), r.Undefined()))
	_, err = r.ToPropertyDescriptor(attrs)
	assert.Error(err, "mixing value and get throws")

	bad := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(bad, StringKey("set"), NewNumber(1)))
	_, err = r.ToPropertyDescriptor(bad)
	assert.Error(err)

	_, err = r.ToPropertyDescriptor(NewNumber(1))
	assert.Error(err)
}

func TestFromPropertyDescriptorRoundTrip(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	in := DataDescriptor(NewString("v"), true, false, true)

	obj := r.FromPropertyDescriptor(&in).(*Object)
	assert.Equal([]string{"value", "writable", "enumerable", "configurable"}, keyNames(t, obj))

	out, err := r.ToPropertyDescriptor(obj)
	require.NoError(t, err)
	assert.Equal(in.Writable, out.Writable)
	assert.Equal(in.Enumerable, out.Enumerable)
	assert.Equal(in.Configurable, out.Configurable)
	assert.True(SameValue(in.Value, out.Value))

	assert.True(IsUndefined(r.FromPropertyDescriptor(nil)))
}

func TestCompletePropertyDescriptor(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	d := PropertyDescriptor{Enumerable: FlagTrue}
	r.CompletePropertyDescriptor(&d)
	assert.True(IsUndefined(d.Value))
	assert.Equal(FlagFalse, d.Writable)
	assert.Equal(FlagTrue, d.Enumerable)
	assert.Equal(FlagFalse, d.Configurable)

	a := PropertyDescriptor{Set: r.Undefined()}
	r.CompletePropertyDescriptor(&a)
	assert.True(IsUndefined(a.Get))
	assert.Nil(a.Value)
}

func TestStorageGuardsFrozenProperties(t *testing.T) {
	r := NewRealm()
	o := r.NewObject()
	mustDefine(t, o, StringKey("k"), DataDescriptor(NewNumber(1), false, false, false))

	assert.Panics(t, func() {
		o.props.put(&property{key: StringKey("k"), value: NewNumber(2)})
	})
}
