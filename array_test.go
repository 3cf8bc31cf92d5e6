package objmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArray(r *Realm, elements ...Value) *Object {
	return r.CreateArrayFromList(elements)
}

func TestArrayLengthGrowsWithIndices(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := r.ArrayCreate(0, nil)

	ok, err := r.CreateDataProperty(arr, IndexKey(4), NewString("e"))
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(uint32(5), arr.ArrayLength())

	ok, err = r.CreateDataProperty(arr, StringKey("name"), NewString("not an index"))
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(uint32(5), arr.ArrayLength())

	assert.Equal([]string{"4", "length", "name"}, keyNames(t, arr))
}

func TestArraySetLengthTruncates(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := newArray(r, NewNumber(0), NewNumber(1), NewNumber(2), NewNumber(3))

	require.NoError(t, r.Set(arr, lengthKey, NewNumber(2), true))
	assert.Equal(uint32(2), arr.ArrayLength())
	assert.Equal([]string{"0", "1", "length"}, keyNames(t, arr))
}

func TestArraySetLengthStopsAtNonConfigurable(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := newArray(r, NewNumber(0), NewNumber(1), NewNumber(2), NewNumber(3))
	mustDefine(t, arr, IndexKey(1), PropertyDescriptor{Configurable: FlagFalse})

	ok, err := arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: NewNumber(0)})
	require.NoError(t, err)
	assert.False(ok)
	assert.Equal(uint32(2), arr.ArrayLength())
	assert.Equal([]string{"0", "1", "length"}, keyNames(t, arr))
}

func TestArrayInvalidLength(t *testing.T) {
	r := NewRealm()
	arr := r.ArrayCreate(0, nil)

	_, err := arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: NewNumber(1.5)})
	require.Error(t, err)
	thrown, ok := ThrownValue(err)
	require.True(t, ok)
	assert.Contains(t, describe(thrown), "RangeError")

	_, err = arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: NewNumber(-1)})
	assert.Error(t, err)
}

func TestArrayNonWritableLength(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := newArray(r, NewNumber(0), NewNumber(1))
	mustDefine(t, arr, lengthKey, PropertyDescriptor{Writable: FlagFalse})

	ok, err := r.CreateDataProperty(arr, IndexKey(2), NewNumber(2))
	require.NoError(t, err)
	assert.False(ok, "cannot grow past a read-only length")

	ok, err = r.CreateDataProperty(arr, IndexKey(0), NewNumber(9))
	require.NoError(t, err)
	assert.True(ok, "existing indices can still change")

	ok, err = arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: NewNumber(0)})
	require.NoError(t, err)
	assert.False(ok)
}

func TestArrayFreezeThenLengthDown(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := newArray(r, NewNumber(0), NewNumber(1), NewNumber(2))

	ok, err := arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: NewNumber(1), Writable: FlagFalse})
	require.NoError(t, err)
	assert.True(ok)
	assert.Equal(uint32(1), arr.ArrayLength())

	desc, err := arr.GetOwnProperty(lengthKey)
	require.NoError(t, err)
	assert.Equal(FlagFalse, desc.Writable)
}

func TestIsArray(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	arr := r.ArrayCreate(0, nil)

	ok, err := r.IsArray(arr)
	require.NoError(t, err)
	assert.True(ok)

	ok, err = r.IsArray(r.NewObject())
	require.NoError(t, err)
	assert.False(ok)

	p, err := r.ProxyCreate(arr, r.NewObject())
	require.NoError(t, err)
	ok, err = r.IsArray(p)
	require.NoError(t, err)
	assert.True(ok)

	p.Revoke()
	_, err = r.IsArray(p)
	assert.Error(err)
}

func TestCreateListFromArrayLike(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	like := r.NewObject()
	require.NoError(t, r.CreateDataPropertyOrThrow(like, StringKey("length"), NewString("2")))
	require.NoError(t, r.CreateDataPropertyOrThrow(like, StringKey("0"), NewString("a")))

	list, err := r.CreateListFromArrayLike(like)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal("a", list[0].(String).String())
	assert.True(IsUndefined(list[1]))

	_, err = r.CreateListFromArrayLike(NewString("ab"))
	assert.Error(err)
}
