package objmodel

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionInvariants(t *testing.T) {
	assert := assert.New(t)

	assert.Panics(func() { NewCompletion(Return, nil, "") })
	assert.Panics(func() { NewCompletion(Throw, nil, "") })
	assert.NotPanics(func() { NewCompletion(Break, nil, "outer") })
	assert.NotPanics(func() { NewCompletion(Normal, nil, "") })
}

func TestUpdateEmpty(t *testing.T) {
	assert := assert.New(t)
	one := NewNumber(1)
	two := NewNumber(2)

	c := NewCompletion(Break, nil, "l").UpdateEmpty(one)
	assert.Equal(Break, c.Type)
	assert.Equal("l", c.Target)
	assert.True(SameValue(one, c.Value))

	c = c.UpdateEmpty(two)
	assert.True(SameValue(one, c.Value), "a present value is never replaced")

	n := NormalCompletion(nil).UpdateEmpty(two)
	assert.False(n.IsAbrupt())
	assert.True(SameValue(two, n.Value))
}

func TestReturnIfAbrupt(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()

	v, err := ReturnIfAbrupt(NormalCompletion(NewString("ok")))
	require.NoError(t, err)
	assert.Equal("ok", v.(String).String())

	thrown := r.NewError("TypeError", "boom")
	_, err = ReturnIfAbrupt(NewCompletion(Throw, thrown, ""))
	require.Error(t, err)
	got, ok := ThrownValue(err)
	require.True(t, ok)
	assert.True(SameValue(thrown, got))
	assert.Equal("uncaught exception: TypeError: boom", err.Error())
}

func TestThrowSurvivesWrapping(t *testing.T) {
	assert := assert.New(t)
	r := NewRealm()
	err := r.ThrowRangeError("bad %d", 3)

	wrapped := errors.Wrap(err, "while running")
	c, ok := AsCompletion(wrapped)
	require.True(t, ok)
	assert.Equal(Throw, c.Type)

	wrapped = fmt.Errorf("outer: %w", err)
	v, ok := ThrownValue(wrapped)
	require.True(t, ok)
	assert.Equal("RangeError: bad 3", describe(v))

	_, ok = ThrownValue(errors.New("host failure"))
	assert.False(ok)
}

func TestAbruptPropagatesThroughOperations(t *testing.T) {
	r := NewRealm()
	thrown := r.NewError("Error", "from getter")
	o := r.NewObject()
	getter := r.NewNativeFunction("bad", 0, func(r *Realm, this Value, args []Value, flags CallFlags) (Value, error) {
		return nil, ThrowCompletion(thrown)
	})
	mustDefine(t, o, StringKey("valueOf"), AccessorDescriptor(getter, r.Undefined(), false, true))

	// Get -> OrdinaryToPrimitive -> ToNumber -> ToInt32 all pass it on unchanged
	_, err := r.ToInt32(o)
	require.Error(t, err)
	got, ok := ThrownValue(err)
	require.True(t, ok)
	assert.True(t, SameValue(thrown, got))
}
