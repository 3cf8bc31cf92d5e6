package objmodel

import (
	"fmt"
	"strings"
)

// Flag is a boolean attribute that may be absent from a descriptor.
type Flag int8

const (
	FlagNotSet Flag = iota
	FlagFalse
	FlagTrue
)

func ToFlag(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) Bool() bool  { return f == FlagTrue }
func (f Flag) IsSet() bool { return f != FlagNotSet }

// PropertyDescriptor is a partial record of property attributes. Value, Get
// and Set are absent when nil.
type PropertyDescriptor struct {
	Value Value
	Get   Value
	Set   Value

	Writable     Flag
	Enumerable   Flag
	Configurable Flag
}

func DataDescriptor(value Value, writable, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Value:        value,
		Writable:     ToFlag(writable),
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

func AccessorDescriptor(get, set Value, enumerable, configurable bool) PropertyDescriptor {
	return PropertyDescriptor{
		Get:          get,
		Set:          set,
		Enumerable:   ToFlag(enumerable),
		Configurable: ToFlag(configurable),
	}
}

func (d *PropertyDescriptor) IsDataDescriptor() bool {
	return d != nil && (d.Value != nil || d.Writable.IsSet())
}

func (d *PropertyDescriptor) IsAccessorDescriptor() bool {
	return d != nil && (d.Get != nil || d.Set != nil)
}

func (d *PropertyDescriptor) IsGenericDescriptor() bool {
	return d != nil && !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

// IsEmpty reports whether none of the six fields is present.
func (d *PropertyDescriptor) IsEmpty() bool {
	return d.Value == nil && d.Get == nil && d.Set == nil &&
		!d.Writable.IsSet() && !d.Enumerable.IsSet() && !d.Configurable.IsSet()
}

func (d PropertyDescriptor) String() string {
	var fields []string
	if d.Value != nil {
		fields = append(fields, "value: "+describe(d.Value))
	}
	if d.Get != nil {
		fields = append(fields, "get: "+describe(d.Get))
	}
	if d.Set != nil {
		fields = append(fields, "set: "+describe(d.Set))
	}
	for _, f := range []struct {
		name string
		flag Flag
	}{{"writable", d.Writable}, {"enumerable", d.Enumerable}, {"configurable", d.Configurable}} {
		if f.flag.IsSet() {
			fields = append(fields, fmt.Sprintf("%s: %v", f.name, f.flag.Bool()))
		}
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

// CompletePropertyDescriptor fills every absent field with its default.
func (r *Realm) CompletePropertyDescriptor(d *PropertyDescriptor) {
	if d.IsGenericDescriptor() || d.IsDataDescriptor() {
		if d.Value == nil {
			d.Value = r.Undefined()
		}
		if !d.Writable.IsSet() {
			d.Writable = FlagFalse
		}
	} else {
		if d.Get == nil {
			d.Get = r.Undefined()
		}
		if d.Set == nil {
			d.Set = r.Undefined()
		}
	}
	if !d.Enumerable.IsSet() {
		d.Enumerable = FlagFalse
	}
	if !d.Configurable.IsSet() {
		d.Configurable = FlagFalse
	}
}

// ToPropertyDescriptor reads a descriptor out of an attributes object. Mixing
// accessor and data fields throws.
func (r *Realm) ToPropertyDescriptor(v Value) (PropertyDescriptor, error) {
	var desc PropertyDescriptor
	obj, isObj := v.(*Object)
	if !isObj {
		return desc, r.ThrowTypeError("property description must be an object: %s", describe(v))
	}

	readFlag := func(name string, dst *Flag) error {
		key := StringKey(name)
		has, err := obj.HasProperty(key)
		if err != nil || !has {
			return err
		}
		val, err := obj.Get(key, obj)
		if err != nil {
			return err
		}
		b, err := r.ToBoolean(val)
		if err != nil {
			return err
		}
		*dst = ToFlag(b)
		return nil
	}
	readValue := func(name string, dst *Value) error {
		key := StringKey(name)
		has, err := obj.HasProperty(key)
		if err != nil || !has {
			return err
		}
		*dst, err = obj.Get(key, obj)
		return err
	}

	if err := readFlag("enumerable", &desc.Enumerable); err != nil {
		return desc, err
	}
	if err := readFlag("configurable", &desc.Configurable); err != nil {
		return desc, err
	}
	if err := readValue("value", &desc.Value); err != nil {
		return desc, err
	}
	if err := readFlag("writable", &desc.Writable); err != nil {
		return desc, err
	}
	if err := readValue("get", &desc.Get); err != nil {
		return desc, err
	}
	if desc.Get != nil && !IsCallable(desc.Get) && !IsUndefined(desc.Get) {
		return desc, r.ThrowTypeError("getter must be a function: %s", describe(desc.Get))
	}
	if err := readValue("set", &desc.Set); err != nil {
		return desc, err
	}
	if desc.Set != nil && !IsCallable(desc.Set) && !IsUndefined(desc.Set) {
		return desc, r.ThrowTypeError("setter must be a function: %s", describe(desc.Set))
	}

	if desc.IsAccessorDescriptor() && desc.IsDataDescriptor() {
		return desc, r.ThrowTypeError("invalid property descriptor: cannot both specify accessors and a value or writable attribute")
	}
	return desc, nil
}

// FromPropertyDescriptor converts a descriptor into an attributes object;
// nil becomes undefined.
func (r *Realm) FromPropertyDescriptor(d *PropertyDescriptor) Value {
	if d == nil {
		return r.Undefined()
	}
	obj := r.NewObject()
	put := func(name string, v Value) {
		if _, err := r.CreateDataProperty(obj, StringKey(name), v); err != nil {
			panic("bug: CreateDataProperty failed on a fresh object")
		}
	}
	if d.Value != nil {
		put("value", d.Value)
	}
	if d.Writable.IsSet() {
		put("writable", r.Bool(d.Writable.Bool()))
	}
	if d.Get != nil {
		put("get", d.Get)
	}
	if d.Set != nil {
		put("set", d.Set)
	}
	if d.Enumerable.IsSet() {
		put("enumerable", r.Bool(d.Enumerable.Bool()))
	}
	if d.Configurable.IsSet() {
		put("configurable", r.Bool(d.Configurable.Bool()))
	}
	return obj
}
