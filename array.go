package objmodel

import "math"

var lengthKey = StringKey("length")

// ArrayCreate creates an array exotic object. proto nil means
// Array.prototype.
func (r *Realm) ArrayCreate(length uint32, proto *Object) *Object {
	if proto == nil {
		proto = r.intrinsics.ArrayPrototype
	}
	arr := r.newObject(KindArray, "Array", proto)
	arr.props.put(&property{
		key:      lengthKey,
		value:    NewNumber(float64(length)),
		writable: true,
	})
	return arr
}

// IsArray sees through proxies.
func (r *Realm) IsArray(v Value) (bool, error) {
	o, isObj := v.(*Object)
	for isObj {
		switch o.kind {
		case KindArray:
			return true, nil
		case KindProxy:
			if o.proxy.Handler == nil {
				return false, r.ThrowTypeError("cannot perform 'IsArray' on a proxy that has been revoked")
			}
			o = o.proxy.Target
		default:
			return false, nil
		}
	}
	return false, nil
}

func (o *Object) arrayLength() (uint32, *property) {
	p := o.props.lookup(lengthKey)
	if p == nil || p.accessor {
		panic("bug: array without a length data property")
	}
	return uint32(p.value.(Number).f), p
}

func (o *Object) arrayDefineOwnProperty(k PropertyKey, desc PropertyDescriptor) (bool, error) {
	if k.IsString() && k.name == "length" {
		return o.arraySetLength(desc)
	}
	if !k.IsArrayIndex() {
		return o.ordinaryDefineOwnProperty(k, desc), nil
	}

	length, lengthProp := o.arrayLength()
	index := k.ArrayIndex()
	if index >= length && !lengthProp.writable {
		return false, nil
	}
	if !o.ordinaryDefineOwnProperty(k, desc) {
		return false, nil
	}
	if index >= length {
		updated := *lengthProp
		updated.value = NewNumber(float64(index) + 1)
		o.props.put(&updated)
	}
	return true, nil
}

// arraySetLength defines "length", deleting the elements past the new
// length from the highest index down. Deletion stops at the first element
// that is not configurable.
func (o *Object) arraySetLength(desc PropertyDescriptor) (bool, error) {
	r := o.realm
	if desc.Value == nil {
		return o.ordinaryDefineOwnProperty(lengthKey, desc), nil
	}

	newLen, err := r.ToUint32(desc.Value)
	if err != nil {
		return false, err
	}
	numberLen, err := r.ToNumber(desc.Value)
	if err != nil {
		return false, err
	}
	if float64(newLen) != numberLen {
		return false, r.ThrowRangeError("invalid array length")
	}

	newLenDesc := desc
	newLenDesc.Value = NewNumber(float64(newLen))
	oldLen, oldLenProp := o.arrayLength()
	if newLen >= oldLen {
		return o.ordinaryDefineOwnProperty(lengthKey, newLenDesc), nil
	}
	if !oldLenProp.writable {
		return false, nil
	}

	newWritable := true
	if newLenDesc.Writable == FlagFalse {
		newWritable = false
		newLenDesc.Writable = FlagTrue
	}
	if !o.ordinaryDefineOwnProperty(lengthKey, newLenDesc) {
		return false, nil
	}

	for _, k := range o.indicesFrom(newLen) {
		if ok, _ := o.Delete(k); !ok {
			newLenDesc.Value = NewNumber(float64(k.ArrayIndex()) + 1)
			if !newWritable {
				newLenDesc.Writable = FlagFalse
			}
			o.ordinaryDefineOwnProperty(lengthKey, newLenDesc)
			return false, nil
		}
	}

	if !newWritable {
		o.ordinaryDefineOwnProperty(lengthKey, PropertyDescriptor{Writable: FlagFalse})
	}
	return true, nil
}

// indicesFrom lists the own array indices >= from, highest first.
func (o *Object) indicesFrom(from uint32) []PropertyKey {
	keys := o.props.keys()
	var indices []PropertyKey
	for i := len(keys) - 1; i >= 0; i-- {
		k := keys[i]
		if k.IsArrayIndex() && k.ArrayIndex() >= from {
			indices = append(indices, k)
		}
	}
	return indices
}

// ArrayLength is the value of the length property of an array.
func (o *Object) ArrayLength() uint32 {
	if o.kind != KindArray {
		return 0
	}
	length, _ := o.arrayLength()
	return length
}

func validArrayLength(f float64) bool {
	return f >= 0 && f <= math.MaxUint32 && f == math.Trunc(f)
}
