package objmodel

// OrdinarySetWithOwnDescriptor assigns v to k starting at o, whose own
// descriptor for k is ownDesc (nil if absent). Properties found on the
// prototype chain only decide whether the assignment is allowed; the
// property is always created or updated on receiver.
func OrdinarySetWithOwnDescriptor(o *Object, k PropertyKey, v Value, receiver Value, ownDesc *PropertyDescriptor) (bool, error) {
	r := o.realm

	for ownDesc == nil {
		parent := o.proto
		if parent == nil {
			desc := DataDescriptor(r.Undefined(), true, true, true)
			ownDesc = &desc
			break
		}
		if parent.kind == KindProxy {
			return parent.Set(k, v, receiver)
		}
		o = parent
		ownDesc = o.ordinaryGetOwnProperty(k)
	}

	if ownDesc.IsAccessorDescriptor() {
		if ownDesc.Set == nil || IsUndefined(ownDesc.Set) {
			return false, nil
		}
		if _, err := r.Call(ownDesc.Set, receiver, []Value{v}); err != nil {
			return false, err
		}
		return true, nil
	}

	if !ownDesc.Writable.Bool() {
		return false, nil
	}
	recv, isObj := receiver.(*Object)
	if !isObj {
		return false, nil
	}

	existing, err := recv.GetOwnProperty(k)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if existing.IsAccessorDescriptor() {
			return false, nil
		}
		if !existing.Writable.Bool() {
			return SameValue(existing.Value, v), nil
		}
		return recv.DefineOwnProperty(k, PropertyDescriptor{Value: v})
	}
	return r.CreateDataProperty(recv, k, v)
}

// Call invokes f, throwing a TypeError if it is not callable.
func (r *Realm) Call(f Value, this Value, args []Value) (Value, error) {
	fo, isObj := f.(*Object)
	if !isObj || !fo.isCallable() {
		return nil, r.ThrowTypeError("%s is not a function", describe(f))
	}
	return fo.Call(this, args)
}

// Construct invokes f as a constructor. newTarget nil means f.
func (r *Realm) Construct(f Value, args []Value, newTarget *Object) (*Object, error) {
	fo, isObj := f.(*Object)
	if !isObj || !fo.isConstructor() {
		return nil, r.ThrowTypeError("%s is not a constructor", describe(f))
	}
	return fo.Construct(args, newTarget)
}

// GetV reads a property of any value, boxing primitives for the lookup
// while keeping the primitive as receiver.
func (r *Realm) GetV(v Value, k PropertyKey) (Value, error) {
	o, err := r.ToObject(v)
	if err != nil {
		return nil, err
	}
	return o.Get(k, v)
}

// GetMethod returns the callable at v[k], or nil if it is undefined or null.
func (r *Realm) GetMethod(v Value, k PropertyKey) (Value, error) {
	f, err := r.GetV(v, k)
	if err != nil {
		return nil, err
	}
	if IsNullish(f) {
		return nil, nil
	}
	if !IsCallable(f) {
		return nil, r.ThrowTypeError("%s is not a function", k)
	}
	return f, nil
}

// Set is the Set abstract operation; a rejected assignment throws when
// throw is true.
func (r *Realm) Set(o *Object, k PropertyKey, v Value, throw bool) error {
	ok, err := o.Set(k, v, o)
	if err != nil {
		return err
	}
	if !ok && throw {
		return r.ThrowTypeError("cannot assign to read only property '%s'", k)
	}
	return nil
}

func (r *Realm) CreateDataProperty(o *Object, k PropertyKey, v Value) (bool, error) {
	return o.DefineOwnProperty(k, DataDescriptor(v, true, true, true))
}

func (r *Realm) CreateDataPropertyOrThrow(o *Object, k PropertyKey, v Value) error {
	ok, err := r.CreateDataProperty(o, k, v)
	if err != nil {
		return err
	}
	if !ok {
		return r.ThrowTypeError("cannot define property '%s'", k)
	}
	return nil
}

func (r *Realm) DefinePropertyOrThrow(o *Object, k PropertyKey, desc PropertyDescriptor) error {
	ok, err := o.DefineOwnProperty(k, desc)
	if err != nil {
		return err
	}
	if !ok {
		return r.ThrowTypeError("cannot redefine property '%s'", k)
	}
	return nil
}

func (r *Realm) DeletePropertyOrThrow(o *Object, k PropertyKey) error {
	ok, err := o.Delete(k)
	if err != nil {
		return err
	}
	if !ok {
		return r.ThrowTypeError("cannot delete property '%s'", k)
	}
	return nil
}

func (r *Realm) HasOwnProperty(o *Object, k PropertyKey) (bool, error) {
	desc, err := o.GetOwnProperty(k)
	return desc != nil, err
}

// Invoke calls the method v[k] with v as this.
func (r *Realm) Invoke(v Value, k PropertyKey, args []Value) (Value, error) {
	f, err := r.GetV(v, k)
	if err != nil {
		return nil, err
	}
	return r.Call(f, v, args)
}

func (r *Realm) OrdinaryHasInstance(c Value, v Value) (bool, error) {
	if !IsCallable(c) {
		return false, nil
	}
	cobj := c.(*Object)
	if cobj.kind == KindFunction && cobj.fn.BoundTarget != nil {
		return r.InstanceofOperator(v, cobj.fn.BoundTarget)
	}
	o, isObj := v.(*Object)
	if !isObj {
		return false, nil
	}
	protoVal, err := cobj.Get(StringKey("prototype"), cobj)
	if err != nil {
		return false, err
	}
	proto, isObj := protoVal.(*Object)
	if !isObj {
		return false, r.ThrowTypeError("function has non-object prototype '%s' in instanceof check", describe(protoVal))
	}
	for {
		o, err = o.GetPrototypeOf()
		if err != nil {
			return false, err
		}
		if o == nil {
			return false, nil
		}
		if o.Is(proto) {
			return true, nil
		}
	}
}

// InstanceofOperator implements `v instanceof target`.
func (r *Realm) InstanceofOperator(v Value, target Value) (bool, error) {
	if _, isObj := target.(*Object); !isObj {
		return false, r.ThrowTypeError("right-hand side of 'instanceof' is not an object")
	}
	hook, err := r.GetMethod(target, SymbolKey(r.WellKnownSymbol("hasInstance")))
	if err != nil {
		return false, err
	}
	if hook != nil {
		res, err := r.Call(hook, target, []Value{v})
		if err != nil {
			return false, err
		}
		return r.ToBoolean(res)
	}
	if !IsCallable(target) {
		return false, r.ThrowTypeError("right-hand side of 'instanceof' is not callable")
	}
	return r.OrdinaryHasInstance(target, v)
}

type IntegrityLevel uint8

const (
	Sealed IntegrityLevel = iota
	Frozen
)

func (r *Realm) SetIntegrityLevel(o *Object, level IntegrityLevel) (bool, error) {
	ok, err := o.PreventExtensions()
	if err != nil || !ok {
		return false, err
	}
	keys, err := o.OwnPropertyKeys()
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		desc := PropertyDescriptor{Configurable: FlagFalse}
		if level == Frozen {
			current, err := o.GetOwnProperty(k)
			if err != nil {
				return false, err
			}
			if current == nil {
				continue
			}
			if current.IsDataDescriptor() {
				desc.Writable = FlagFalse
			}
		}
		if err := r.DefinePropertyOrThrow(o, k, desc); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *Realm) TestIntegrityLevel(o *Object, level IntegrityLevel) (bool, error) {
	extensible, err := o.IsExtensible()
	if err != nil || extensible {
		return false, err
	}
	keys, err := o.OwnPropertyKeys()
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		current, err := o.GetOwnProperty(k)
		if err != nil {
			return false, err
		}
		if current == nil {
			continue
		}
		if current.Configurable.Bool() {
			return false, nil
		}
		if level == Frozen && current.IsDataDescriptor() && current.Writable.Bool() {
			return false, nil
		}
	}
	return true, nil
}

type EnumerableKind uint8

const (
	EnumerateKeys EnumerableKind = iota
	EnumerateValues
	EnumerateEntries
)

// EnumerableOwnProperties lists own enumerable string-keyed properties in
// [[OwnPropertyKeys]] order.
func (r *Realm) EnumerableOwnProperties(o *Object, kind EnumerableKind) ([]Value, error) {
	keys, err := o.OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	var props []Value
	for _, k := range keys {
		if k.IsSymbol() {
			continue
		}
		desc, err := o.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		if desc == nil || !desc.Enumerable.Bool() {
			continue
		}
		if kind == EnumerateKeys {
			props = append(props, k.ToValue())
			continue
		}
		v, err := o.Get(k, o)
		if err != nil {
			return nil, err
		}
		if kind == EnumerateValues {
			props = append(props, v)
		} else {
			props = append(props, r.CreateArrayFromList([]Value{k.ToValue(), v}))
		}
	}
	return props, nil
}

func (r *Realm) LengthOfArrayLike(o *Object) (uint64, error) {
	v, err := o.Get(StringKey("length"), o)
	if err != nil {
		return 0, err
	}
	return r.ToLength(v)
}

func (r *Realm) CreateListFromArrayLike(v Value) ([]Value, error) {
	o, isObj := v.(*Object)
	if !isObj {
		return nil, r.ThrowTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := r.LengthOfArrayLike(o)
	if err != nil {
		return nil, err
	}
	if n > maxListLength {
		return nil, r.ThrowRangeError("too many arguments: %d", n)
	}
	list := make([]Value, 0, n)
	for i := uint64(0); i < n; i++ {
		el, err := o.Get(StringKey(formatIndex(i)), o)
		if err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, nil
}

const maxListLength = 1 << 20

func (r *Realm) CreateArrayFromList(elements []Value) *Object {
	arr := r.ArrayCreate(0, nil)
	for i, el := range elements {
		arr.defineBuiltin(IndexKey(uint32(i)), DataDescriptor(el, true, true, true))
	}
	return arr
}

// OrdinaryCreateFromConstructor creates an ordinary object whose prototype
// is constructor.prototype, falling back to the intrinsic fallback when
// that is not an object.
func (r *Realm) OrdinaryCreateFromConstructor(constructor *Object, fallback *Object) (*Object, error) {
	proto, err := r.GetPrototypeFromConstructor(constructor, fallback)
	if err != nil {
		return nil, err
	}
	return r.OrdinaryObjectCreate(proto), nil
}

func (r *Realm) GetPrototypeFromConstructor(constructor *Object, fallback *Object) (*Object, error) {
	protoVal, err := constructor.Get(StringKey("prototype"), constructor)
	if err != nil {
		return nil, err
	}
	if proto, isObj := protoVal.(*Object); isObj {
		return proto, nil
	}
	return fallback, nil
}
