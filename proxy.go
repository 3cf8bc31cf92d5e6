package objmodel

// ProxySlots are [[ProxyTarget]] and [[ProxyHandler]]. Both are nil once
// the proxy has been revoked.
type ProxySlots struct {
	Target  *Object
	Handler *Object

	callable    bool
	constructor bool
}

// ProxyCreate implements the Proxy constructor.
func (r *Realm) ProxyCreate(target, handler Value) (*Object, error) {
	t, isObj := target.(*Object)
	if !isObj {
		return nil, r.ThrowTypeError("cannot create proxy with a non-object as target")
	}
	h, isObj := handler.(*Object)
	if !isObj {
		return nil, r.ThrowTypeError("cannot create proxy with a non-object as handler")
	}

	class := "Object"
	if t.isCallable() {
		class = "Function"
	}
	p := r.newObject(KindProxy, class, nil)
	p.proxy = &ProxySlots{
		Target:      t,
		Handler:     h,
		callable:    t.isCallable(),
		constructor: t.isConstructor(),
	}
	return p, nil
}

// Revoke disables a proxy; every later operation on it throws.
func (o *Object) Revoke() {
	if o.kind != KindProxy {
		panic("bug: Revoke on a non-proxy")
	}
	o.proxy.Target = nil
	o.proxy.Handler = nil
}

// proxyTrap looks up the named trap. On success the caller must call
// leaveCall on the realm. A nil trap means the operation forwards to the
// target.
func (o *Object) proxyTrap(name string) (target, handler *Object, trap Value, err error) {
	r := o.realm
	ps := o.proxy
	if ps.Handler == nil {
		return nil, nil, nil, r.ThrowTypeError("cannot perform '%s' on a proxy that has been revoked", name)
	}
	if err := r.enterCall(); err != nil {
		return nil, nil, nil, err
	}
	target, handler = ps.Target, ps.Handler
	trap, err = r.GetMethod(handler, StringKey(name))
	if err != nil {
		r.leaveCall()
		return nil, nil, nil, err
	}
	return target, handler, trap, nil
}

func (o *Object) proxyGetPrototypeOf() (*Object, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("getPrototypeOf")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.GetPrototypeOf()
	}

	res, err := r.Call(trap, handler, []Value{target})
	if err != nil {
		return nil, err
	}
	var proto *Object
	switch res := res.(type) {
	case *Object:
		proto = res
	case Null:
	default:
		return nil, r.ThrowTypeError("'getPrototypeOf' on proxy: trap returned neither object nor null")
	}

	extensible, err := target.IsExtensible()
	if err != nil || extensible {
		return proto, err
	}
	targetProto, err := target.GetPrototypeOf()
	if err != nil {
		return nil, err
	}
	if !proto.Is(targetProto) {
		return nil, r.ThrowTypeError("'getPrototypeOf' on proxy: proxy target is non-extensible but the trap did not return its actual prototype")
	}
	return proto, nil
}

func (o *Object) proxySetPrototypeOf(v *Object) (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("setPrototypeOf")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.SetPrototypeOf(v)
	}

	var protoArg Value = r.Null()
	if v != nil {
		protoArg = v
	}
	res, err := r.Call(trap, handler, []Value{target, protoArg})
	if err != nil {
		return false, err
	}
	ok, err := r.ToBoolean(res)
	if err != nil || !ok {
		return false, err
	}

	extensible, err := target.IsExtensible()
	if err != nil || extensible {
		return true, err
	}
	targetProto, err := target.GetPrototypeOf()
	if err != nil {
		return false, err
	}
	if !v.Is(targetProto) {
		return false, r.ThrowTypeError("'setPrototypeOf' on proxy: trap returned truish for setting a new prototype on the non-extensible proxy target")
	}
	return true, nil
}

func (o *Object) proxyIsExtensible() (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("isExtensible")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.IsExtensible()
	}

	res, err := r.Call(trap, handler, []Value{target})
	if err != nil {
		return false, err
	}
	result, err := r.ToBoolean(res)
	if err != nil {
		return false, err
	}
	targetResult, err := target.IsExtensible()
	if err != nil {
		return false, err
	}
	if result != targetResult {
		return false, r.ThrowTypeError("'isExtensible' on proxy: trap result does not reflect extensibility of proxy target")
	}
	return result, nil
}

func (o *Object) proxyPreventExtensions() (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("preventExtensions")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.PreventExtensions()
	}

	res, err := r.Call(trap, handler, []Value{target})
	if err != nil {
		return false, err
	}
	result, err := r.ToBoolean(res)
	if err != nil || !result {
		return false, err
	}
	extensible, err := target.IsExtensible()
	if err != nil {
		return false, err
	}
	if extensible {
		return false, r.ThrowTypeError("'preventExtensions' on proxy: trap returned truish but the proxy target is extensible")
	}
	return true, nil
}

func (o *Object) proxyGetOwnProperty(k PropertyKey) (*PropertyDescriptor, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("getOwnPropertyDescriptor")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.GetOwnProperty(k)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue()})
	if err != nil {
		return nil, err
	}
	if _, isObj := res.(*Object); !isObj && !IsUndefined(res) {
		return nil, r.ThrowTypeError("'getOwnPropertyDescriptor' on proxy: trap returned neither object nor undefined for property '%s'", k)
	}
	targetDesc, err := target.GetOwnProperty(k)
	if err != nil {
		return nil, err
	}
	extensible, err := target.IsExtensible()
	if err != nil {
		return nil, err
	}

	if IsUndefined(res) {
		if targetDesc == nil {
			return nil, nil
		}
		if !targetDesc.Configurable.Bool() {
			return nil, r.ThrowTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which is non-configurable in the proxy target", k)
		}
		if !extensible {
			return nil, r.ThrowTypeError("'getOwnPropertyDescriptor' on proxy: trap returned undefined for property '%s' which exists in the non-extensible proxy target", k)
		}
		return nil, nil
	}

	resultDesc, err := r.ToPropertyDescriptor(res)
	if err != nil {
		return nil, err
	}
	r.CompletePropertyDescriptor(&resultDesc)
	if !IsCompatiblePropertyDescriptor(extensible, resultDesc, targetDesc) {
		return nil, r.ThrowTypeError("'getOwnPropertyDescriptor' on proxy: trap returned descriptor for property '%s' that is incompatible with the existing property in the proxy target", k)
	}
	if !resultDesc.Configurable.Bool() && (targetDesc == nil || targetDesc.Configurable.Bool()) {
		return nil, r.ThrowTypeError("'getOwnPropertyDescriptor' on proxy: trap reported non-configurability for property '%s' which is either non-existent or configurable in the proxy target", k)
	}
	return &resultDesc, nil
}

func (o *Object) proxyDefineOwnProperty(k PropertyKey, desc PropertyDescriptor) (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("defineProperty")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.DefineOwnProperty(k, desc)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue(), r.FromPropertyDescriptor(&desc)})
	if err != nil {
		return false, err
	}
	ok, err := r.ToBoolean(res)
	if err != nil || !ok {
		return false, err
	}

	targetDesc, err := target.GetOwnProperty(k)
	if err != nil {
		return false, err
	}
	extensible, err := target.IsExtensible()
	if err != nil {
		return false, err
	}
	settingConfigFalse := desc.Configurable == FlagFalse
	if targetDesc == nil {
		if !extensible {
			return false, r.ThrowTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' to the non-extensible proxy target", k)
		}
		if settingConfigFalse {
			return false, r.ThrowTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is non-existent in the proxy target", k)
		}
		return true, nil
	}
	if !IsCompatiblePropertyDescriptor(extensible, desc, targetDesc) {
		return false, r.ThrowTypeError("'defineProperty' on proxy: trap returned truish for adding property '%s' that is incompatible with the existing property in the proxy target", k)
	}
	if settingConfigFalse && targetDesc.Configurable.Bool() {
		return false, r.ThrowTypeError("'defineProperty' on proxy: trap returned truish for defining non-configurable property '%s' which is configurable in the proxy target", k)
	}
	return true, nil
}

func (o *Object) proxyHasProperty(k PropertyKey) (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("has")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.HasProperty(k)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue()})
	if err != nil {
		return false, err
	}
	result, err := r.ToBoolean(res)
	if err != nil || result {
		return result, err
	}

	targetDesc, err := target.GetOwnProperty(k)
	if err != nil || targetDesc == nil {
		return false, err
	}
	if !targetDesc.Configurable.Bool() {
		return false, r.ThrowTypeError("'has' on proxy: trap returned falsish for property '%s' which exists in the proxy target as non-configurable", k)
	}
	extensible, err := target.IsExtensible()
	if err != nil {
		return false, err
	}
	if !extensible {
		return false, r.ThrowTypeError("'has' on proxy: trap returned falsish for property '%s' but the proxy target is not extensible", k)
	}
	return false, nil
}

func (o *Object) proxyGet(k PropertyKey, receiver Value) (Value, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("get")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.Get(k, receiver)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue(), receiver})
	if err != nil {
		return nil, err
	}
	targetDesc, err := target.GetOwnProperty(k)
	if err != nil {
		return nil, err
	}
	if targetDesc != nil && !targetDesc.Configurable.Bool() {
		if targetDesc.IsDataDescriptor() && !targetDesc.Writable.Bool() && !SameValue(res, targetDesc.Value) {
			return nil, r.ThrowTypeError("'get' on proxy: property '%s' is a read-only and non-configurable data property on the proxy target but the proxy did not return its actual value", k)
		}
		if targetDesc.IsAccessorDescriptor() && IsUndefined(targetDesc.Get) && !IsUndefined(res) {
			return nil, r.ThrowTypeError("'get' on proxy: property '%s' is a non-configurable accessor property on the proxy target and does not have a getter function, but the trap did not return undefined", k)
		}
	}
	return res, nil
}

func (o *Object) proxySet(k PropertyKey, v Value, receiver Value) (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("set")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.Set(k, v, receiver)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue(), v, receiver})
	if err != nil {
		return false, err
	}
	ok, err := r.ToBoolean(res)
	if err != nil || !ok {
		return false, err
	}
	targetDesc, err := target.GetOwnProperty(k)
	if err != nil {
		return false, err
	}
	if targetDesc != nil && !targetDesc.Configurable.Bool() {
		if targetDesc.IsDataDescriptor() && !targetDesc.Writable.Bool() && !SameValue(v, targetDesc.Value) {
			return false, r.ThrowTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable data property with a different value", k)
		}
		if targetDesc.IsAccessorDescriptor() && IsUndefined(targetDesc.Set) {
			return false, r.ThrowTypeError("'set' on proxy: trap returned truish for property '%s' which exists in the proxy target as a non-configurable and non-writable accessor property without a setter", k)
		}
	}
	return true, nil
}

func (o *Object) proxyDelete(k PropertyKey) (bool, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("deleteProperty")
	if err != nil {
		return false, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.Delete(k)
	}

	res, err := r.Call(trap, handler, []Value{target, k.ToValue()})
	if err != nil {
		return false, err
	}
	ok, err := r.ToBoolean(res)
	if err != nil || !ok {
		return false, err
	}
	targetDesc, err := target.GetOwnProperty(k)
	if err != nil || targetDesc == nil {
		return true, err
	}
	if !targetDesc.Configurable.Bool() {
		return false, r.ThrowTypeError("'deleteProperty' on proxy: trap returned truish for property '%s' which is non-configurable in the proxy target", k)
	}
	extensible, err := target.IsExtensible()
	if err != nil {
		return false, err
	}
	if !extensible {
		return false, r.ThrowTypeError("'deleteProperty' on proxy: trap returned truish for property '%s' but the proxy target is non-extensible", k)
	}
	return true, nil
}

func (o *Object) proxyOwnPropertyKeys() ([]PropertyKey, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("ownKeys")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.OwnPropertyKeys()
	}

	res, err := r.Call(trap, handler, []Value{target})
	if err != nil {
		return nil, err
	}
	list, err := r.CreateListFromArrayLike(res)
	if err != nil {
		return nil, err
	}
	keys := make([]PropertyKey, 0, len(list))
	seen := make(map[keyID]bool, len(list))
	for _, el := range list {
		var k PropertyKey
		switch el := el.(type) {
		case String:
			k = StringKey(el.s)
		case *Symbol:
			k = SymbolKey(el)
		default:
			return nil, r.ThrowTypeError("'ownKeys' on proxy: trap result elements must be strings or symbols, got %s", describe(el))
		}
		if seen[k.id()] {
			return nil, r.ThrowTypeError("'ownKeys' on proxy: trap returned duplicate entries for '%s'", k)
		}
		seen[k.id()] = true
		keys = append(keys, k)
	}

	extensible, err := target.IsExtensible()
	if err != nil {
		return nil, err
	}
	targetKeys, err := target.OwnPropertyKeys()
	if err != nil {
		return nil, err
	}
	for _, k := range targetKeys {
		desc, err := target.GetOwnProperty(k)
		if err != nil {
			return nil, err
		}
		mustReport := !extensible || (desc != nil && !desc.Configurable.Bool())
		if mustReport && !seen[k.id()] {
			return nil, r.ThrowTypeError("'ownKeys' on proxy: trap result did not include '%s'", k)
		}
		delete(seen, k.id())
	}
	if !extensible && len(seen) > 0 {
		return nil, r.ThrowTypeError("'ownKeys' on proxy: trap returned extra keys but the proxy target is non-extensible")
	}
	return keys, nil
}

func (o *Object) proxyCall(this Value, args []Value) (Value, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("apply")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.Call(this, args)
	}
	return r.Call(trap, handler, []Value{target, this, r.CreateArrayFromList(args)})
}

func (o *Object) proxyConstruct(args []Value, newTarget *Object) (*Object, error) {
	r := o.realm
	target, handler, trap, err := o.proxyTrap("construct")
	if err != nil {
		return nil, err
	}
	defer r.leaveCall()
	if trap == nil {
		return target.Construct(args, newTarget)
	}

	res, err := r.Call(trap, handler, []Value{target, r.CreateArrayFromList(args), newTarget})
	if err != nil {
		return nil, err
	}
	obj, isObj := res.(*Object)
	if !isObj {
		return nil, r.ThrowTypeError("'construct' on proxy: trap returned non-object (%s)", describe(res))
	}
	return obj, nil
}
