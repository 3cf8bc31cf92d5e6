package objmodel

import "fmt"

// ObjectKind selects the internal-method implementation of an object.
type ObjectKind uint8

const (
	KindOrdinary ObjectKind = iota
	KindFunction
	KindArray
	KindPrimitiveWrapper
	KindError
	KindArguments
	KindProxy
)

func (k ObjectKind) String() string {
	switch k {
	case KindOrdinary:
		return "ordinary"
	case KindFunction:
		return "function"
	case KindArray:
		return "array"
	case KindPrimitiveWrapper:
		return "primitive wrapper"
	case KindError:
		return "error"
	case KindArguments:
		return "arguments"
	case KindProxy:
		return "proxy"
	default:
		return fmt.Sprintf("ObjectKind(%d)", uint8(k))
	}
}

type Object struct {
	id    uint64
	realm *Realm
	kind  ObjectKind
	// class is the builtin tag reported by Object.prototype.toString
	class string

	proto      *Object // nil is null
	extensible bool
	props      propertyStore

	// only the slots of kind are set
	fn        *FunctionSlots
	primitive Value
	proxy     *ProxySlots
}

func (o *Object) Type() Type { return TypeObject }
func (o *Object) ID() uint64 { return o.id }

func (o *Object) Realm() *Realm    { return o.realm }
func (o *Object) Kind() ObjectKind { return o.kind }
func (o *Object) Class() string    { return o.class }

// PrimitiveValue is the [[BooleanData]], [[NumberData]], [[StringData]] or
// [[SymbolData]] of a wrapper object.
func (o *Object) PrimitiveValue() Value {
	return o.primitive
}

// Is reports whether o and other are the same object. A nil *Object stands
// for null.
func (o *Object) Is(other *Object) bool {
	if o == nil || other == nil {
		return o == nil && other == nil
	}
	return o.id == other.id
}

func (o *Object) String() string {
	return fmt.Sprintf("[object %s #%d]", o.class, o.id)
}

func (o *Object) isCallable() bool {
	switch o.kind {
	case KindFunction:
		return true
	case KindProxy:
		return o.proxy.callable
	default:
		return false
	}
}

func (o *Object) isConstructor() bool {
	switch o.kind {
	case KindFunction:
		return o.fn.Constructor != ConstructorNone
	case KindProxy:
		return o.proxy.constructor
	default:
		return false
	}
}

// GetPrototypeOf is [[GetPrototypeOf]]. A nil result is null.
func (o *Object) GetPrototypeOf() (*Object, error) {
	if o.kind == KindProxy {
		return o.proxyGetPrototypeOf()
	}
	return o.proto, nil
}

// SetPrototypeOf is [[SetPrototypeOf]]; v == nil sets the prototype to null.
func (o *Object) SetPrototypeOf(v *Object) (bool, error) {
	if o.kind == KindProxy {
		return o.proxySetPrototypeOf(v)
	}
	return o.ordinarySetPrototypeOf(v), nil
}

func (o *Object) ordinarySetPrototypeOf(v *Object) bool {
	if v.Is(o.proto) {
		return true
	}
	if !o.extensible {
		return false
	}
	if v != nil && v.realm != o.realm {
		panic("bug: prototype from a different realm")
	}

	p := v
	done := false
	for !done {
		switch {
		case p == nil:
			done = true
		case p.Is(o):
			return false
		case p.kind == KindProxy:
			// the chain past an exotic [[GetPrototypeOf]] can't be inspected
			done = true
		default:
			p = p.proto
		}
	}

	o.proto = v
	return true
}

func (o *Object) IsExtensible() (bool, error) {
	if o.kind == KindProxy {
		return o.proxyIsExtensible()
	}
	return o.extensible, nil
}

func (o *Object) PreventExtensions() (bool, error) {
	if o.kind == KindProxy {
		return o.proxyPreventExtensions()
	}
	o.extensible = false
	return true, nil
}

// GetOwnProperty is [[GetOwnProperty]]. It returns nil for an absent
// property and a fresh copy otherwise.
func (o *Object) GetOwnProperty(k PropertyKey) (*PropertyDescriptor, error) {
	if o.kind == KindProxy {
		return o.proxyGetOwnProperty(k)
	}
	return o.ordinaryGetOwnProperty(k), nil
}

func (o *Object) ordinaryGetOwnProperty(k PropertyKey) *PropertyDescriptor {
	p := o.props.lookup(k)
	if p == nil {
		return nil
	}
	return p.descriptor()
}

func (o *Object) DefineOwnProperty(k PropertyKey, desc PropertyDescriptor) (bool, error) {
	switch o.kind {
	case KindProxy:
		return o.proxyDefineOwnProperty(k, desc)
	case KindArray:
		return o.arrayDefineOwnProperty(k, desc)
	default:
		return o.ordinaryDefineOwnProperty(k, desc), nil
	}
}

func (o *Object) ordinaryDefineOwnProperty(k PropertyKey, desc PropertyDescriptor) bool {
	current := o.ordinaryGetOwnProperty(k)
	return ValidateAndApplyPropertyDescriptor(o, k, o.extensible, desc, current)
}

func (o *Object) HasProperty(k PropertyKey) (bool, error) {
	for cur := o; cur != nil; cur = cur.proto {
		if cur.kind == KindProxy {
			return cur.proxyHasProperty(k)
		}
		if cur.props.has(k) {
			return true, nil
		}
	}
	return false, nil
}

// Get is [[Get]]. Getters are called with receiver as this.
func (o *Object) Get(k PropertyKey, receiver Value) (Value, error) {
	cur := o
	for {
		if cur.kind == KindProxy {
			return cur.proxyGet(k, receiver)
		}
		p := cur.props.lookup(k)
		if p == nil {
			cur = cur.proto
			if cur == nil {
				return o.realm.Undefined(), nil
			}
			continue
		}
		if !p.accessor {
			return p.value, nil
		}
		if IsUndefined(p.get) {
			return o.realm.Undefined(), nil
		}
		return o.realm.Call(p.get, receiver, nil)
	}
}

func (o *Object) Set(k PropertyKey, v Value, receiver Value) (bool, error) {
	if o.kind == KindProxy {
		return o.proxySet(k, v, receiver)
	}
	ownDesc := o.ordinaryGetOwnProperty(k)
	return OrdinarySetWithOwnDescriptor(o, k, v, receiver, ownDesc)
}

func (o *Object) Delete(k PropertyKey) (bool, error) {
	if o.kind == KindProxy {
		return o.proxyDelete(k)
	}
	p := o.props.lookup(k)
	if p == nil {
		return true, nil
	}
	if !p.configurable {
		return false, nil
	}
	o.props.remove(k)
	return true, nil
}

func (o *Object) OwnPropertyKeys() ([]PropertyKey, error) {
	if o.kind == KindProxy {
		return o.proxyOwnPropertyKeys()
	}
	return o.props.keys(), nil
}

// Call is [[Call]].
func (o *Object) Call(this Value, args []Value) (Value, error) {
	switch o.kind {
	case KindFunction:
		return o.callFunction(this, args)
	case KindProxy:
		if o.proxy.callable {
			return o.proxyCall(this, args)
		}
	}
	return nil, o.realm.ThrowTypeError("%s is not a function", describe(o))
}

// Construct is [[Construct]]. newTarget nil means o itself.
func (o *Object) Construct(args []Value, newTarget *Object) (*Object, error) {
	if newTarget == nil {
		newTarget = o
	}
	switch o.kind {
	case KindFunction:
		if o.fn.Constructor != ConstructorNone {
			return o.constructFunction(args, newTarget)
		}
	case KindProxy:
		if o.proxy.constructor {
			return o.proxyConstruct(args, newTarget)
		}
	}
	return nil, o.realm.ThrowTypeError("%s is not a constructor", describe(o))
}

// ownDataString reads a string-valued own data property without running
// any code. Used for diagnostics.
func (o *Object) ownDataString(k PropertyKey) string {
	if o.kind == KindProxy {
		return ""
	}
	p := o.props.lookup(k)
	if p == nil || p.accessor {
		return ""
	}
	if s, isStr := p.value.(String); isStr {
		return s.s
	}
	return ""
}

// defineBuiltin installs a property during realm setup, where a rejection
// can only be a bug.
func (o *Object) defineBuiltin(k PropertyKey, desc PropertyDescriptor) {
	ok, err := o.DefineOwnProperty(k, desc)
	if err != nil || !ok {
		panic(fmt.Sprintf("bug: could not define builtin property %s: %v", k, err))
	}
}
