package objmodel

// ValidateAndApplyPropertyDescriptor checks whether desc may be applied to
// the property k described by current and, when o is not nil, applies it.
// It is the only path by which the attributes of an existing property
// change.
func ValidateAndApplyPropertyDescriptor(o *Object, k PropertyKey, extensible bool, desc PropertyDescriptor, current *PropertyDescriptor) bool {
	if current == nil {
		if !extensible {
			return false
		}
		if o != nil {
			o.props.put(newProperty(o.realm, k, desc))
		}
		return true
	}

	if desc.IsEmpty() {
		return true
	}

	if !current.Configurable.Bool() {
		if desc.Configurable.Bool() {
			return false
		}
		if desc.Enumerable.IsSet() && desc.Enumerable != current.Enumerable {
			return false
		}

		if !desc.IsGenericDescriptor() {
			if current.IsDataDescriptor() != desc.IsDataDescriptor() {
				return false
			}
			if current.IsAccessorDescriptor() {
				if desc.Get != nil && !SameValue(desc.Get, current.Get) {
					return false
				}
				if desc.Set != nil && !SameValue(desc.Set, current.Set) {
					return false
				}
			} else if !current.Writable.Bool() {
				if desc.Writable.Bool() {
					return false
				}
				if desc.Value != nil && !SameValue(desc.Value, current.Value) {
					return false
				}
			}
		}
	}

	if o != nil {
		o.props.put(mergeProperty(o.realm, k, current, desc))
	}
	return true
}

// IsCompatiblePropertyDescriptor validates without applying.
func IsCompatiblePropertyDescriptor(extensible bool, desc PropertyDescriptor, current *PropertyDescriptor) bool {
	return ValidateAndApplyPropertyDescriptor(nil, PropertyKey{}, extensible, desc, current)
}

// newProperty builds a property out of desc, defaulting missing fields.
func newProperty(r *Realm, k PropertyKey, desc PropertyDescriptor) *property {
	p := &property{
		key:          k,
		enumerable:   desc.Enumerable.Bool(),
		configurable: desc.Configurable.Bool(),
	}
	if desc.IsAccessorDescriptor() {
		p.accessor = true
		p.get = orUndefined(r, desc.Get)
		p.set = orUndefined(r, desc.Set)
	} else {
		p.value = orUndefined(r, desc.Value)
		p.writable = desc.Writable.Bool()
	}
	return p
}

// mergeProperty overlays the present fields of desc onto current. Switching
// between data and accessor drops the fields of the previous kind and
// resets them to their defaults.
func mergeProperty(r *Realm, k PropertyKey, current *PropertyDescriptor, desc PropertyDescriptor) *property {
	p := &property{
		key:          k,
		enumerable:   current.Enumerable.Bool(),
		configurable: current.Configurable.Bool(),
	}
	if desc.Enumerable.IsSet() {
		p.enumerable = desc.Enumerable.Bool()
	}
	if desc.Configurable.IsSet() {
		p.configurable = desc.Configurable.Bool()
	}

	switch {
	case current.IsDataDescriptor() && desc.IsAccessorDescriptor():
		p.accessor = true
		p.get = orUndefined(r, desc.Get)
		p.set = orUndefined(r, desc.Set)
	case current.IsAccessorDescriptor() && desc.IsDataDescriptor():
		p.value = orUndefined(r, desc.Value)
		p.writable = desc.Writable.Bool()
	case current.IsAccessorDescriptor():
		p.accessor = true
		p.get, p.set = current.Get, current.Set
		if desc.Get != nil {
			p.get = desc.Get
		}
		if desc.Set != nil {
			p.set = desc.Set
		}
	default:
		p.value, p.writable = current.Value, current.Writable.Bool()
		if desc.Value != nil {
			p.value = desc.Value
		}
		if desc.Writable.IsSet() {
			p.writable = desc.Writable.Bool()
		}
	}
	return p
}

func orUndefined(r *Realm, v Value) Value {
	if v == nil {
		return r.Undefined()
	}
	return v
}
