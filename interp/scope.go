package interp

import (
	"com.github.sebastianobarrera.modeledjs/objmodel"
)

// Environment holds the bindings of one scope.
type Environment interface {
	hasBinding(name string) (bool, error)
	getBinding(name string) (objmodel.Value, error)
	setBinding(name string, value objmodel.Value, strict bool) error
	// createBinding adds name if it is missing; an existing binding keeps
	// its value.
	createBinding(name string, value objmodel.Value, deletable bool) error
	deleteBinding(name string) (bool, error)
}

type Scope struct {
	parent *Scope
	env    Environment
	strict bool

	// non-nil iff this scope is the variable scope of a function call
	call *ScopeCall
}

type ScopeCall struct {
	this   objmodel.Value
	callee *objmodel.Object
}

func newScope(parent *Scope, env Environment) *Scope {
	s := &Scope{parent: parent, env: env}
	if parent != nil {
		s.strict = parent.strict
	}
	return s
}

// varScope is the scope that var declarations go to.
func (s *Scope) varScope() *Scope {
	for ; s.parent != nil; s = s.parent {
		if s.call != nil {
			return s
		}
	}
	return s
}

// resolve finds the innermost scope binding name, or nil.
func (s *Scope) resolve(name string) (*Scope, error) {
	for ; s != nil; s = s.parent {
		found, err := s.env.hasBinding(name)
		if err != nil {
			return nil, err
		}
		if found {
			return s, nil
		}
	}
	return nil, nil
}

type binding struct {
	value     objmodel.Value
	deletable bool
	immutable bool
}

// DirectEnv is a declarative environment: function bodies, catch clauses.
type DirectEnv struct {
	realm    *objmodel.Realm
	bindings map[string]*binding
}

func newDirectEnv(r *objmodel.Realm) *DirectEnv {
	return &DirectEnv{realm: r, bindings: make(map[string]*binding)}
}

func (denv *DirectEnv) hasBinding(name string) (bool, error) {
	_, found := denv.bindings[name]
	return found, nil
}

func (denv *DirectEnv) getBinding(name string) (objmodel.Value, error) {
	b, found := denv.bindings[name]
	if !found {
		return nil, denv.realm.ThrowReferenceError("%s is not defined", name)
	}
	return b.value, nil
}

func (denv *DirectEnv) setBinding(name string, value objmodel.Value, strict bool) error {
	b, found := denv.bindings[name]
	if !found {
		return denv.realm.ThrowReferenceError("%s is not defined", name)
	}
	if b.immutable {
		if strict {
			return denv.realm.ThrowTypeError("assignment to constant binding %s", name)
		}
		return nil
	}
	b.value = value
	return nil
}

func (denv *DirectEnv) createBinding(name string, value objmodel.Value, deletable bool) error {
	if _, found := denv.bindings[name]; found {
		return nil
	}
	denv.bindings[name] = &binding{value: value, deletable: deletable}
	return nil
}

// defineImmutable binds the name of a named function expression.
func (denv *DirectEnv) defineImmutable(name string, value objmodel.Value) {
	denv.bindings[name] = &binding{value: value, immutable: true}
}

// overwrite replaces the value of an existing binding or creates it; used
// for hoisted function declarations and parameters.
func (denv *DirectEnv) overwrite(name string, value objmodel.Value) {
	if b, found := denv.bindings[name]; found {
		b.value = value
		return
	}
	denv.bindings[name] = &binding{value: value}
}

func (denv *DirectEnv) deleteBinding(name string) (bool, error) {
	b, found := denv.bindings[name]
	if !found {
		return true, nil
	}
	if !b.deletable {
		return false, nil
	}
	delete(denv.bindings, name)
	return true, nil
}

// ObjectEnv exposes the properties of an object as bindings: the global
// object and with statements.
type ObjectEnv struct {
	obj *objmodel.Object
}

func (oenv ObjectEnv) hasBinding(name string) (bool, error) {
	return oenv.obj.HasProperty(objmodel.StringKey(name))
}

func (oenv ObjectEnv) getBinding(name string) (objmodel.Value, error) {
	return oenv.obj.Get(objmodel.StringKey(name), oenv.obj)
}

func (oenv ObjectEnv) setBinding(name string, value objmodel.Value, strict bool) error {
	r := oenv.obj.Realm()
	key := objmodel.StringKey(name)
	if strict {
		// the binding may have been deleted since it was resolved
		found, err := oenv.obj.HasProperty(key)
		if err != nil {
			return err
		}
		if !found {
			return r.ThrowReferenceError("assignment to undeclared variable %s", name)
		}
	}
	return r.Set(oenv.obj, key, value, strict)
}

func (oenv ObjectEnv) createBinding(name string, value objmodel.Value, deletable bool) error {
	r := oenv.obj.Realm()
	key := objmodel.StringKey(name)
	existing, err := oenv.obj.GetOwnProperty(key)
	if err != nil || existing != nil {
		return err
	}
	return r.DefinePropertyOrThrow(oenv.obj, key, objmodel.DataDescriptor(value, true, true, deletable))
}

func (oenv ObjectEnv) deleteBinding(name string) (bool, error) {
	return oenv.obj.Delete(objmodel.StringKey(name))
}
