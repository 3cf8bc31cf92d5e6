package interp

import (
	"fmt"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

// reference is the result of evaluating an assignment target: either a
// binding name or a property of a base value.
type reference struct {
	name  string
	scope *Scope // nil when the name is unresolvable

	isProperty bool
	base       objmodel.Value
	key        objmodel.PropertyKey

	strict bool
}

func (vm *VM) evalRef(expr ast.Expression) (ref reference, err error) {
	ref.strict = vm.curScope.strict

	switch expr := expr.(type) {
	case *ast.Identifier:
		ref.name = expr.Name
		ref.scope, err = vm.curScope.resolve(expr.Name)
		return

	case *ast.DotExpression:
		ref.isProperty = true
		ref.base, err = vm.evalExpr(expr.Left)
		ref.key = objmodel.StringKey(expr.Identifier.Name)
		return

	case *ast.BracketExpression:
		ref.isProperty = true
		ref.base, err = vm.evalExpr(expr.Left)
		if err != nil {
			return
		}
		var member objmodel.Value
		member, err = vm.evalExpr(expr.Member)
		if err != nil {
			return
		}
		if objmodel.IsNullish(ref.base) {
			err = vm.realm.ThrowTypeError("cannot access a property of %s", objmodel.TypeOf(ref.base))
			return
		}
		ref.key, err = vm.realm.ToPropertyKey(member)
		return

	default:
		err = vm.realm.ThrowReferenceError("invalid assignment target")
		return
	}
}

func (vm *VM) getValue(ref reference) (objmodel.Value, error) {
	r := vm.realm
	if ref.isProperty {
		if objmodel.IsNullish(ref.base) {
			return nil, r.ThrowTypeError("cannot read property '%s' of %s", ref.key, nullishName(ref.base))
		}
		return r.GetV(ref.base, ref.key)
	}
	if ref.scope == nil {
		return nil, r.ThrowReferenceError("%s is not defined", ref.name)
	}
	return ref.scope.env.getBinding(ref.name)
}

func (vm *VM) putValue(ref reference, value objmodel.Value) error {
	r := vm.realm
	if ref.isProperty {
		if objmodel.IsNullish(ref.base) {
			return r.ThrowTypeError("cannot set property '%s' of %s", ref.key, nullishName(ref.base))
		}
		obj, err := r.ToObject(ref.base)
		if err != nil {
			return err
		}
		ok, err := obj.Set(ref.key, value, ref.base)
		if err != nil {
			return err
		}
		if !ok && ref.strict {
			return r.ThrowTypeError("cannot assign to read only property '%s'", ref.key)
		}
		return nil
	}

	if ref.scope == nil {
		if ref.strict {
			return r.ThrowReferenceError("%s is not defined", ref.name)
		}
		return r.Set(vm.Global(), objmodel.StringKey(ref.name), value, false)
	}
	return ref.scope.env.setBinding(ref.name, value, ref.strict)
}

// refThis is the this value of a call through ref.
func (vm *VM) refThis(ref reference) objmodel.Value {
	if ref.isProperty {
		return ref.base
	}
	if ref.scope != nil {
		// a binding found on a with object
		if oenv, isObjEnv := ref.scope.env.(ObjectEnv); isObjEnv && !oenv.obj.Is(vm.Global()) {
			return oenv.obj
		}
	}
	return vm.realm.Undefined()
}

func nullishName(v objmodel.Value) string {
	if objmodel.IsNull(v) {
		return "null"
	}
	return "undefined"
}

func (vm *VM) evalExpr(expr ast.Expression) (value objmodel.Value, err error) {
	vm.synCtx.Push(expr)
	defer vm.synCtx.Pop(expr)
	defer func() {
		if err != nil {
			vm.noteThrow(err)
		}
	}()

	r := vm.realm
	switch expr := expr.(type) {
	case *ast.AssignExpression:
		return vm.evalAssign(expr)

	case *ast.FunctionLiteral:
		name := ""
		if expr.Name != nil {
			name = expr.Name.Name
		}
		return vm.functionExpression(expr, name), nil

	case *ast.ObjectLiteral:
		return vm.evalObjectLiteral(expr)

	case *ast.ArrayLiteral:
		arr := r.ArrayCreate(0, nil)
		for i, item := range expr.Value {
			if _, isHole := item.(*ast.EmptyExpression); isHole {
				continue
			}
			value, err := vm.evalExpr(item)
			if err != nil {
				return nil, err
			}
			if err := r.CreateDataPropertyOrThrow(arr, objmodel.IndexKey(uint32(i)), value); err != nil {
				return nil, err
			}
		}
		// trailing holes still count
		if err := r.Set(arr, objmodel.StringKey("length"), objmodel.NewNumber(float64(len(expr.Value))), true); err != nil {
			return nil, err
		}
		return arr, nil

	case *ast.BinaryExpression:
		switch expr.Operator {
		case token.LOGICAL_AND, token.LOGICAL_OR:
			left, err := vm.evalExpr(expr.Left)
			if err != nil {
				return nil, err
			}
			truthy, err := r.ToBoolean(left)
			if err != nil {
				return nil, err
			}
			// the operand itself is the result, not its boolean value
			if truthy == (expr.Operator == token.LOGICAL_OR) {
				return left, nil
			}
			return vm.evalExpr(expr.Right)
		}

		left, err := vm.evalExpr(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := vm.evalExpr(expr.Right)
		if err != nil {
			return nil, err
		}
		return vm.binaryOp(expr.Operator, left, right)

	case *ast.DotExpression, *ast.BracketExpression, *ast.Identifier:
		ref, err := vm.evalRef(expr)
		if err != nil {
			return nil, err
		}
		return vm.getValue(ref)

	case *ast.CallExpression:
		return vm.evalCall(expr)

	case *ast.NewExpression:
		cons, err := vm.evalExpr(expr.Callee)
		if err != nil {
			return nil, err
		}
		args, err := vm.evalArgs(expr.ArgumentList)
		if err != nil {
			return nil, err
		}
		if !objmodel.IsConstructor(cons) {
			return nil, r.ThrowTypeError("%s is not a constructor", exprName(expr.Callee))
		}
		obj, err := r.Construct(cons, args, nil)
		if err != nil {
			return nil, err
		}
		return obj, nil

	case *ast.UnaryExpression:
		return vm.evalUnary(expr)

	case *ast.ConditionalExpression:
		test, err := vm.evalCondition(expr.Test)
		if err != nil {
			return nil, err
		}
		if test {
			return vm.evalExpr(expr.Consequent)
		}
		return vm.evalExpr(expr.Alternate)

	case *ast.SequenceExpression:
		value = r.Undefined()
		for _, item := range expr.Sequence {
			value, err = vm.evalExpr(item)
			if err != nil {
				return nil, err
			}
		}
		return value, nil

	case *ast.ThisExpression:
		return vm.thisValue(), nil

	case *ast.VariableExpression:
		// the binding was created when declarations were hoisted
		if expr.Initializer == nil {
			return r.Undefined(), nil
		}
		ref, err := vm.evalRef(&ast.Identifier{Name: expr.Name, Idx: expr.Idx})
		if err != nil {
			return nil, err
		}
		value, err := vm.evalNamed(expr.Initializer, expr.Name)
		if err != nil {
			return nil, err
		}
		return r.Undefined(), vm.putValue(ref, value)

	case *ast.EmptyExpression:
		return r.Undefined(), nil

	case *ast.BooleanLiteral:
		return r.Bool(expr.Value), nil
	case *ast.NullLiteral:
		return r.Null(), nil
	case *ast.NumberLiteral:
		switch num := expr.Value.(type) {
		case float64:
			return objmodel.NewNumber(num), nil
		case int64:
			return objmodel.NewNumber(float64(num)), nil
		default:
			panic(fmt.Sprintf("bug: invalid number literal value: %#v", expr.Value))
		}
	case *ast.StringLiteral:
		return objmodel.NewString(expr.Value), nil

	case *ast.RegExpLiteral:
		return nil, r.ThrowSyntaxError("regular expression literals are not supported: %s", expr.Literal)

	default:
		// includes *ast.BadExpression
		return nil, r.ThrowSyntaxError("unsupported expression node: %T", expr)
	}
}

// evalNamed evaluates expr, naming it after the binding when it is an
// anonymous function.
func (vm *VM) evalNamed(expr ast.Expression, name string) (objmodel.Value, error) {
	if lit, isFunc := expr.(*ast.FunctionLiteral); isFunc && lit.Name == nil {
		vm.synCtx.Push(lit)
		defer vm.synCtx.Pop(lit)
		return vm.functionExpression(lit, name), nil
	}
	return vm.evalExpr(expr)
}

func (vm *VM) evalAssign(expr *ast.AssignExpression) (objmodel.Value, error) {
	ref, err := vm.evalRef(expr.Left)
	if err != nil {
		return nil, err
	}

	var value objmodel.Value
	if expr.Operator == token.ASSIGN {
		name := ""
		if ident, isIdent := expr.Left.(*ast.Identifier); isIdent {
			name = ident.Name
		}
		value, err = vm.evalNamed(expr.Right, name)
		if err != nil {
			return nil, err
		}
	} else {
		prev, err := vm.getValue(ref)
		if err != nil {
			return nil, err
		}
		right, err := vm.evalExpr(expr.Right)
		if err != nil {
			return nil, err
		}
		value, err = vm.binaryOp(expr.Operator, prev, right)
		if err != nil {
			return nil, err
		}
	}

	if err := vm.putValue(ref, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (vm *VM) evalObjectLiteral(expr *ast.ObjectLiteral) (objmodel.Value, error) {
	r := vm.realm
	obj := r.NewObject()
	for _, prop := range expr.Value {
		key := objmodel.StringKey(literalKeyName(prop.Key))

		switch prop.Kind {
		case "value":
			value, err := vm.evalNamed(prop.Value, prop.Key)
			if err != nil {
				return nil, err
			}
			if err := r.CreateDataPropertyOrThrow(obj, key, value); err != nil {
				return nil, err
			}

		case "get", "set":
			lit, isFunc := prop.Value.(*ast.FunctionLiteral)
			if !isFunc {
				return nil, r.ThrowSyntaxError("object literal %s must be a function", prop.Kind)
			}
			fn := vm.makeFunction(lit, prop.Kind+" "+prop.Key, vm.curScope, functionAccessor)
			desc := objmodel.PropertyDescriptor{
				Enumerable:   objmodel.FlagTrue,
				Configurable: objmodel.FlagTrue,
			}
			if prop.Kind == "get" {
				desc.Get = fn
			} else {
				desc.Set = fn
			}
			if err := r.DefinePropertyOrThrow(obj, key, desc); err != nil {
				return nil, err
			}

		default:
			return nil, r.ThrowSyntaxError("unsupported object literal property kind: %s", prop.Kind)
		}
	}
	return obj, nil
}

// literalKeyName canonicalizes numeric keys of object literals: {1.0: x}
// defines "1".
func literalKeyName(key string) string {
	if key == "" || !(key[0] == '.' || ('0' <= key[0] && key[0] <= '9')) {
		return key
	}
	return objmodel.NumberToString(objmodel.StringToNumber(key))
}

func (vm *VM) evalArgs(list []ast.Expression) ([]objmodel.Value, error) {
	args := make([]objmodel.Value, len(list))
	for i, arg := range list {
		value, err := vm.evalExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}
	return args, nil
}

func (vm *VM) evalCall(expr *ast.CallExpression) (objmodel.Value, error) {
	r := vm.realm

	var callee objmodel.Value
	var this objmodel.Value = r.Undefined()
	switch calleeExpr := expr.Callee.(type) {
	case *ast.Identifier, *ast.DotExpression, *ast.BracketExpression:
		ref, err := vm.evalRef(calleeExpr)
		if err != nil {
			return nil, err
		}
		callee, err = vm.getValue(ref)
		if err != nil {
			return nil, err
		}
		this = vm.refThis(ref)
	default:
		var err error
		callee, err = vm.evalExpr(calleeExpr)
		if err != nil {
			return nil, err
		}
	}

	args, err := vm.evalArgs(expr.ArgumentList)
	if err != nil {
		return nil, err
	}
	if !objmodel.IsCallable(callee) {
		return nil, r.ThrowTypeError("%s is not a function", exprName(expr.Callee))
	}
	return r.Call(callee, this, args)
}

func (vm *VM) evalUnary(expr *ast.UnaryExpression) (objmodel.Value, error) {
	r := vm.realm

	switch expr.Operator {
	case token.INCREMENT, token.DECREMENT:
		ref, err := vm.evalRef(expr.Operand)
		if err != nil {
			return nil, err
		}
		prev, err := vm.getValue(ref)
		if err != nil {
			return nil, err
		}
		old, err := r.ToNumeric(prev)
		if err != nil {
			return nil, err
		}
		updated := old + 1
		if expr.Operator == token.DECREMENT {
			updated = old - 1
		}
		if err := vm.putValue(ref, objmodel.NewNumber(updated)); err != nil {
			return nil, err
		}
		if expr.Postfix {
			return objmodel.NewNumber(old), nil
		}
		return objmodel.NewNumber(updated), nil

	case token.DELETE:
		return vm.evalDelete(expr.Operand)

	case token.TYPEOF:
		if ident, isIdent := expr.Operand.(*ast.Identifier); isIdent {
			scope, err := vm.curScope.resolve(ident.Name)
			if err != nil {
				return nil, err
			}
			if scope == nil {
				return objmodel.NewString("undefined"), nil
			}
		}
		value, err := vm.evalExpr(expr.Operand)
		if err != nil {
			return nil, err
		}
		return objmodel.NewString(objmodel.TypeOf(value)), nil

	case token.VOID:
		if _, err := vm.evalExpr(expr.Operand); err != nil {
			return nil, err
		}
		return r.Undefined(), nil
	}

	arg, err := vm.evalExpr(expr.Operand)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case token.NOT:
		truthy, err := r.ToBoolean(arg)
		if err != nil {
			return nil, err
		}
		return r.Bool(!truthy), nil

	case token.PLUS:
		n, err := r.ToNumber(arg)
		if err != nil {
			return nil, err
		}
		return objmodel.NewNumber(n), nil

	case token.MINUS:
		n, err := r.ToNumeric(arg)
		if err != nil {
			return nil, err
		}
		return objmodel.NewNumber(-n), nil

	case token.BITWISE_NOT:
		n, err := r.ToInt32(arg)
		if err != nil {
			return nil, err
		}
		return objmodel.NewNumber(float64(^n)), nil

	default:
		return nil, r.ThrowSyntaxError("unsupported unary operator: %s", expr.Operator)
	}
}

func (vm *VM) evalDelete(operand ast.Expression) (objmodel.Value, error) {
	r := vm.realm

	switch operand := operand.(type) {
	case *ast.Identifier:
		scope, err := vm.curScope.resolve(operand.Name)
		if err != nil {
			return nil, err
		}
		if scope == nil {
			return r.Bool(true), nil
		}
		ok, err := scope.env.deleteBinding(operand.Name)
		return r.Bool(ok), err

	case *ast.DotExpression, *ast.BracketExpression:
		ref, err := vm.evalRef(operand)
		if err != nil {
			return nil, err
		}
		if objmodel.IsNullish(ref.base) {
			return nil, r.ThrowTypeError("cannot delete property '%s' of %s", ref.key, nullishName(ref.base))
		}
		obj, err := r.ToObject(ref.base)
		if err != nil {
			return nil, err
		}
		ok, err := obj.Delete(ref.key)
		if err != nil {
			return nil, err
		}
		if !ok && ref.strict {
			return nil, r.ThrowTypeError("cannot delete property '%s'", ref.key)
		}
		return r.Bool(ok), nil

	default:
		if _, err := vm.evalExpr(operand); err != nil {
			return nil, err
		}
		return r.Bool(true), nil
	}
}

// thisValue is the this binding of the innermost function call; scripts
// see the global object.
func (vm *VM) thisValue() objmodel.Value {
	for s := vm.curScope; s != nil; s = s.parent {
		if s.call != nil {
			return s.call.this
		}
	}
	return vm.Global()
}

// exprName renders a callee for error messages.
func exprName(expr ast.Expression) string {
	switch expr := expr.(type) {
	case *ast.Identifier:
		return expr.Name
	case *ast.DotExpression:
		return exprName(expr.Left) + "." + expr.Identifier.Name
	case *ast.BracketExpression:
		return exprName(expr.Left) + "[...]"
	case *ast.ThisExpression:
		return "this"
	case *ast.FunctionLiteral:
		return "function"
	default:
		return "expression"
	}
}
