package interp

import (
	"fmt"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"
	"github.com/sirupsen/logrus"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

type functionKind uint8

const (
	functionOrdinary functionKind = iota
	// getters and setters are not constructors and have no prototype
	functionAccessor
)

// functionCode is what a script function closes over.
type functionCode struct {
	literal *ast.FunctionLiteral
	name    string
	params  []string
	strict  bool
	scope   *Scope
	file    *parserFile.File
}

func (vm *VM) makeFunction(lit *ast.FunctionLiteral, name string, scope *Scope, kind functionKind) *objmodel.Object {
	code := &functionCode{
		literal: lit,
		name:    name,
		strict:  scope.strict,
		scope:   scope,
		file:    vm.synCtx.currentFile(),
	}
	if block, isBlock := lit.Body.(*ast.BlockStatement); isBlock && hasUseStrict(block.List) {
		code.strict = true
	}
	if lit.ParameterList != nil {
		for _, param := range lit.ParameterList.List {
			code.params = append(code.params, param.Name)
		}
	}

	opts := objmodel.FunctionOptions{
		Name:   name,
		Length: len(code.params),
		Source: lit.Source,
	}
	if kind == functionOrdinary {
		opts.Constructor = objmodel.ConstructorBase
		opts.WithPrototype = true
	}

	var fn *objmodel.Object
	fn = vm.realm.NewFunction(func(r *objmodel.Realm, this objmodel.Value, args []objmodel.Value, flags objmodel.CallFlags) (objmodel.Value, error) {
		return vm.callFunction(code, fn, this, args)
	}, opts)
	return fn
}

// functionExpression creates the closure for a function literal evaluated as
// an expression. A named literal can refer to itself by name.
func (vm *VM) functionExpression(lit *ast.FunctionLiteral, name string) *objmodel.Object {
	if lit.Name == nil {
		return vm.makeFunction(lit, name, vm.curScope, functionOrdinary)
	}

	env := newDirectEnv(vm.realm)
	scope := newScope(vm.curScope, env)
	fn := vm.makeFunction(lit, lit.Name.Name, scope, functionOrdinary)
	env.defineImmutable(lit.Name.Name, fn)
	return fn
}

func (vm *VM) callFunction(code *functionCode, callee *objmodel.Object, this objmodel.Value, args []objmodel.Value) (objmodel.Value, error) {
	r := vm.realm

	if !code.strict {
		if objmodel.IsNullish(this) {
			this = vm.Global()
		} else {
			obj, err := r.ToObject(this)
			if err != nil {
				return nil, err
			}
			this = obj
		}
	}

	env := newDirectEnv(r)
	scope := newScope(code.scope, env)
	scope.strict = code.strict
	scope.call = &ScopeCall{this: this, callee: callee}

	for i, name := range code.params {
		var value objmodel.Value = r.Undefined()
		if i < len(args) {
			value = args[i]
		}
		env.overwrite(name, value)
	}
	// a parameter named arguments shadows the object
	if err := env.createBinding("arguments", r.CreateUnmappedArgumentsObject(args), false); err != nil {
		return nil, err
	}

	if code.file != nil {
		vm.synCtx.PushFile(code.file)
		defer vm.synCtx.PopFile(code.file)
	}

	saved := vm.curScope
	vm.curScope = scope
	defer func() { vm.curScope = saved }()

	if vm.log != nil {
		fields := logrus.Fields{"callee": code.name, "depth": r.CallDepth()}
		if code.file != nil {
			if pos := code.file.Position(code.literal.Idx0()); pos != nil {
				fields["file"] = pos.Filename
				fields["line"] = pos.Line
			}
		}
		vm.log.WithFields(fields).Debug("call")
	}

	if err := vm.hoistDeclarations(code.literal.DeclarationList); err != nil {
		return nil, err
	}

	c, err := vm.runStmt(code.literal.Body)
	if err != nil {
		return nil, err
	}
	switch c.Type {
	case objmodel.Return:
		return c.Value, nil
	case objmodel.Normal:
		return r.Undefined(), nil
	default:
		panic(fmt.Sprintf("bug: %s completion escaped function %s", c.Type, code.name))
	}
}

// hoistDeclarations creates the var and function bindings of the current
// function or program before its body runs.
func (vm *VM) hoistDeclarations(decls []ast.Declaration) error {
	r := vm.realm
	scope := vm.curScope.varScope()

	for _, decl := range decls {
		switch decl := decl.(type) {
		case *ast.VariableDeclaration:
			for _, item := range decl.List {
				if err := scope.env.createBinding(item.Name, r.Undefined(), false); err != nil {
					return err
				}
			}

		case *ast.FunctionDeclaration:
			lit := decl.Function
			name := lit.Name.Name
			fn := vm.makeFunction(lit, name, vm.curScope, functionOrdinary)

			switch env := scope.env.(type) {
			case *DirectEnv:
				env.overwrite(name, fn)
			case ObjectEnv:
				if err := vm.defineGlobalFunction(env.obj, name, fn); err != nil {
					return err
				}
			default:
				panic(fmt.Sprintf("bug: unexpected environment type %T", env))
			}

		default:
			panic(fmt.Sprintf("bug: unexpected declaration type %T", decl))
		}
	}
	return nil
}

func (vm *VM) defineGlobalFunction(global *objmodel.Object, name string, fn *objmodel.Object) error {
	r := vm.realm
	key := objmodel.StringKey(name)
	existing, err := global.GetOwnProperty(key)
	if err != nil {
		return err
	}
	if existing == nil || existing.Configurable == objmodel.FlagTrue {
		return r.DefinePropertyOrThrow(global, key, objmodel.DataDescriptor(fn, true, true, false))
	}
	return r.Set(global, key, fn, true)
}

// compileFunction backs the Function constructor: the parameters and body
// are parsed as a function expression in the global scope.
func (vm *VM) compileFunction(params []string, body string) (*objmodel.Object, error) {
	r := vm.realm
	src := fmt.Sprintf("(function anonymous(%s\n) {\n%s\n})", strings.Join(params, ","), body)

	program, err := ParseReader("<Function>", strings.NewReader(src), false)
	if err != nil {
		return nil, r.ThrowSyntaxError("%s", err.Error())
	}

	var lit *ast.FunctionLiteral
	if len(program.Body) == 1 {
		if stmt, isExpr := program.Body[0].(*ast.ExpressionStatement); isExpr {
			lit, _ = stmt.Expression.(*ast.FunctionLiteral)
		}
	}
	if lit == nil {
		// the body closed the wrapper early
		return nil, r.ThrowSyntaxError("invalid function body")
	}

	vm.synCtx.PushFile(program.File)
	defer vm.synCtx.PopFile(program.File)
	return vm.makeFunction(lit, "anonymous", vm.global, functionOrdinary), nil
}
