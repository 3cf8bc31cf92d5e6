package interp

import (
	"fmt"
	"slices"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

var normalEmpty = objmodel.NormalCompletion(nil)

// runStmts evaluates a statement list. The value of the list is the value
// of the last statement that produced one, also when the list completes
// abruptly.
func (vm *VM) runStmts(stmts []ast.Statement) (objmodel.Completion, error) {
	var last objmodel.Value
	for _, stmt := range stmts {
		c, err := vm.runStmt(stmt)
		if err != nil {
			return normalEmpty, err
		}
		if c.IsAbrupt() {
			return c.UpdateEmpty(last), nil
		}
		if c.Value != nil {
			last = c.Value
		}
	}
	return objmodel.NormalCompletion(last), nil
}

// runStmt evaluates one statement. Break, continue and return completions
// are returned as values; throws are returned as errors.
func (vm *VM) runStmt(stmt ast.Statement) (c objmodel.Completion, err error) {
	if stmt == nil {
		return normalEmpty, nil
	}

	vm.synCtx.Push(stmt)
	defer vm.synCtx.Pop(stmt)
	defer func() {
		if err != nil {
			vm.noteThrow(err)
		}
	}()

	r := vm.realm
	switch stmt := stmt.(type) {
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return normalEmpty, nil

	case *ast.FunctionStatement:
		// hoisted with the enclosing function or program
		return normalEmpty, nil

	case *ast.BlockStatement:
		return vm.runStmts(stmt.List)

	case *ast.ExpressionStatement:
		value, err := vm.evalExpr(stmt.Expression)
		if err != nil {
			return normalEmpty, err
		}
		return objmodel.NormalCompletion(value), nil

	case *ast.VariableStatement:
		for _, item := range stmt.List {
			if _, err := vm.evalExpr(item); err != nil {
				return normalEmpty, err
			}
		}
		return normalEmpty, nil

	case *ast.IfStatement:
		test, err := vm.evalCondition(stmt.Test)
		if err != nil {
			return normalEmpty, err
		}
		var branch objmodel.Completion
		if test {
			branch, err = vm.runStmt(stmt.Consequent)
		} else {
			branch, err = vm.runStmt(stmt.Alternate)
		}
		if err != nil {
			return normalEmpty, err
		}
		return branch.UpdateEmpty(r.Undefined()), nil

	case *ast.ReturnStatement:
		var value objmodel.Value = r.Undefined()
		if stmt.Argument != nil {
			value, err = vm.evalExpr(stmt.Argument)
			if err != nil {
				return normalEmpty, err
			}
		}
		return objmodel.NewCompletion(objmodel.Return, value, ""), nil

	case *ast.ThrowStatement:
		value, err := vm.evalExpr(stmt.Argument)
		if err != nil {
			return normalEmpty, err
		}
		return normalEmpty, objmodel.ThrowCompletion(value)

	case *ast.BranchStatement:
		label := ""
		if stmt.Label != nil {
			label = stmt.Label.Name
		}
		switch stmt.Token {
		case token.BREAK:
			return objmodel.NewCompletion(objmodel.Break, nil, label), nil
		case token.CONTINUE:
			return objmodel.NewCompletion(objmodel.Continue, nil, label), nil
		default:
			return normalEmpty, fmt.Errorf("unsupported branch statement: %s", stmt.Token)
		}

	case *ast.TryStatement:
		return vm.runTry(stmt)

	case *ast.LabelledStatement:
		return vm.runLabelled(stmt, nil)

	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement, *ast.ForInStatement, *ast.SwitchStatement:
		return vm.runBreakable(stmt, nil)

	case *ast.WithStatement:
		value, err := vm.evalExpr(stmt.Object)
		if err != nil {
			return normalEmpty, err
		}
		obj, err := r.ToObject(value)
		if err != nil {
			return normalEmpty, err
		}
		save := vm.curScope
		vm.curScope = newScope(save, ObjectEnv{obj})
		defer func() { vm.curScope = save }()
		body, err := vm.runStmt(stmt.Body)
		if err != nil {
			return normalEmpty, err
		}
		return body.UpdateEmpty(r.Undefined()), nil

	default:
		return normalEmpty, r.ThrowSyntaxError("unsupported statement: %T", stmt)
	}
}

// runLabelled collects the labels of nested labelled statements so that
// the loop they label can consume a matching continue.
func (vm *VM) runLabelled(stmt *ast.LabelledStatement, labels []string) (objmodel.Completion, error) {
	label := stmt.Label.Name
	labels = append(labels, label)

	var c objmodel.Completion
	var err error
	switch inner := stmt.Statement.(type) {
	case *ast.LabelledStatement:
		vm.synCtx.Push(inner)
		c, err = vm.runLabelled(inner, labels)
		vm.synCtx.Pop(inner)
	case *ast.WhileStatement, *ast.DoWhileStatement, *ast.ForStatement, *ast.ForInStatement, *ast.SwitchStatement:
		vm.synCtx.Push(inner)
		c, err = vm.runBreakable(inner, labels)
		vm.synCtx.Pop(inner)
	default:
		c, err = vm.runStmt(inner)
	}
	if err != nil {
		return normalEmpty, err
	}

	if c.Type == objmodel.Break && c.Target == label {
		return objmodel.NormalCompletion(c.Value), nil
	}
	return c, nil
}

// runBreakable evaluates a loop or switch; an unlabeled break ends it.
func (vm *VM) runBreakable(stmt ast.Statement, labels []string) (objmodel.Completion, error) {
	var c objmodel.Completion
	var err error
	switch stmt := stmt.(type) {
	case *ast.WhileStatement:
		c, err = vm.runWhile(stmt, labels)
	case *ast.DoWhileStatement:
		c, err = vm.runDoWhile(stmt, labels)
	case *ast.ForStatement:
		c, err = vm.runFor(stmt, labels)
	case *ast.ForInStatement:
		c, err = vm.runForIn(stmt, labels)
	case *ast.SwitchStatement:
		c, err = vm.runSwitch(stmt)
	default:
		panic(fmt.Sprintf("bug: runBreakable on %T", stmt))
	}
	if err != nil {
		return normalEmpty, err
	}

	if c.Type == objmodel.Break && c.Target == "" {
		value := c.Value
		if value == nil {
			value = vm.realm.Undefined()
		}
		return objmodel.NormalCompletion(value), nil
	}
	return c, nil
}

// loopContinues reports whether a loop goes on after its body completed
// with c.
func loopContinues(c objmodel.Completion, labels []string) bool {
	switch {
	case c.Type == objmodel.Normal:
		return true
	case c.Type != objmodel.Continue:
		return false
	case c.Target == "":
		return true
	default:
		return slices.Contains(labels, c.Target)
	}
}

// loopBody runs one iteration. stop is set when the loop must end with c.
func (vm *VM) loopBody(body ast.Statement, labels []string, last *objmodel.Value) (c objmodel.Completion, stop bool, err error) {
	c, err = vm.runStmt(body)
	if err != nil {
		return normalEmpty, true, err
	}
	if c.Value != nil {
		*last = c.Value
	}
	if !loopContinues(c, labels) {
		return c.UpdateEmpty(*last), true, nil
	}
	return c, false, nil
}

func (vm *VM) loopResult(last objmodel.Value) objmodel.Completion {
	if last == nil {
		last = vm.realm.Undefined()
	}
	return objmodel.NormalCompletion(last)
}

func (vm *VM) runWhile(stmt *ast.WhileStatement, labels []string) (objmodel.Completion, error) {
	var last objmodel.Value
	for {
		test, err := vm.evalCondition(stmt.Test)
		if err != nil {
			return normalEmpty, err
		}
		if !test {
			return vm.loopResult(last), nil
		}
		c, stop, err := vm.loopBody(stmt.Body, labels, &last)
		if stop {
			return c, err
		}
	}
}

func (vm *VM) runDoWhile(stmt *ast.DoWhileStatement, labels []string) (objmodel.Completion, error) {
	var last objmodel.Value
	for {
		c, stop, err := vm.loopBody(stmt.Body, labels, &last)
		if stop {
			return c, err
		}
		test, err := vm.evalCondition(stmt.Test)
		if err != nil {
			return normalEmpty, err
		}
		if !test {
			return vm.loopResult(last), nil
		}
	}
}

func (vm *VM) runFor(stmt *ast.ForStatement, labels []string) (objmodel.Completion, error) {
	if stmt.Initializer != nil {
		if _, err := vm.evalExpr(stmt.Initializer); err != nil {
			return normalEmpty, err
		}
	}

	var last objmodel.Value
	for {
		if stmt.Test != nil {
			test, err := vm.evalCondition(stmt.Test)
			if err != nil {
				return normalEmpty, err
			}
			if !test {
				return vm.loopResult(last), nil
			}
		}
		c, stop, err := vm.loopBody(stmt.Body, labels, &last)
		if stop {
			return c, err
		}
		if stmt.Update != nil {
			if _, err := vm.evalExpr(stmt.Update); err != nil {
				return normalEmpty, err
			}
		}
	}
}

func (vm *VM) runForIn(stmt *ast.ForInStatement, labels []string) (objmodel.Completion, error) {
	r := vm.realm

	target := stmt.Into
	if decl, isDecl := target.(*ast.VariableExpression); isDecl {
		if _, err := vm.evalExpr(decl); err != nil {
			return normalEmpty, err
		}
		target = &ast.Identifier{Name: decl.Name, Idx: decl.Idx}
	}

	source, err := vm.evalExpr(stmt.Source)
	if err != nil {
		return normalEmpty, err
	}
	if objmodel.IsNullish(source) {
		return vm.loopResult(nil), nil
	}
	obj, err := r.ToObject(source)
	if err != nil {
		return normalEmpty, err
	}

	var last objmodel.Value
	visited := make(map[string]struct{})
	for cur := obj; cur != nil; {
		keys, err := cur.OwnPropertyKeys()
		if err != nil {
			return normalEmpty, err
		}
		for _, key := range keys {
			if key.IsSymbol() {
				continue
			}
			name := key.Name()
			if _, seen := visited[name]; seen {
				continue
			}
			visited[name] = struct{}{}

			// properties deleted during the walk are skipped
			desc, err := cur.GetOwnProperty(key)
			if err != nil {
				return normalEmpty, err
			}
			if desc == nil || !desc.Enumerable.Bool() {
				continue
			}

			ref, err := vm.evalRef(target)
			if err != nil {
				return normalEmpty, err
			}
			if err := vm.putValue(ref, objmodel.NewString(name)); err != nil {
				return normalEmpty, err
			}

			c, stop, err := vm.loopBody(stmt.Body, labels, &last)
			if stop {
				return c, err
			}
		}

		cur, err = cur.GetPrototypeOf()
		if err != nil {
			return normalEmpty, err
		}
	}
	return vm.loopResult(last), nil
}

func (vm *VM) runSwitch(stmt *ast.SwitchStatement) (objmodel.Completion, error) {
	disc, err := vm.evalExpr(stmt.Discriminant)
	if err != nil {
		return normalEmpty, err
	}

	start := -1
	for i, clause := range stmt.Body {
		if clause.Test == nil {
			continue
		}
		test, err := vm.evalExpr(clause.Test)
		if err != nil {
			return normalEmpty, err
		}
		if objmodel.IsStrictlyEqual(disc, test) {
			start = i
			break
		}
	}
	if start == -1 {
		start = stmt.Default
	}
	if start == -1 {
		return vm.loopResult(nil), nil
	}

	var last objmodel.Value
	for _, clause := range stmt.Body[start:] {
		c, err := vm.runStmts(clause.Consequent)
		if err != nil {
			return normalEmpty, err
		}
		if c.Value != nil {
			last = c.Value
		}
		if c.IsAbrupt() {
			return c.UpdateEmpty(last), nil
		}
	}
	return vm.loopResult(last), nil
}

// runTry evaluates try/catch/finally. Only script exceptions can be
// caught; host errors abort the evaluation.
func (vm *VM) runTry(stmt *ast.TryStatement) (objmodel.Completion, error) {
	r := vm.realm

	c, err := vm.runStmt(stmt.Body)
	if thrown, isThrow := objmodel.ThrownValue(err); isThrow && stmt.Catch != nil {
		vm.throwCtx = nil
		c, err = vm.runCatch(stmt.Catch, thrown)
	}
	if err != nil {
		if _, isThrow := objmodel.ThrownValue(err); !isThrow {
			return normalEmpty, err
		}
	}

	if stmt.Finally != nil {
		pendingCtx := vm.throwCtx
		vm.throwCtx = nil
		f, ferr := vm.runStmt(stmt.Finally)
		if ferr != nil {
			return normalEmpty, ferr
		}
		if f.IsAbrupt() {
			// the finally block overrides whatever was pending
			vm.throwCtx = nil
			return f, nil
		}
		vm.throwCtx = pendingCtx
	}

	if err != nil {
		return normalEmpty, err
	}
	return c.UpdateEmpty(r.Undefined()), nil
}

func (vm *VM) runCatch(catch *ast.CatchStatement, thrown objmodel.Value) (objmodel.Completion, error) {
	vm.synCtx.Push(catch)
	defer vm.synCtx.Pop(catch)

	env := newDirectEnv(vm.realm)
	env.overwrite(catch.Parameter.Name, thrown)

	save := vm.curScope
	vm.curScope = newScope(save, env)
	defer func() { vm.curScope = save }()
	return vm.runStmt(catch.Body)
}

// evalCondition evaluates an expression and converts it with ToBoolean.
func (vm *VM) evalCondition(expr ast.Expression) (bool, error) {
	value, err := vm.evalExpr(expr)
	if err != nil {
		return false, err
	}
	return vm.realm.ToBoolean(value)
}
