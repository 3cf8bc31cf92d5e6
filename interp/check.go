package interp

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"
	"github.com/robertkrimen/otto/token"
)

// fixAndCheck reports the early errors the parser lets through, mostly the
// strict mode restrictions.
func fixAndCheck(file *parserFile.File, node ast.Node, forceStrict bool) error {
	chk := &checker{
		file:        file,
		forceStrict: forceStrict,
	}
	ast.Walk(chk, node)
	if len(chk.errs) > 0 {
		return multiSyntaxErrors(chk.errs)
	}
	return nil
}

type checker struct {
	file        *parserFile.File
	forceStrict bool
	errs        []error
	ctx         []checkerContext
}

type checkerContext struct {
	node      ast.Node
	setStrict bool
}

type multiSyntaxErrors []error

func (mserr multiSyntaxErrors) Error() string {
	switch len(mserr) {
	case 0:
		return "no syntax errors"
	case 1:
		return mserr[0].Error()
	default:
		lines := make([]string, 1+len(mserr))
		lines[0] = fmt.Sprintf("%d syntax errors:", len(mserr))
		for i, err := range mserr {
			lines[1+i] = fmt.Sprintf("%3d. %s", i+1, err.Error())
		}
		return strings.Join(lines, "\n")
	}
}

func (c *checker) setStrict() {
	for i := len(c.ctx) - 1; i >= 0; i-- {
		ctx := &c.ctx[i]
		_, isFuncLit := ctx.node.(*ast.FunctionLiteral)
		_, isProgram := ctx.node.(*ast.Program)
		if isFuncLit || isProgram {
			ctx.setStrict = true
			return
		}
	}
}

func (c *checker) isStrictHere() bool {
	if c.forceStrict {
		return true
	}
	for i := len(c.ctx) - 1; i >= 0; i-- {
		if c.ctx[i].setStrict {
			return true
		}
	}
	return false
}

func (c *checker) emitErr(msg string) {
	node := c.ctx[len(c.ctx)-1].node
	var err error
	if c.file == nil {
		err = fmt.Errorf("?:?: %s", msg)
	} else {
		err = fmt.Errorf("%s: %s", c.file.Position(node.Idx0()), msg)
	}
	c.errs = append(c.errs, err)
}

func (c *checker) Enter(node ast.Node) ast.Visitor {
	c.ctx = append(c.ctx, checkerContext{node: node})

	switch node := node.(type) {
	case *ast.Program:
		// program.Idx0() panics on an empty body
		if len(node.Body) == 0 {
			node.Body = []ast.Statement{&ast.EmptyStatement{}}
		}
		if hasUseStrict(node.Body) {
			c.setStrict()
		}

	case *ast.FunctionLiteral:
		if block, isBlock := node.Body.(*ast.BlockStatement); isBlock && hasUseStrict(block.List) {
			c.setStrict()
		}
		if c.isStrictHere() && node.ParameterList != nil {
			seen := make(map[string]struct{}, len(node.ParameterList.List))
			for _, param := range node.ParameterList.List {
				if _, dup := seen[param.Name]; dup {
					c.emitErr("duplicate parameter name not allowed in strict mode: " + param.Name)
				}
				seen[param.Name] = struct{}{}
				c.checkBindingName(param.Name)
			}
		}
		if c.isStrictHere() && node.Name != nil {
			c.checkBindingName(node.Name.Name)
		}

	case *ast.VariableExpression:
		if c.isStrictHere() {
			c.checkBindingName(node.Name)
		}

	case *ast.CatchStatement:
		if c.isStrictHere() && node.Parameter != nil {
			c.checkBindingName(node.Parameter.Name)
		}

	case *ast.WithStatement:
		if c.isStrictHere() {
			c.emitErr("with statement can't appear in strict mode")
		}

	case *ast.UnaryExpression:
		if _, isIdent := node.Operand.(*ast.Identifier); isIdent && c.isStrictHere() && node.Operator == token.DELETE {
			c.emitErr("delete of an unqualified identifier in strict mode")
		}

	case *ast.AssignExpression:
		if ident, isIdent := node.Left.(*ast.Identifier); isIdent && c.isStrictHere() {
			c.checkBindingName(ident.Name)
		}

	case *ast.ForStatement:
		c.forbidFuncDecl(node.Body)
	case *ast.ForInStatement:
		c.forbidFuncDecl(node.Body)
	case *ast.WhileStatement:
		c.forbidFuncDecl(node.Body)
	case *ast.DoWhileStatement:
		c.forbidFuncDecl(node.Body)
	}

	return c
}

func (c *checker) checkBindingName(name string) {
	switch {
	case name == "eval" || name == "arguments":
		c.emitErr(fmt.Sprintf("%s can't be bound in strict mode", name))
	case isStrictReservedKw(name):
		c.emitErr(fmt.Sprintf("variable can't be named %s in strict mode (it's a reserved keyword)", name))
	}
}

func (c *checker) forbidFuncDecl(node ast.Node) {
	_, isFnDecl := node.(*ast.FunctionLiteral)
	_, isFnStmt := node.(*ast.FunctionStatement)
	if isFnDecl || isFnStmt {
		c.emitErr("function declaration cannot appear in statement position")
	}
}

var strictReservedKw = []string{
	"implements",
	"let",
	"private",
	"public",
	"interface",
	"package",
	"protected",
	"static",
	"yield",
}

// Returns true iff the given string corresponds to a keyword that is reserved in strict mode only.
func isStrictReservedKw(s string) bool {
	return slices.Contains(strictReservedKw, s)
}

func (c *checker) Exit(node ast.Node) {
	if c.ctx[len(c.ctx)-1].node != node {
		panic("bug: fixAndCheck: inconsistent context")
	}
	c.ctx = c.ctx[:len(c.ctx)-1]
}

func hasUseStrict(body []ast.Statement) bool {
	for _, stmt := range body {
		es, isES := stmt.(*ast.ExpressionStatement)
		if !isES {
			return false
		}
		lit, isLiteral := es.Expression.(*ast.StringLiteral)
		if !isLiteral {
			return false
		}
		// the directive must not contain escapes
		if lit.Literal == `"use strict"` || lit.Literal == `'use strict'` {
			return true
		}
	}
	return false
}
