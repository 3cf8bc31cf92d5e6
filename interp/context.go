package interp

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robertkrimen/otto/ast"
	parserFile "github.com/robertkrimen/otto/file"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

// ProgramContext tracks the syntactic nodes being evaluated, so that an
// uncaught exception can be reported with the positions that led to it.
type ProgramContext struct {
	fileStack []*parserFile.File
	stack     []ContextItem
}

type ContextItem struct {
	file       *parserFile.File
	start, end parserFile.Position
	node       ast.Node
}

func (item ContextItem) String() string {
	s := &item.start
	return fmt.Sprintf("%s:%d:%d %s", s.Filename, s.Line, s.Column, reflect.TypeOf(item.node).String())
}

func (pctx *ProgramContext) PushFile(file *parserFile.File) {
	pctx.fileStack = append(pctx.fileStack, file)
}

func (pctx *ProgramContext) PopFile(check *parserFile.File) {
	sl := len(pctx.fileStack)
	if sl == 0 {
		panic("bug: ProgramContext: PopFile called on empty stack")
	}
	if pctx.fileStack[sl-1] != check {
		panic("bug: ProgramContext: stack was not managed purely with PushFile/PopFile")
	}
	pctx.fileStack = pctx.fileStack[:sl-1]
}

func (pctx *ProgramContext) currentFile() *parserFile.File {
	if len(pctx.fileStack) == 0 {
		return nil
	}
	return pctx.fileStack[len(pctx.fileStack)-1]
}

func (pctx *ProgramContext) Push(node ast.Node) {
	if node == nil {
		return
	}

	file := pctx.currentFile()
	if file == nil {
		panic("bug: ProgramContext: Push called without calling PushFile() first")
	}

	item := ContextItem{
		file: file,
		node: node,
	}
	if startp := file.Position(node.Idx0()); startp != nil {
		item.start = *startp
	}
	if endp := file.Position(node.Idx1()); endp != nil {
		item.end = *endp
	}
	pctx.stack = append(pctx.stack, item)
}

func (pctx *ProgramContext) Pop(nodeCheck ast.Node) {
	if nodeCheck == nil {
		return
	}

	sl := len(pctx.stack)
	if sl == 0 {
		panic("bug: ProgramContext.Pop but stack already empty")
	}
	if nodeCheck != pctx.stack[sl-1].node {
		panic("bug: nodeCheck != stack top")
	}
	pctx.stack = pctx.stack[:sl-1]
}

// Top is the innermost node being evaluated.
func (pctx *ProgramContext) Top() (ContextItem, bool) {
	if len(pctx.stack) == 0 {
		return ContextItem{}, false
	}
	return pctx.stack[len(pctx.stack)-1], true
}

func (pctx *ProgramContext) snapshot() []ContextItem {
	return append([]ContextItem(nil), pctx.stack...)
}

// ScriptError is an exception that no script code caught. It unwraps to the
// throw completion, so objmodel.ThrownValue works on it.
type ScriptError struct {
	completion *objmodel.Completion
	Message    string
	Context    []ContextItem
}

func (serr *ScriptError) Value() objmodel.Value {
	return serr.completion.Value
}

func (serr *ScriptError) Unwrap() error {
	return serr.completion
}

func (serr *ScriptError) Error() string {
	lines := make([]string, 1+len(serr.Context))
	lines[0] = "JS exception: " + serr.Message
	for i, item := range serr.Context {
		lines[1+i] = " JS @ " + item.String()
	}
	return strings.Join(lines, "\n")
}

// exceptionMessage renders a thrown value for a report. Errors are read
// through [[Get]], so inherited name and message count.
func exceptionMessage(r *objmodel.Realm, v objmodel.Value) string {
	obj, isObj := v.(*objmodel.Object)
	if !isObj {
		s, err := r.ToString(v)
		if err != nil {
			return fmt.Sprintf("(%s)", objmodel.TypeOf(v))
		}
		return s
	}

	read := func(name string) string {
		value, err := obj.Get(objmodel.StringKey(name), obj)
		if err != nil {
			return ""
		}
		if s, isStr := value.(objmodel.String); isStr {
			return s.String()
		}
		return ""
	}
	name := read("name")
	msg := read("message")
	switch {
	case name != "" && msg != "":
		return name + ": " + msg
	case msg != "":
		return msg
	case name != "":
		return name
	}
	return "[object " + obj.Class() + "]"
}
