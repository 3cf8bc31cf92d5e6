package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/parser"
	"github.com/sirupsen/logrus"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

// VM evaluates scripts against one realm. Scripts run by the same VM share
// the global object. A VM is not safe for concurrent use.
type VM struct {
	realm     *objmodel.Realm
	global    *Scope
	curScope  *Scope
	synCtx    ProgramContext
	strict    bool
	log       logrus.FieldLogger
	output    io.Writer
	realmOpts []objmodel.RealmOption

	// positions of the innermost throw that is still propagating
	throwCtx []ContextItem
}

type Option func(*VM)

// WithRealm runs scripts against an existing realm.
func WithRealm(r *objmodel.Realm) Option {
	return func(vm *VM) { vm.realm = r }
}

// WithRealmOptions configures the realm created by NewVM.
func WithRealmOptions(opts ...objmodel.RealmOption) Option {
	return func(vm *VM) { vm.realmOpts = append(vm.realmOpts, opts...) }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(vm *VM) { vm.log = log }
}

// WithStrict evaluates every script as strict mode code.
func WithStrict(strict bool) Option {
	return func(vm *VM) { vm.strict = strict }
}

// WithOutput sets where the print builtin writes.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.output = w }
}

func NewVM(opts ...Option) *VM {
	vm := &VM{
		log:    logrus.StandardLogger(),
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.realm == nil {
		vm.realm = objmodel.NewRealm(vm.realmOpts...)
	}

	vm.global = newScope(nil, ObjectEnv{vm.realm.GlobalObject()})
	vm.realm.SetFunctionCompiler(vm.compileFunction)
	vm.installHostBuiltins()
	return vm
}

func (vm *VM) Realm() *objmodel.Realm {
	return vm.realm
}

func (vm *VM) Global() *objmodel.Object {
	return vm.realm.GlobalObject()
}

// installHostBuiltins adds the functions a script needs to talk to its
// host: print writes its arguments on a line.
func (vm *VM) installHostBuiltins() {
	r := vm.realm
	printFn := r.NewNativeFunction("print", 1, func(r *objmodel.Realm, this objmodel.Value, args []objmodel.Value, flags objmodel.CallFlags) (objmodel.Value, error) {
		parts := make([]string, len(args))
		for i, arg := range args {
			s, err := r.ToString(arg)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		if _, err := fmt.Fprintln(vm.output, strings.Join(parts, " ")); err != nil {
			return nil, errors.Wrap(err, "print")
		}
		return r.Undefined(), nil
	})
	err := r.DefinePropertyOrThrow(vm.Global(), objmodel.StringKey("print"), objmodel.DataDescriptor(printFn, true, false, true))
	if err != nil {
		panic("bug: could not install print: " + err.Error())
	}
}

func (vm *VM) RunScriptFile(path string) (objmodel.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	return vm.RunScriptReader(path, f)
}

// RunScriptReader parses and runs one script. The result is the completion
// value of the script; an uncaught exception is returned as *ScriptError.
func (vm *VM) RunScriptReader(path string, f io.Reader) (objmodel.Value, error) {
	program, err := ParseReader(path, f, vm.strict)
	if err != nil {
		return nil, err
	}

	vm.synCtx.PushFile(program.File)
	defer vm.synCtx.PopFile(program.File)
	return vm.runProgram(program)
}

// Eval runs source text as a script named "<eval>".
func (vm *VM) Eval(src string) (objmodel.Value, error) {
	return vm.RunScriptReader("<eval>", strings.NewReader(src))
}

// ParseReader parses a script and runs the early error checks.
func ParseReader(path string, f io.Reader, forceStrict bool) (*ast.Program, error) {
	program, err := parser.ParseFile(nil, path, f, 0)
	if err != nil {
		msg := err.Error()
		msg, found := strings.CutPrefix(msg, path)
		if found {
			msg, _ = strings.CutPrefix(msg, ": ")
			_, msg, _ = strings.Cut(msg, " ")
			_, msg, _ = strings.Cut(msg, " ")
		}
		return nil, &SyntaxError{Path: path, Message: msg}
	}

	if err := fixAndCheck(program.File, program, forceStrict); err != nil {
		return nil, &SyntaxError{Path: path, Message: err.Error()}
	}
	return program, nil
}

// SyntaxError is an early error: the script did not run at all.
type SyntaxError struct {
	Path    string
	Message string
}

func (serr *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", serr.Message)
}

func (vm *VM) runProgram(program *ast.Program) (objmodel.Value, error) {
	vm.synCtx.Push(program)
	defer vm.synCtx.Pop(program)

	if vm.curScope != nil {
		panic("bug: nested program!")
	}

	// every script shares the global environment but has its own strictness
	top := &Scope{
		env:    vm.global.env,
		strict: vm.strict || hasUseStrict(program.Body),
	}

	vm.curScope = top
	defer func() { vm.curScope = nil }()

	if err := vm.hoistDeclarations(program.DeclarationList); err != nil {
		return nil, vm.uncaught(err)
	}

	c, err := vm.runStmts(program.Body)
	if err != nil {
		return nil, vm.uncaught(err)
	}
	if c.IsAbrupt() {
		panic(fmt.Sprintf("bug: %s completion escaped the program", c.Type))
	}
	if c.Value == nil {
		return vm.realm.Undefined(), nil
	}
	return c.Value, nil
}

// uncaught turns a throw completion that reached the top of a script into
// a *ScriptError; other errors pass through.
func (vm *VM) uncaught(err error) error {
	c, isCompletion := objmodel.AsCompletion(err)
	if !isCompletion || c.Type != objmodel.Throw {
		return err
	}

	serr := &ScriptError{
		completion: c,
		Message:    exceptionMessage(vm.realm, c.Value),
		Context:    vm.throwCtx,
	}
	vm.throwCtx = nil

	fields := logrus.Fields{"exception": serr.Message}
	if len(serr.Context) > 0 {
		top := serr.Context[len(serr.Context)-1]
		fields["file"] = top.start.Filename
		fields["line"] = top.start.Line
	}
	vm.log.WithFields(fields).Debug("uncaught exception")
	return serr
}

// noteThrow records where a throw first surfaced, for the report of an
// uncaught exception.
func (vm *VM) noteThrow(err error) {
	if vm.throwCtx != nil {
		return
	}
	if _, isThrow := objmodel.ThrownValue(err); isThrow {
		vm.throwCtx = vm.synCtx.snapshot()
	}
}
