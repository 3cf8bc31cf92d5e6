package objmodel

import (
	"errors"
	"fmt"
)

type CompletionType uint8

const (
	Normal CompletionType = iota
	Break
	Continue
	Return
	Throw
)

func (t CompletionType) String() string {
	switch t {
	case Normal:
		return "normal"
	case Break:
		return "break"
	case Continue:
		return "continue"
	case Return:
		return "return"
	case Throw:
		return "throw"
	default:
		return fmt.Sprintf("CompletionType(%d)", uint8(t))
	}
}

// Completion is a completion record. A nil Value is the "empty" value; an
// empty Target means no label.
//
// Abrupt completions travel up the Go call stack as the error result of every
// operation, so a *Completion is also an error.
type Completion struct {
	Type   CompletionType
	Value  Value
	Target string
}

// NewCompletion builds a completion record. Return and throw completions
// must carry a value.
func NewCompletion(typ CompletionType, value Value, target string) Completion {
	if (typ == Return || typ == Throw) && value == nil {
		panic(fmt.Sprintf("bug: %s completion with an empty value", typ))
	}
	return Completion{Type: typ, Value: value, Target: target}
}

func NormalCompletion(value Value) Completion {
	return NewCompletion(Normal, value, "")
}

// ThrowCompletion wraps a thrown value so that it can be returned as an error.
func ThrowCompletion(value Value) *Completion {
	c := NewCompletion(Throw, value, "")
	return &c
}

func (c Completion) IsAbrupt() bool {
	return c.Type != Normal
}

// UpdateEmpty fills the value of c if it is empty; an existing value is
// never replaced.
func (c Completion) UpdateEmpty(value Value) Completion {
	if c.Value != nil {
		return c
	}
	return NewCompletion(c.Type, value, c.Target)
}

func (c *Completion) Error() string {
	switch c.Type {
	case Throw:
		return "uncaught exception: " + describe(c.Value)
	case Break, Continue:
		if c.Target != "" {
			return fmt.Sprintf("%s %s outside of its statement", c.Type, c.Target)
		}
		return fmt.Sprintf("%s outside of a loop", c.Type)
	default:
		return fmt.Sprintf("(%s completion)", c.Type)
	}
}

// ReturnIfAbrupt turns an abrupt completion into an error and a normal one
// into its value.
func ReturnIfAbrupt(c Completion) (Value, error) {
	if c.IsAbrupt() {
		return nil, &c
	}
	return c.Value, nil
}

// AsCompletion extracts the completion record carried by err, if any.
func AsCompletion(err error) (*Completion, bool) {
	var c *Completion
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// ThrownValue returns the value carried by a throw completion.
func ThrownValue(err error) (Value, bool) {
	c, ok := AsCompletion(err)
	if !ok || c.Type != Throw {
		return nil, false
	}
	return c.Value, true
}

// describe renders a value for diagnostics without running any user code.
func describe(v Value) string {
	switch v := v.(type) {
	case nil:
		return "<empty>"
	case String:
		return v.s
	case Number:
		return NumberToString(v.f)
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case *Symbol:
		return v.String()
	case *Object:
		name := v.ownDataString(StringKey("name"))
		msg := v.ownDataString(StringKey("message"))
		if name == "" && v.proto != nil {
			name = v.proto.ownDataString(StringKey("name"))
		}
		switch {
		case name != "" && msg != "":
			return name + ": " + msg
		case msg != "":
			return msg
		case name != "":
			return name
		}
		return "[object " + v.class + "]"
	default:
		return v.Type().String()
	}
}
