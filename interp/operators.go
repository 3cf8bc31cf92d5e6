package interp

import (
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/robertkrimen/otto/token"

	"com.github.sebastianobarrera.modeledjs/objmodel"
)

func (vm *VM) binaryOp(op token.Token, left, right objmodel.Value) (objmodel.Value, error) {
	r := vm.realm

	switch op {
	case token.PLUS:
		return vm.addition(left, right)

	case token.MINUS, token.MULTIPLY, token.SLASH, token.REMAINDER:
		return vm.arithmeticOp(op, left, right)

	case token.AND, token.OR, token.EXCLUSIVE_OR, token.SHIFT_LEFT, token.SHIFT_RIGHT, token.UNSIGNED_SHIFT_RIGHT:
		return vm.bitwiseOp(op, left, right)

	case token.STRICT_EQUAL:
		return r.Bool(objmodel.IsStrictlyEqual(left, right)), nil
	case token.STRICT_NOT_EQUAL:
		return r.Bool(!objmodel.IsStrictlyEqual(left, right)), nil
	case token.EQUAL, token.NOT_EQUAL:
		eq, err := r.IsLooselyEqual(left, right)
		if err != nil {
			return nil, err
		}
		return r.Bool(eq == (op == token.EQUAL)), nil

	case token.LESS:
		tri, err := vm.compareLessThan(left, right, true)
		return r.Bool(tri == tTrue), err
	case token.GREATER:
		tri, err := vm.compareLessThan(right, left, false)
		return r.Bool(tri == tTrue), err
	case token.LESS_OR_EQUAL:
		// undefined (a NaN operand) is false both ways
		tri, err := vm.compareLessThan(right, left, false)
		return r.Bool(tri == tFalse), err
	case token.GREATER_OR_EQUAL:
		tri, err := vm.compareLessThan(left, right, true)
		return r.Bool(tri == tFalse), err

	case token.INSTANCEOF:
		ok, err := r.InstanceofOperator(left, right)
		if err != nil {
			return nil, err
		}
		return r.Bool(ok), nil

	case token.IN:
		obj, isObj := right.(*objmodel.Object)
		if !isObj {
			return nil, r.ThrowTypeError("cannot use 'in' operator to search for a key in %s", objmodel.TypeOf(right))
		}
		key, err := r.ToPropertyKey(left)
		if err != nil {
			return nil, err
		}
		found, err := obj.HasProperty(key)
		if err != nil {
			return nil, err
		}
		return r.Bool(found), nil

	default:
		return nil, r.ThrowSyntaxError("unsupported binary operator: %s", op)
	}
}

func (vm *VM) addition(left, right objmodel.Value) (objmodel.Value, error) {
	r := vm.realm
	lprim, err := r.ToPrimitive(left, objmodel.HintDefault)
	if err != nil {
		return nil, err
	}
	rprim, err := r.ToPrimitive(right, objmodel.HintDefault)
	if err != nil {
		return nil, err
	}

	_, isLStr := lprim.(objmodel.String)
	_, isRStr := rprim.(objmodel.String)
	if isLStr || isRStr {
		lstr, err := r.ToString(lprim)
		if err != nil {
			return nil, err
		}
		rstr, err := r.ToString(rprim)
		if err != nil {
			return nil, err
		}
		return objmodel.NewString(lstr + rstr), nil
	}

	return vm.arithmeticOp(token.PLUS, lprim, rprim)
}

func (vm *VM) arithmeticOp(op token.Token, left, right objmodel.Value) (objmodel.Value, error) {
	r := vm.realm
	ln, err := r.ToNumeric(left)
	if err != nil {
		return nil, err
	}
	rn, err := r.ToNumeric(right)
	if err != nil {
		return nil, err
	}

	switch op {
	case token.PLUS:
		return objmodel.NewNumber(ln + rn), nil
	case token.MINUS:
		return objmodel.NewNumber(ln - rn), nil
	case token.MULTIPLY:
		return objmodel.NewNumber(ln * rn), nil
	case token.SLASH:
		return objmodel.NewNumber(ln / rn), nil
	case token.REMAINDER:
		return objmodel.NewNumber(floatRemainder(ln, rn)), nil
	default:
		panic(fmt.Sprintf("bug: not an arithmetic operator: %s", op))
	}
}

func (vm *VM) bitwiseOp(op token.Token, left, right objmodel.Value) (objmodel.Value, error) {
	r := vm.realm

	if op == token.UNSIGNED_SHIFT_RIGHT {
		ln, err := r.ToUint32(left)
		if err != nil {
			return nil, err
		}
		rn, err := r.ToUint32(right)
		if err != nil {
			return nil, err
		}
		return objmodel.NewNumber(float64(ln >> (rn & 0x1f))), nil
	}

	ln, err := r.ToInt32(left)
	if err != nil {
		return nil, err
	}
	// shift counts are taken modulo 32 after ToUint32
	rn, err := r.ToUint32(right)
	if err != nil {
		return nil, err
	}

	var res int32
	switch op {
	case token.AND:
		res = ln & int32(rn)
	case token.OR:
		res = ln | int32(rn)
	case token.EXCLUSIVE_OR:
		res = ln ^ int32(rn)
	case token.SHIFT_LEFT:
		res = ln << (rn & 0x1f)
	case token.SHIFT_RIGHT:
		res = ln >> (rn & 0x1f)
	default:
		panic(fmt.Sprintf("bug: not a bitwise operator: %s", op))
	}
	return objmodel.NewNumber(float64(res)), nil
}

func floatRemainder(n, d float64) float64 {
	if math.IsNaN(n) || math.IsNaN(d) || math.IsInf(n, 0) {
		return math.NaN()
	}
	if math.IsInf(d, 0) {
		return n
	}
	if d == 0 {
		return math.NaN()
	}
	if n == 0 {
		return n
	}

	rem := n - d*math.Trunc(n/d)
	if rem == 0 {
		// the sign of the dividend wins
		return math.Copysign(0, n)
	}
	return rem
}

type tribool uint8

const (
	tFalse tribool = iota
	tTrue
	// a NaN was involved
	tUndefined
)

func boolToTri(b bool) tribool {
	if b {
		return tTrue
	}
	return tFalse
}

// compareLessThan is the abstract relational comparison a < b. leftFirst
// tells which operand is converted to a primitive first.
func (vm *VM) compareLessThan(a, b objmodel.Value, leftFirst bool) (tribool, error) {
	r := vm.realm

	var aprim, bprim objmodel.Value
	var err error
	if leftFirst {
		if aprim, err = r.ToPrimitive(a, objmodel.HintNumber); err != nil {
			return tUndefined, err
		}
		if bprim, err = r.ToPrimitive(b, objmodel.HintNumber); err != nil {
			return tUndefined, err
		}
	} else {
		if bprim, err = r.ToPrimitive(b, objmodel.HintNumber); err != nil {
			return tUndefined, err
		}
		if aprim, err = r.ToPrimitive(a, objmodel.HintNumber); err != nil {
			return tUndefined, err
		}
	}

	astr, isAStr := aprim.(objmodel.String)
	bstr, isBStr := bprim.(objmodel.String)
	if isAStr && isBStr {
		return boolToTri(lessUTF16(astr.String(), bstr.String())), nil
	}

	an, err := r.ToNumeric(aprim)
	if err != nil {
		return tUndefined, err
	}
	bn, err := r.ToNumeric(bprim)
	if err != nil {
		return tUndefined, err
	}
	if math.IsNaN(an) || math.IsNaN(bn) {
		return tUndefined, nil
	}
	return boolToTri(an < bn), nil
}

// lessUTF16 orders strings by code units, not by code points.
func lessUTF16(a, b string) bool {
	au := utf16.Encode([]rune(a))
	bu := utf16.Encode([]rune(b))
	limit := min(len(au), len(bu))
	for i := 0; i < limit; i++ {
		if au[i] != bu[i] {
			return au[i] < bu[i]
		}
	}
	return len(au) < len(bu)
}
