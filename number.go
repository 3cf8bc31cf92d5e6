package objmodel

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// NumberToString formats f the way Number.prototype.toString(10) does:
// shortest round-trip digits, plain notation for exponents in [-6, 21),
// exponential notation otherwise.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + NumberToString(-f)
	}

	// d.ddde±x
	repr := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expStr, _ := strings.Cut(repr, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, err := strconv.Atoi(expStr)
	if err != nil {
		panic("bug: unexpected FormatFloat output: " + repr)
	}

	k := len(digits)
	n := exp + 1
	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	e := n - 1
	sign := "+"
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}

func isJSWhitespace(c rune) bool {
	switch c {
	case '\t', '\v', '\f', ' ', '\u00a0', '\ufeff', '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, c)
}

// StringToNumber converts a string per StringNumericLiteral; anything not
// matching the grammar is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isJSWhitespace)
	if s == "" {
		return 0
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseNonDecimal(s[2:], base)
		}
	}

	body := s
	sign := 1.0
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		body = body[1:]
		sign = -1
	}
	if body == "Infinity" {
		return math.Inf(int(sign))
	}
	if !isDecimalLiteral(body) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		// out of range: f is ±Inf or 0 already
		if numErr, ok := err.(*strconv.NumError); !ok || numErr.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return sign * f
}

func parseNonDecimal(digits string, base int) float64 {
	for _, c := range digits {
		if digitValue(c) >= base {
			return math.NaN()
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

func digitValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 36
	}
}

// isDecimalLiteral matches StrUnsignedDecimalLiteral minus Infinity:
// digits [. digits] [e [sign] digits], with at least one mantissa digit.
func isDecimalLiteral(s string) bool {
	i := 0
	intDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	if intDigits+fracDigits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
