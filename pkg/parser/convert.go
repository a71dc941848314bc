package parser

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// numericPrefix is the leading integer of s, parsed the way C's atol does:
// leading blanks are skipped, an optional sign is accepted, and parsing
// stops at the first non-digit.
type numericPrefix struct {
	value    int64
	digits   int
	consumed int
	negative bool
}

func leadingInt(s string) numericPrefix {
	var p numericPrefix
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		p.negative = s[i] == '-'
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := int64(s[i] - '0')
		if p.value > (math.MaxInt64-d)/10 {
			p.value = math.MaxInt64
		} else {
			p.value = p.value*10 + d
		}
		p.digits++
		i++
	}
	p.consumed = i
	if p.negative {
		p.value = -p.value
	}
	return p
}

// parseDelta parses a time field. ok is false when the field is not a plain
// non-negative integer; the returned delta is then the best lenient reading,
// clamped to zero.
func parseDelta(field string) (delta int64, ok bool) {
	p := leadingInt(field)
	if p.digits == 0 {
		return 0, false
	}
	if p.negative {
		return 0, false
	}
	return p.value, p.consumed == len(field)
}

// toInt converts an argument to an integer, yielding 0 when no leading
// digits are present.
func toInt(s string) int {
	p := leadingInt(s)
	if p.digits == 0 {
		return 0
	}
	if p.value > math.MaxInt {
		return math.MaxInt
	}
	if p.value < math.MinInt {
		return math.MinInt
	}
	return int(p.value)
}

// toFloat converts the longest numeric prefix of s, yielding 0 when there is none.
func toFloat(s string, bitSize int) float64 {
	s = strings.TrimLeft(s, " \t")
	end := floatPrefixLen(s)
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], bitSize)
	if err != nil {
		// Out of range values come back as ±Inf with an error; keep them.
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return 0
	}
	return f
}

// floatPrefixLen returns the length of the longest prefix of s shaped like
// [sign] digits [. digits] [e [sign] digits], requiring at least one digit
// in the mantissa.
func floatPrefixLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if mantissa+frac > 0 {
			i = j
			mantissa += frac
		}
	}
	if mantissa == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
