package dice

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Spec is a parsed dice notation: one die group and an optional modifier.
//
// Count and Sides are always at least 1 for a Spec returned by Parse.
type Spec struct {
	Count       int
	Sides       int
	Modifier    int
	HasModifier bool
}

// String returns the canonical notation, always with an explicit count.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.Count))
	b.WriteByte('d')
	b.WriteString(strconv.Itoa(s.Sides))
	if s.HasModifier {
		if s.Modifier >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(s.Modifier))
	}
	return b.String()
}

// Parse reads dice notation of the form [count](d|D)sides[(+|-)modifier].
//
// The grammar is strict: no whitespace, no sign on the count, at most one
// modifier. Count defaults to 1 when omitted. Any violation, including a
// zero count, zero sides or a total that could overflow int, returns an
// InvalidNotation error.
func Parse(text string) (Spec, error) {
	if text == "" || !utf8.ValidString(text) || strings.IndexByte(text, 0) >= 0 {
		return Spec{}, InvalidNotation(text)
	}

	spec := Spec{Count: 1}
	pos := scanDigits(text, 0)
	if pos > 0 {
		count, err := strconv.Atoi(text[:pos])
		if err != nil || count < 1 {
			return Spec{}, InvalidNotation(text)
		}
		spec.Count = count
	}

	if pos >= len(text) || (text[pos] != 'd' && text[pos] != 'D') {
		return Spec{}, InvalidNotation(text)
	}
	pos++

	end := scanDigits(text, pos)
	if end == pos {
		return Spec{}, InvalidNotation(text)
	}
	sides, err := strconv.Atoi(text[pos:end])
	if err != nil || sides < 1 {
		return Spec{}, InvalidNotation(text)
	}
	spec.Sides = sides
	pos = end

	if pos < len(text) {
		sign := text[pos]
		if sign != '+' && sign != '-' {
			return Spec{}, InvalidNotation(text)
		}
		pos++
		end = scanDigits(text, pos)
		if end == pos {
			return Spec{}, InvalidNotation(text)
		}
		modifier, err := strconv.Atoi(text[pos:end])
		if err != nil {
			return Spec{}, InvalidNotation(text)
		}
		if sign == '-' {
			modifier = -modifier
		}
		spec.Modifier = modifier
		spec.HasModifier = true
		pos = end
	}

	if pos != len(text) || !spec.fits() {
		return Spec{}, InvalidNotation(text)
	}
	return spec, nil
}

// fits reports whether every total the spec can produce is an int.
func (s Spec) fits() bool {
	if s.Count < 1 || s.Sides < 1 || s.Count > math.MaxInt/s.Sides {
		return false
	}
	if !s.HasModifier {
		return true
	}
	if s.Modifier > 0 {
		return s.Count*s.Sides <= math.MaxInt-s.Modifier
	}
	return s.Count >= math.MinInt-s.Modifier
}

// scanDigits returns the index of the first non-ASCII-digit byte at or after start.
func scanDigits(text string, start int) int {
	i := start
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	return i
}
