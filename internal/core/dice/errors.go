package dice

import "fmt"

// Kind classifies dice failures.
type Kind int

const (
	KindUnspecified Kind = iota
	KindInvalidSides
	KindInvalidCount
	KindInvalidNotation
	// KindNullPointer is reserved for bindings that must tell an absent
	// notation apart from an empty one. The core never produces it.
	KindNullPointer
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSides:
		return "InvalidSides"
	case KindInvalidCount:
		return "InvalidCount"
	case KindInvalidNotation:
		return "InvalidNotation"
	case KindNullPointer:
		return "NullPointer"
	default:
		return "Unspecified"
	}
}

// Error describes a rejected dice request.
type Error struct {
	Kind     Kind
	Sides    int
	Count    int
	Notation string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidSides:
		return fmt.Sprintf("invalid number of sides: %d", e.Sides)
	case KindInvalidCount:
		return fmt.Sprintf("invalid count: %d", e.Count)
	case KindInvalidNotation:
		return fmt.Sprintf("invalid dice notation: %q", e.Notation)
	case KindNullPointer:
		return "null pointer"
	default:
		return "dice error"
	}
}

// Is reports whether target is a dice error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidSides    = &Error{Kind: KindInvalidSides}
	ErrInvalidCount    = &Error{Kind: KindInvalidCount}
	ErrInvalidNotation = &Error{Kind: KindInvalidNotation}
	ErrNullPointer     = &Error{Kind: KindNullPointer}
)

// InvalidSides returns the error for a die with fewer than one side.
func InvalidSides(sides int) *Error {
	return &Error{Kind: KindInvalidSides, Sides: sides}
}

// InvalidCount returns the error for a group with fewer than one die.
func InvalidCount(count int) *Error {
	return &Error{Kind: KindInvalidCount, Count: count}
}

// InvalidNotation returns the error for text that is not dice notation.
func InvalidNotation(text string) *Error {
	return &Error{Kind: KindInvalidNotation, Notation: text}
}

// NullPointer returns the error bindings use for an absent notation.
func NullPointer() *Error {
	return &Error{Kind: KindNullPointer}
}
