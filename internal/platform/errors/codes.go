// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeInvalidPageToken Code = "INVALID_PAGE_TOKEN"

	// Dice errors
	CodeDiceInvalidSides    Code = "DICE_INVALID_SIDES"
	CodeDiceInvalidCount    Code = "DICE_INVALID_COUNT"
	CodeDiceInvalidNotation Code = "DICE_INVALID_NOTATION"
	CodeDiceNullPointer     Code = "DICE_NULL_POINTER"
	CodeDiceCountTooLarge   Code = "DICE_COUNT_TOO_LARGE"

	// Random/seed errors
	CodeSeedOutOfRange Code = "SEED_OUT_OF_RANGE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidRequest,
		CodeInvalidPageToken,
		CodeDiceInvalidSides,
		CodeDiceInvalidCount,
		CodeDiceInvalidNotation,
		CodeDiceNullPointer,
		CodeDiceCountTooLarge,
		CodeSeedOutOfRange:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
