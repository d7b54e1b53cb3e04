package service

import (
	"errors"
	"strconv"

	"github.com/louisbranch/roll/internal/core/dice"
	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	"github.com/louisbranch/roll/internal/platform/grpc/pagination"
	"github.com/louisbranch/roll/internal/services/dice/storage"
)

// Metadata keys shared with the i18n message templates.
const (
	MetaSides    = "Sides"
	MetaCount    = "Count"
	MetaNotation = "Notation"
	MetaMax      = "Max"
	MetaResource = "Resource"
	MetaField    = "Field"
	MetaReason   = "Reason"
)

// DomainError maps core, storage and pagination errors to platform errors.
// The original error stays reachable through errors.Is and errors.As.
// Errors it does not recognize are returned unchanged.
func DomainError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	var diceErr *dice.Error
	if errors.As(err, &diceErr) {
		switch diceErr.Kind {
		case dice.KindInvalidSides:
			return apperrors.WrapWithMetadata(apperrors.CodeDiceInvalidSides, err.Error(),
				map[string]string{MetaSides: strconv.Itoa(diceErr.Sides)}, err)
		case dice.KindInvalidCount:
			return apperrors.WrapWithMetadata(apperrors.CodeDiceInvalidCount, err.Error(),
				map[string]string{MetaCount: strconv.Itoa(diceErr.Count)}, err)
		case dice.KindInvalidNotation:
			return apperrors.WrapWithMetadata(apperrors.CodeDiceInvalidNotation, err.Error(),
				map[string]string{MetaNotation: diceErr.Notation}, err)
		case dice.KindNullPointer:
			return MissingField("notation")
		}
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.WrapWithMetadata(apperrors.CodeNotFound, "roll not found",
			map[string]string{MetaResource: "Roll"}, err)
	case errors.Is(err, pagination.ErrInvalidPageToken):
		return apperrors.Wrap(apperrors.CodeInvalidPageToken, err.Error(), err)
	}
	return err
}

// DiceError rebuilds a core error from a platform error produced by
// DomainError, typically after it crossed a transport. It returns nil when
// err does not carry a dice code.
func DiceError(err error) *dice.Error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return nil
	}
	meta := appErr.Metadata
	switch appErr.Code {
	case apperrors.CodeDiceInvalidSides:
		sides, _ := strconv.Atoi(meta[MetaSides])
		return dice.InvalidSides(sides)
	case apperrors.CodeDiceInvalidCount:
		count, _ := strconv.Atoi(meta[MetaCount])
		return dice.InvalidCount(count)
	case apperrors.CodeDiceInvalidNotation:
		return dice.InvalidNotation(meta[MetaNotation])
	case apperrors.CodeDiceNullPointer:
		return dice.NullPointer()
	}
	return nil
}

// MissingField reports an absent required request field as a null pointer.
func MissingField(name string) error {
	return apperrors.WrapWithMetadata(apperrors.CodeDiceNullPointer, "missing field "+name,
		map[string]string{MetaField: name}, dice.NullPointer())
}

// InvalidRequest reports a malformed request.
func InvalidRequest(reason string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeInvalidRequest, reason,
		map[string]string{MetaReason: reason}, cause)
}

func errCountTooLarge(count, max int) error {
	return apperrors.WithMetadata(apperrors.CodeDiceCountTooLarge, "too many dice requested",
		map[string]string{
			MetaCount: strconv.Itoa(count),
			MetaMax:   strconv.Itoa(max),
		})
}

func errHistoryDisabled() error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, "roll history is not enabled",
		map[string]string{MetaResource: "Roll history"})
}
