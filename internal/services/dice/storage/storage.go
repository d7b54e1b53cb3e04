// Package storage defines persistence contracts for roll history.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested roll record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a roll with the same ID was already stored.
	ErrAlreadyExists = errors.New("record already exists")
)

// Operation names the dice call that produced a record.
type Operation string

const (
	OperationRoll           Operation = "roll"
	OperationRollMultiple   Operation = "roll_multiple"
	OperationRollIndividual Operation = "roll_individual"
	OperationRollNotation   Operation = "roll_notation"
)

// Seed sources recorded alongside each roll.
const (
	SeedSourceClient = "client"
	SeedSourceServer = "server"
)

// RollRecord stores one completed roll.
//
// Individual is empty for operations that only report a sum.
type RollRecord struct {
	ID          string    `json:"id"`
	Operation   Operation `json:"operation"`
	Notation    string    `json:"notation,omitempty"`
	Count       int       `json:"count"`
	Sides       int       `json:"sides"`
	Modifier    int       `json:"modifier,omitempty"`
	HasModifier bool      `json:"has_modifier,omitempty"`
	Individual  []int     `json:"individual,omitempty"`
	Total       int       `json:"total"`
	Seed        uint64    `json:"seed"`
	SeedSource  string    `json:"seed_source"`
	CreatedAt   time.Time `json:"created_at"`
}

// RollPage stores one page of roll records, newest first.
type RollPage struct {
	Rolls         []RollRecord
	NextPageToken string
}

// RollStore persists roll history.
type RollStore interface {
	PutRoll(ctx context.Context, record RollRecord) error
	GetRoll(ctx context.Context, id string) (RollRecord, error)
	ListRolls(ctx context.Context, pageSize int, pageToken string) (RollPage, error)
	Close() error
}

// Normalize validates the record's required fields and fills CreatedAt,
// truncated to the millisecond precision every backend keeps.
func Normalize(record RollRecord, now func() time.Time) (RollRecord, error) {
	if record.ID == "" {
		return RollRecord{}, errors.New("roll id is required")
	}
	if record.Operation == "" {
		return RollRecord{}, errors.New("roll operation is required")
	}
	if record.CreatedAt.IsZero() {
		if now == nil {
			now = time.Now
		}
		record.CreatedAt = now()
	}
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	return record, nil
}
