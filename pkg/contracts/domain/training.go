package domain

import (
	"strings"
	"time"
)

// TrainingRecord represents one row of the training log after type coercion.
// Score and Date are pointers because the source data routinely leaves them
// blank; a nil value is excluded from score and trend aggregates rather than
// treated as zero.
type TrainingRecord struct {
	Name      string     `json:"name" csv:"Name" validate:"required"`
	Module    string     `json:"module" csv:"Module" validate:"required"`
	Score     *float64   `json:"score,omitempty" csv:"Score"`
	Date      *time.Time `json:"date,omitempty" csv:"Date"`
	Completed bool       `json:"completed" csv:"Completed"`
}

// HasScore reports whether the record carries a usable score.
func (r TrainingRecord) HasScore() bool {
	return r.Score != nil
}

// HasDate reports whether the record carries a parseable date.
func (r TrainingRecord) HasDate() bool {
	return r.Date != nil
}

// Valid reports whether the record identifies a participant and a module.
// Records failing this check are dropped during cleaning.
func (r TrainingRecord) Valid() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Module) != ""
}

// RequiredColumns lists the header names a training data file must contain.
// Column order in the file does not matter.
var RequiredColumns = []string{"Name", "Module", "Score", "Date", "Completed"}

// ParseCompleted interprets the Completed column the way the training log
// records it: a case-insensitive "yes" means completed, everything else
// (including blank) means not completed.
func ParseCompleted(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}
