package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrSectionNotFound     = errors.New("section not found")
	ErrSectionNameTaken    = errors.New("section name already exists")
	ErrInvalidSectionOrder = errors.New("section order contains unknown or repeated sections")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskHasNoSection    = errors.New("task has no section to log a visit against")
	ErrTemplateNotFound    = errors.New("task template not found")
	ErrVisitNotFound       = errors.New("visit log not found")
)

// ValidationError collects field-level messages. Nothing is persisted when
// one is returned.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a message against a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Err returns e when any message was recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
