package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire representation for all dates. It sorts
// lexicographically in chronological order.
const DateLayout = "2006-01-02"

// Date is a day-precision timestamp that marshals to YYYY-MM-DD.
type Date struct {
	time.Time
}

// Today returns the current date truncated to day precision.
func Today() Date {
	t := time.Now()
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON decodes a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Identity represents a registered user account
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt Date   `json:"createdAt"`
}

// Credential pairs an identity with its stored password. The password
// check is a local placeholder, not a real credential system.
type Credential struct {
	Identity Identity
	Password string
}

// Priority is a task's urgency level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next cycles low → medium → high → low, for the task form selector.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task represents a single task owned by one identity.
// UserID and CreatedAt are stamped at creation and never change.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority"`
	DueDate     Date     `json:"dueDate"`
	CreatedAt   Date     `json:"createdAt"`
	UserID      string   `json:"userId"`
}

// Patch is a partial task update. Nil fields are left untouched.
// Identity-defining fields (ID, CreatedAt, UserID) are deliberately
// not representable here.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDate     *Date
}

// Apply merges the set fields of the patch over the task.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
}
