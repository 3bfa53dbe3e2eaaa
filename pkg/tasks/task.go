package tasks

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrTaskNotFound is returned when a task id is not present in the queried window
var ErrTaskNotFound = errors.New("task not found")

// ErrUnauthenticated is returned when a store operation runs without an identity
var ErrUnauthenticated = errors.New("user not authenticated")

// Importance is the user-facing priority of a task
type Importance string

const (
	// ImportanceLow marks a task as low priority
	ImportanceLow Importance = "low"
	// ImportanceMedium marks a task as medium priority
	ImportanceMedium Importance = "medium"
	// ImportanceHigh marks a task as high priority
	ImportanceHigh Importance = "high"
)

// Task is the model for a task. Calendar dates travel as YYYY-MM-DD strings
// without a time component; an absent date is nil, never an empty string.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title" validate:"required,max=100"`
	Description   string     `json:"description,omitempty"`
	Importance    Importance `json:"importance" validate:"required,oneof=low medium high"`
	Complexity    int        `json:"complexity" validate:"required,min=1,max=5"`
	ScheduledDate *string    `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline      *string    `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateTaskData is the view of a task for creation; the store assigns
// identity and timestamps
type CreateTaskData struct {
	Title         string     `json:"title" validate:"required,max=100"`
	Description   string     `json:"description,omitempty"`
	Importance    Importance `json:"importance" validate:"required,oneof=low medium high"`
	Complexity    int        `json:"complexity" validate:"required,min=1,max=5"`
	ScheduledDate *string    `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline      *string    `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskData is the partial view of a task for an update; nil fields are
// left untouched
type UpdateTaskData struct {
	Title         *string     `json:"title" validate:"omitempty,max=100"`
	Description   *string     `json:"description"`
	Importance    *Importance `json:"importance" validate:"omitempty,oneof=low medium high"`
	Complexity    *int        `json:"complexity" validate:"omitempty,min=1,max=5"`
	ScheduledDate *string     `json:"scheduled_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline      *string     `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Completed     *bool       `json:"completed"`
}

// BurnoutScore is the per-day load the store computes for a week.
// DayOfWeek is 1-based with Monday = 1.
type BurnoutScore struct {
	DayOfWeek int     `json:"day_of_week"`
	Score     float64 `json:"burnout_score"`
}

// WeekDay is one of the seven buckets of a week view. It is derived, never
// persisted, and rebuilt in full on every week load.
type WeekDay struct {
	Date         time.Time `json:"date"`
	DayName      string    `json:"day_name"`
	DayNumber    int       `json:"day_number"`
	IsToday      bool      `json:"is_today"`
	Tasks        []Task    `json:"tasks"`
	BurnoutScore float64   `json:"burnout_score"`
}

// SanitizeDates normalizes empty-string dates to absent so they are never
// stored as "" and never hit the date parser downstream
func (d *CreateTaskData) SanitizeDates() {
	d.ScheduledDate = sanitizeDate(d.ScheduledDate)
	d.Deadline = sanitizeDate(d.Deadline)
}

// SanitizeDates normalizes empty-string dates to absent on a partial update
func (d *UpdateTaskData) SanitizeDates() {
	d.ScheduledDate = sanitizeDate(d.ScheduledDate)
	d.Deadline = sanitizeDate(d.Deadline)
}

func sanitizeDate(value *string) *string {
	if value != nil && strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
