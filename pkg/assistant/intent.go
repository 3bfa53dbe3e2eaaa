package assistant

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/tasks"
)

// ErrInvalidToolCall is returned when a model-proposed call misses required
// arguments or carries malformed ones
var ErrInvalidToolCall = errors.New("invalid tool call arguments")

// MutationIntent is the tagged union of every mutation the model may
// propose, so validation and execution stay schema-agnostic. The bulk
// variants are the canonical schema; the by-title variants are resolved
// against the grounding context before anything is executed.
type MutationIntent interface {
	mutationIntent()
}

// TaskDraft is one task inside a bulk create proposal
type TaskDraft struct {
	Title         string `json:"title" validate:"required,max=100"`
	Description   string `json:"description"`
	ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	Deadline      string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Complexity    int    `json:"complexity" validate:"required,min=1,max=5"`
}

// CreateData converts a draft into the store's creation view
func (d TaskDraft) CreateData() tasks.CreateTaskData {
	data := tasks.CreateTaskData{
		Title:         d.Title,
		Description:   d.Description,
		Importance:    tasks.ImportanceMedium,
		Complexity:    d.Complexity,
		ScheduledDate: &d.ScheduledDate,
	}
	if d.Deadline != "" {
		data.Deadline = &d.Deadline
	}
	return data
}

// CreateMany creates several tasks at once (bulk_create_tasks)
type CreateMany struct {
	Tasks []TaskDraft
}

// RescheduleByID moves one task referenced by id (update_task_schedule)
type RescheduleByID struct {
	TaskID  string
	NewDate string
}

// CreateOne creates a single task (create_task, single-variant schema)
type CreateOne struct {
	Title         string
	ScheduledDate string
}

// RescheduleByTitle moves one task referenced by a fuzzy title
// (reschedule_task, single-variant schema)
type RescheduleByTitle struct {
	TitleQuery string
	NewDate    string
}

func (CreateMany) mutationIntent()        {}
func (RescheduleByID) mutationIntent()    {}
func (CreateOne) mutationIntent()         {}
func (RescheduleByTitle) mutationIntent() {}

// ParseIntent validates a proposed function call and lifts it into the
// intent union. Nothing is executed here.
func ParseIntent(call *FunctionCall) (MutationIntent, error) {
	v := validator.New()

	switch call.Name {
	case ToolBulkCreateTasks:
		var args struct {
			Tasks []TaskDraft `json:"tasks"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		if len(args.Tasks) == 0 {
			return nil, errors.Wrap(ErrInvalidToolCall, "tasks array is empty")
		}
		for _, draft := range args.Tasks {
			if err := v.Struct(draft); err != nil {
				return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
			}
		}
		return CreateMany{Tasks: args.Tasks}, nil

	case ToolUpdateTaskSchedule:
		var args struct {
			TaskID  string `json:"task_id" validate:"required"`
			NewDate string `json:"new_date" validate:"required,datetime=2006-01-02"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		if err := v.Struct(args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		return RescheduleByID{TaskID: args.TaskID, NewDate: args.NewDate}, nil

	case ToolCreateTask:
		var args struct {
			Title         string `json:"title" validate:"required,max=100"`
			ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		if err := v.Struct(args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		return CreateOne{Title: args.Title, ScheduledDate: args.ScheduledDate}, nil

	case ToolRescheduleTask:
		var args struct {
			TaskTitle string `json:"task_title" validate:"required"`
			NewDate   string `json:"new_date" validate:"required,datetime=2006-01-02"`
		}
		if err := json.Unmarshal(call.Args, &args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		if err := v.Struct(args); err != nil {
			return nil, errors.Wrap(ErrInvalidToolCall, err.Error())
		}
		return RescheduleByTitle{TitleQuery: args.TaskTitle, NewDate: args.NewDate}, nil
	}

	return nil, errors.Wrapf(ErrInvalidToolCall, "unknown tool %q", call.Name)
}

// ResolveByTitle finds the week's tasks whose title contains the query,
// case-insensitive
func ResolveByTitle(weekTasks []tasks.Task, titleQuery string) []tasks.Task {
	needle := strings.ToLower(strings.TrimSpace(titleQuery))
	if needle == "" {
		return nil
	}

	var matches []tasks.Task
	for _, task := range weekTasks {
		if strings.Contains(strings.ToLower(task.Title), needle) {
			matches = append(matches, task)
		}
	}
	return matches
}
