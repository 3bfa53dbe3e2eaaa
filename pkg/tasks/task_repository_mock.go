package tasks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planweek/planweek-backend/pkg/date"
)

// MockTaskRepository is a task repository for testing
type MockTaskRepository struct {
	Tasks  []*Task
	Scores map[string][]BurnoutScore // keyed by weekStart date string

	FailTasks   error // forced error for task reads
	FailScores  error // forced error for burnout reads
	FailWrites  error // forced error for mutations
	BulkCalls   int
	UpdateCalls int
}

// Add adds a task
func (m *MockTaskRepository) Add(_ context.Context, userID string, data CreateTaskData) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailWrites != nil {
		return nil, m.FailWrites
	}

	data.SanitizeDates()

	task := &Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         data.Title,
		Description:   data.Description,
		Importance:    data.Importance,
		Complexity:    data.Complexity,
		ScheduledDate: data.ScheduledDate,
		Deadline:      data.Deadline,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.Tasks = append(m.Tasks, task)

	return task, nil
}

// FindByID finds a task by id
func (m *MockTaskRepository) FindByID(_ context.Context, userID string, taskID string) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailTasks != nil {
		return nil, m.FailTasks
	}

	for _, t := range m.Tasks {
		if t.ID == taskID && t.UserID == userID {
			copied := *t
			return &copied, nil
		}
	}

	return nil, ErrTaskNotFound
}

// FindByDateRange finds tasks scheduled inside [start, end], both inclusive
func (m *MockTaskRepository) FindByDateRange(_ context.Context, userID string, start string, end string) ([]Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailTasks != nil {
		return nil, m.FailTasks
	}

	var tasks []Task
	for _, t := range m.Tasks {
		if t.UserID != userID || t.ScheduledDate == nil {
			continue
		}
		if *t.ScheduledDate >= start && *t.ScheduledDate <= end {
			tasks = append(tasks, *t)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return *tasks[i].ScheduledDate < *tasks[j].ScheduledDate
	})

	return tasks, nil
}

// FindAll finds all tasks of a user
func (m *MockTaskRepository) FindAll(_ context.Context, userID string) ([]Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailTasks != nil {
		return nil, m.FailTasks
	}

	var tasks []Task
	for _, t := range m.Tasks {
		if t.UserID == userID {
			tasks = append(tasks, *t)
		}
	}

	return tasks, nil
}

// Update applies a partial update
func (m *MockTaskRepository) Update(_ context.Context, userID string, taskID string, updates UpdateTaskData) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailWrites != nil {
		return nil, m.FailWrites
	}

	updates.SanitizeDates()

	for _, t := range m.Tasks {
		if t.ID != taskID || t.UserID != userID {
			continue
		}

		if updates.Title != nil {
			t.Title = *updates.Title
		}
		if updates.Description != nil {
			t.Description = *updates.Description
		}
		if updates.Importance != nil {
			t.Importance = *updates.Importance
		}
		if updates.Complexity != nil {
			t.Complexity = *updates.Complexity
		}
		if updates.ScheduledDate != nil {
			t.ScheduledDate = updates.ScheduledDate
		}
		if updates.Deadline != nil {
			t.Deadline = updates.Deadline
		}
		if updates.Completed != nil {
			t.Completed = *updates.Completed
		}
		t.UpdatedAt = time.Now()

		copied := *t
		return &copied, nil
	}

	return nil, ErrTaskNotFound
}

// Delete removes a task
func (m *MockTaskRepository) Delete(_ context.Context, userID string, taskID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}

	for i, t := range m.Tasks {
		if t.ID == taskID && t.UserID == userID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return nil
		}
	}

	return ErrTaskNotFound
}

// BurnoutScores returns the scores configured for a week start
func (m *MockTaskRepository) BurnoutScores(_ context.Context, userID string, weekStart string) ([]BurnoutScore, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if m.FailScores != nil {
		return nil, m.FailScores
	}

	return m.Scores[weekStart], nil
}

// BulkCreate creates several drafts at once
func (m *MockTaskRepository) BulkCreate(ctx context.Context, userID string, drafts []CreateTaskData) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	if m.FailWrites != nil {
		return 0, m.FailWrites
	}

	m.BulkCalls++
	for _, draft := range drafts {
		if _, err := m.Add(ctx, userID, draft); err != nil {
			return 0, err
		}
	}

	return len(drafts), nil
}

// UpdateSchedule moves one task to a new date
func (m *MockTaskRepository) UpdateSchedule(ctx context.Context, userID string, taskID string, newDate string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	if _, err := date.Parse(newDate); err != nil {
		return err
	}

	m.UpdateCalls++
	_, err := m.Update(ctx, userID, taskID, UpdateTaskData{ScheduledDate: &newDate})
	return err
}
