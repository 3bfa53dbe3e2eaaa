package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/logger"
)

// TaskRepositoryInterface is the typed contract over the task store. Every
// operation requires the verified user id; the adapter never trusts ids baked
// into payloads. Errors come back as values and must be branched on.
type TaskRepositoryInterface interface {
	Add(ctx context.Context, userID string, data CreateTaskData) (*Task, error)
	FindByID(ctx context.Context, userID string, taskID string) (*Task, error)
	FindByDateRange(ctx context.Context, userID string, start string, end string) ([]Task, error)
	FindAll(ctx context.Context, userID string) ([]Task, error)
	Update(ctx context.Context, userID string, taskID string, updates UpdateTaskData) (*Task, error)
	Delete(ctx context.Context, userID string, taskID string) error
	BurnoutScores(ctx context.Context, userID string, weekStart string) ([]BurnoutScore, error)
	BulkCreate(ctx context.Context, userID string, drafts []CreateTaskData) (int, error)
	UpdateSchedule(ctx context.Context, userID string, taskID string, newDate string) error
}

const taskColumns = `id, user_id, title, COALESCE(description, ''), importance, complexity,
	to_char(scheduled_date, 'YYYY-MM-DD'), to_char(deadline, 'YYYY-MM-DD'),
	completed, created_at, updated_at`

// PostgresTaskRepository does everything related to storing and finding tasks.
// The burnout computation lives in the store as the stored procedure
// get_burnout_scores_for_week; this adapter only types its in- and output.
type PostgresTaskRepository struct {
	DB     *sql.DB
	Logger logger.Interface
}

// Add persists a new task after date sanitation
func (s *PostgresTaskRepository) Add(ctx context.Context, userID string, data CreateTaskData) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	data.SanitizeDates()

	row := s.DB.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, importance, complexity, scheduled_date, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7::date)
		 RETURNING `+taskColumns,
		userID, data.Title, data.Description, data.Importance, data.Complexity,
		data.ScheduledDate, data.Deadline)

	task, err := scanTask(row)
	if err != nil {
		return nil, errors.Wrap(err, "could not insert task")
	}

	return task, nil
}

// FindByID finds a single task owned by the user
func (s *PostgresTaskRepository) FindByID(ctx context.Context, userID string, taskID string) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find task")
	}

	return task, nil
}

// FindByDateRange returns the user's tasks scheduled inside [start, end],
// inclusive on both bounds, ordered by scheduled date ascending
func (s *PostgresTaskRepository) FindByDateRange(ctx context.Context, userID string, start string, end string) ([]Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = $1 AND scheduled_date >= $2::date AND scheduled_date <= $3::date
		 ORDER BY scheduled_date ASC`,
		userID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "could not query tasks by date range")
	}
	defer rows.Close()

	return collectTasks(rows)
}

// FindAll returns every task of the user, newest first
func (s *PostgresTaskRepository) FindAll(ctx context.Context, userID string) ([]Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, errors.Wrap(err, "could not query tasks")
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Update applies a partial update and always moves updated_at to now
func (s *PostgresTaskRepository) Update(ctx context.Context, userID string, taskID string, updates UpdateTaskData) (*Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	updates.SanitizeDates()

	assignments := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}

	appendAssignment := func(column string, value interface{}) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if updates.Title != nil {
		appendAssignment("title", *updates.Title)
	}
	if updates.Description != nil {
		appendAssignment("description", *updates.Description)
	}
	if updates.Importance != nil {
		appendAssignment("importance", *updates.Importance)
	}
	if updates.Complexity != nil {
		appendAssignment("complexity", *updates.Complexity)
	}
	if updates.ScheduledDate != nil {
		appendAssignment("scheduled_date", *updates.ScheduledDate)
	}
	if updates.Deadline != nil {
		appendAssignment("deadline", *updates.Deadline)
	}
	if updates.Completed != nil {
		appendAssignment("completed", *updates.Completed)
	}

	args = append(args, taskID, userID)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING `+taskColumns,
		strings.Join(assignments, ", "), len(args)-1, len(args))

	task, err := scanTask(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not update task")
	}

	return task, nil
}

// Delete removes a task owned by the user
func (s *PostgresTaskRepository) Delete(ctx context.Context, userID string, taskID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return errors.Wrap(err, "could not delete task")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "could not read delete result")
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// BurnoutScores calls the get_burnout_scores_for_week stored procedure for a
// Monday week start and validates the shape of its response
func (s *PostgresTaskRepository) BurnoutScores(ctx context.Context, userID string, weekStart string) ([]BurnoutScore, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT day_of_week, burnout_score FROM get_burnout_scores_for_week($1, $2::date)`,
		userID, weekStart)
	if err != nil {
		return nil, errors.Wrap(err, "could not query burnout scores")
	}
	defer rows.Close()

	var scores []BurnoutScore
	for rows.Next() {
		var score BurnoutScore
		if err := rows.Scan(&score.DayOfWeek, &score.Score); err != nil {
			return nil, errors.Wrap(err, "could not scan burnout score")
		}
		if score.DayOfWeek < 1 || score.DayOfWeek > 7 {
			return nil, errors.Errorf("store returned day_of_week %d outside 1..7", score.DayOfWeek)
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read burnout scores")
	}

	return scores, nil
}

// BulkCreate calls the bulk_create_tasks stored procedure with a sanitized
// JSON array of drafts and returns how many tasks were created
func (s *PostgresTaskRepository) BulkCreate(ctx context.Context, userID string, drafts []CreateTaskData) (int, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}

	for i := range drafts {
		drafts[i].SanitizeDates()
	}

	payload, err := json.Marshal(drafts)
	if err != nil {
		return 0, errors.Wrap(err, "could not encode tasks payload")
	}

	var created int
	err = s.DB.QueryRowContext(ctx,
		`SELECT bulk_create_tasks($1, $2::jsonb)`, userID, payload).Scan(&created)
	if err != nil {
		return 0, errors.Wrap(err, "bulk_create_tasks failed")
	}

	return created, nil
}

// UpdateSchedule calls the update_task_schedule stored procedure to move one
// task to a new date
func (s *PostgresTaskRepository) UpdateSchedule(ctx context.Context, userID string, taskID string, newDate string) error {
	if userID == "" {
		return ErrUnauthenticated
	}

	var moved bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT update_task_schedule($1, $2, $3::date)`, userID, taskID, newDate).Scan(&moved)
	if err != nil {
		return errors.Wrap(err, "update_task_schedule failed")
	}
	if !moved {
		return ErrTaskNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var scheduledDate, deadline sql.NullString

	err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&task.Importance, &task.Complexity, &scheduledDate, &deadline,
		&task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if scheduledDate.Valid {
		task.ScheduledDate = &scheduledDate.String
	}
	if deadline.Valid {
		task.Deadline = &deadline.String
	}

	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]Task, error) {
	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not scan task")
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read tasks")
	}

	return tasks, nil
}
