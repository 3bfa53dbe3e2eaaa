package tasks

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/planweek/planweek-backend/pkg/date"
	"github.com/planweek/planweek-backend/pkg/logger"
)

// WeekState names the states of the week view machine so an illegal
// combination (loading with stale days from another week) is unrepresentable
type WeekState string

const (
	// StateIdle means no identity is attached and nothing is loaded
	StateIdle WeekState = "idle"
	// StateLoading means a week load is in flight
	StateLoading WeekState = "loading"
	// StateReady means weekDays reflect a completed fetch
	StateReady WeekState = "ready"
	// StateFailed means the task fetch failed and the view shows nothing
	StateFailed WeekState = "failed"
)

// WeekSnapshot is a consistent read of the controller state
type WeekSnapshot struct {
	State     WeekState
	WeekStart time.Time
	Tasks     []Task
	WeekDays  []WeekDay
	Err       error
}

type burnoutInvalidator interface {
	Invalidate(ctx context.Context, userID string, weekStart string)
}

// WeekController owns the week view of one signed-in user. Every mutation
// triggers a full re-fetch-and-rebuild instead of a local patch, so the view
// always matches server state including the server-computed burnout.
type WeekController struct {
	mu         sync.Mutex
	repository TaskRepositoryInterface
	scores     BurnoutSourceInterface
	logger     logger.Interface
	now        func() time.Time

	userID           string
	generation       uint64
	state            WeekState
	currentWeekStart time.Time
	tasks            []Task
	weekDays         []WeekDay
	err              error
}

// NewWeekController builds a controller in the idle state
func NewWeekController(repository TaskRepositoryInterface, scores BurnoutSourceInterface, log logger.Interface) *WeekController {
	return &WeekController{
		repository: repository,
		scores:     scores,
		logger:     log,
		now:        time.Now,
		state:      StateIdle,
	}
}

// SetUser attaches an identity and loads the week containing now. An empty
// id clears all state without a fetch (sign-out).
func (c *WeekController) SetUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.userID = userID
	c.generation++ // any in-flight load is now stale
	if userID == "" {
		c.state = StateIdle
		c.tasks = nil
		c.weekDays = nil
		c.err = nil
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.LoadWeek(ctx, date.WeekStart(c.now()))
}

// Snapshot returns a consistent copy of the current state
func (c *WeekController) Snapshot() WeekSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return WeekSnapshot{
		State:     c.state,
		WeekStart: c.currentWeekStart,
		Tasks:     append([]Task(nil), c.tasks...),
		WeekDays:  append([]WeekDay(nil), c.weekDays...),
		Err:       c.err,
	}
}

// LoadWeek fetches tasks and burnout scores for a week concurrently and
// rebuilds the seven day buckets. A task fetch failure fails the whole load;
// a burnout failure alone degrades to all-zero scores. Each call carries a
// generation token and only the latest issued load may apply its result.
func (c *WeekController) LoadWeek(ctx context.Context, weekStart time.Time) error {
	weekStart = date.WeekStart(weekStart)

	c.mu.Lock()
	if c.userID == "" {
		c.mu.Unlock()
		return ErrUnauthenticated
	}
	userID := c.userID
	c.generation++
	generation := c.generation
	c.state = StateLoading
	c.currentWeekStart = weekStart
	c.mu.Unlock()

	startKey := date.Format(weekStart)
	endKey := date.Format(date.WeekEnd(weekStart))

	var weekTasks []Task
	var scores []BurnoutScore
	var scoresErr error

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weekTasks, err = c.repository.FindByDateRange(groupCtx, userID, startKey, endKey)
		return err
	})
	g.Go(func() error {
		// advisory data, captured separately so it never fails the load
		scores, scoresErr = c.scores.BurnoutScores(groupCtx, userID, startKey)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		// a newer load or sign-out superseded this one
		return nil
	}

	if err != nil {
		c.state = StateFailed
		c.err = err
		c.tasks = nil
		c.weekDays = nil
		return err
	}

	if scoresErr != nil {
		c.logger.Warning("failed to load burnout scores, rendering zeros: " + scoresErr.Error())
		scores = nil
	}

	c.state = StateReady
	c.err = nil
	c.tasks = weekTasks
	c.weekDays = BuildWeekDays(weekStart, weekTasks, scores, c.now())
	return nil
}

// GoToPreviousWeek shifts the view one week back
func (c *WeekController) GoToPreviousWeek(ctx context.Context) error {
	return c.LoadWeek(ctx, c.currentWeekStartSnapshot().AddDate(0, 0, -date.DaysPerWeek))
}

// GoToNextWeek shifts the view one week forward
func (c *WeekController) GoToNextWeek(ctx context.Context) error {
	return c.LoadWeek(ctx, c.currentWeekStartSnapshot().AddDate(0, 0, date.DaysPerWeek))
}

// GoToCurrentWeek jumps to the week containing now
func (c *WeekController) GoToCurrentWeek(ctx context.Context) error {
	return c.LoadWeek(ctx, date.WeekStart(c.now()))
}

// CreateTask persists a task and reloads the week in full
func (c *WeekController) CreateTask(ctx context.Context, data CreateTaskData) error {
	userID, err := c.identity()
	if err != nil {
		return err
	}

	data.SanitizeDates()
	if _, err := c.repository.Add(ctx, userID, data); err != nil {
		c.recordErr(err)
		return err
	}

	c.invalidateBurnout(ctx, userID, data.ScheduledDate)
	return c.reload(ctx)
}

// UpdateTask applies a partial update and reloads the week in full
func (c *WeekController) UpdateTask(ctx context.Context, taskID string, updates UpdateTaskData) error {
	userID, err := c.identity()
	if err != nil {
		return err
	}

	updates.SanitizeDates()
	if _, err := c.repository.Update(ctx, userID, taskID, updates); err != nil {
		c.recordErr(err)
		return err
	}

	c.invalidateBurnout(ctx, userID, updates.ScheduledDate)
	return c.reload(ctx)
}

// DeleteTask removes a task and reloads the week in full
func (c *WeekController) DeleteTask(ctx context.Context, taskID string) error {
	userID, err := c.identity()
	if err != nil {
		return err
	}

	if err := c.repository.Delete(ctx, userID, taskID); err != nil {
		c.recordErr(err)
		return err
	}

	c.invalidateBurnout(ctx, userID, nil)
	return c.reload(ctx)
}

// ToggleCompletion flips the completed flag of a task in the loaded week.
// A task outside the current window is not fetched; it is reported missing.
func (c *WeekController) ToggleCompletion(ctx context.Context, taskID string) error {
	c.mu.Lock()
	var found *Task
	for i := range c.tasks {
		if c.tasks[i].ID == taskID {
			found = &c.tasks[i]
			break
		}
	}
	if found == nil {
		c.mu.Unlock()
		return ErrTaskNotFound
	}
	completed := !found.Completed
	c.mu.Unlock()

	return c.UpdateTask(ctx, taskID, UpdateTaskData{Completed: &completed})
}

func (c *WeekController) identity() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		return "", ErrUnauthenticated
	}
	return c.userID, nil
}

func (c *WeekController) currentWeekStartSnapshot() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentWeekStart.IsZero() {
		return date.WeekStart(c.now())
	}
	return c.currentWeekStart
}

func (c *WeekController) reload(ctx context.Context) error {
	return c.LoadWeek(ctx, c.currentWeekStartSnapshot())
}

func (c *WeekController) recordErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// invalidateBurnout drops cached scores for the currently viewed week and,
// when the mutation names a date, for the week containing that date
func (c *WeekController) invalidateBurnout(ctx context.Context, userID string, scheduledDate *string) {
	invalidator, ok := c.scores.(burnoutInvalidator)
	if !ok {
		return
	}

	invalidator.Invalidate(ctx, userID, date.Format(c.currentWeekStartSnapshot()))

	if scheduledDate != nil {
		if day, err := date.Parse(*scheduledDate); err == nil {
			invalidator.Invalidate(ctx, userID, date.Format(date.WeekStart(day)))
		}
	}
}
