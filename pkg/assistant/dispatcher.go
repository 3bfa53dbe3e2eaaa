package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/planweek/planweek-backend/pkg/date"
	"github.com/planweek/planweek-backend/pkg/locking"
	"github.com/planweek/planweek-backend/pkg/logger"
	"github.com/planweek/planweek-backend/pkg/tasks"
)

// overridable for tests
var now = time.Now

const mutationLockTTL = 30 * time.Second

// Reply is the dispatch outcome handed back to the chat UI. A failed
// resolution or mutation still produces a Reply (error-shaped, rendered by
// the client) instead of a transport failure.
type Reply struct {
	Response     string `json:"response"`
	TasksUpdated bool   `json:"tasks_updated"`
	Error        string `json:"error,omitempty"`
}

type burnoutInvalidator interface {
	Invalidate(ctx context.Context, userID string, weekStart string)
}

// Dispatcher converts one free-text utterance into at most one store
// mutation. The model only proposes a structured call; the dispatcher
// validates and executes it.
type Dispatcher struct {
	Model          ModelInterface
	TaskRepository tasks.TaskRepositoryInterface
	Burnout        tasks.BurnoutSourceInterface
	Conversations  ConversationRepositoryInterface
	Locker         locking.LockerInterface
	Logger         logger.Interface
}

// Dispatch runs one stateless request-response cycle: ground, prompt, one
// model invocation, optional validated mutation, response synthesis. No
// retries anywhere; a failed upstream call surfaces immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, query string) (*Reply, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingQuery
	}
	if userID == "" {
		return nil, tasks.ErrUnauthenticated
	}

	groundingContext, weekTasks := d.ground(ctx, userID)

	prompt := BuildPrompt(date.Format(now()), groundingContext, query)

	result, err := d.Model.Generate(ctx, prompt, TaskTools())
	if err != nil {
		if !errors.Is(err, ErrUpstream) {
			err = errors.Wrap(ErrUpstream, err.Error())
		}
		return nil, err
	}

	var reply *Reply
	switch {
	case result.Call != nil:
		reply = d.execute(ctx, userID, result.Call, weekTasks)
	case result.Text != "":
		// free text passes through verbatim, no mutation
		reply = &Reply{Response: result.Text}
	default:
		return nil, errors.Wrap(ErrUpstream, "model returned neither text nor a tool call")
	}

	d.saveTurn(ctx, userID, query, reply, groundingContext)

	return reply, nil
}

// ground assembles the model's view of the user's current week. On failure
// it degrades to a placeholder context instead of aborting the dispatch.
func (d *Dispatcher) ground(ctx context.Context, userID string) (string, []tasks.Task) {
	weekStart := date.WeekStart(now())
	startKey := date.Format(weekStart)
	endKey := date.Format(date.WeekEnd(weekStart))

	var weekTasks []tasks.Task
	var scores []tasks.BurnoutScore
	var scoresErr error

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weekTasks, err = d.TaskRepository.FindByDateRange(groupCtx, userID, startKey, endKey)
		return err
	})
	g.Go(func() error {
		scores, scoresErr = d.Burnout.BurnoutScores(groupCtx, userID, startKey)
		return nil
	})

	if err := g.Wait(); err != nil {
		d.Logger.Warning("grounding context unavailable, dispatching degraded: " + err.Error())
		return degradedContext, nil
	}
	if scoresErr != nil {
		d.Logger.Warning("grounding without burnout scores: " + scoresErr.Error())
		scores = nil
	}

	return BuildGroundingContext(weekTasks, scores), weekTasks
}

// execute validates a proposed call and runs the corresponding store
// mutation under a per-user lock. Rejections and store failures come back as
// error-shaped replies so the user's query is never left unanswered.
func (d *Dispatcher) execute(ctx context.Context, userID string, call *FunctionCall, weekTasks []tasks.Task) *Reply {
	intent, err := ParseIntent(call)
	if err != nil {
		return &Reply{
			Response: "I could not act on that request, could you rephrase it?",
			Error:    err.Error(),
		}
	}

	if intent, ok := intent.(RescheduleByTitle); ok {
		matches := ResolveByTitle(weekTasks, intent.TitleQuery)
		if len(matches) == 0 {
			return &Reply{
				Response: fmt.Sprintf("I couldn't find a task matching %q in your current week. Which task did you mean?", intent.TitleQuery),
			}
		}
		return d.executeIntent(ctx, userID, RescheduleByID{TaskID: matches[0].ID, NewDate: intent.NewDate})
	}

	return d.executeIntent(ctx, userID, intent)
}

func (d *Dispatcher) executeIntent(ctx context.Context, userID string, intent MutationIntent) *Reply {
	lock, err := d.Locker.Acquire(ctx, "assistant:"+userID, mutationLockTTL)
	if err != nil {
		return &Reply{
			Response: "I couldn't change your plan right now, please try again.",
			Error:    err.Error(),
		}
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			d.Logger.Warning("could not release assistant lock: " + err.Error())
		}
	}()

	switch intent := intent.(type) {
	case CreateMany:
		drafts := make([]tasks.CreateTaskData, 0, len(intent.Tasks))
		for _, draft := range intent.Tasks {
			drafts = append(drafts, draft.CreateData())
		}

		created, err := d.TaskRepository.BulkCreate(ctx, userID, drafts)
		if err != nil {
			return mutationFailed("I couldn't add those tasks to your plan.", err)
		}

		for _, draft := range intent.Tasks {
			d.invalidateBurnout(ctx, userID, draft.ScheduledDate)
		}
		return &Reply{
			Response:     fmt.Sprintf("Done! I added %d new tasks to your plan.", created),
			TasksUpdated: true,
		}

	case RescheduleByID:
		if err := d.TaskRepository.UpdateSchedule(ctx, userID, intent.TaskID, intent.NewDate); err != nil {
			return mutationFailed("I couldn't move that task.", err)
		}

		d.invalidateBurnout(ctx, userID, intent.NewDate)
		return &Reply{
			Response:     fmt.Sprintf("Okay, I moved the task to %s.", intent.NewDate),
			TasksUpdated: true,
		}

	case CreateOne:
		data := tasks.CreateTaskData{
			Title:         intent.Title,
			Importance:    tasks.ImportanceMedium,
			Complexity:    3,
			ScheduledDate: &intent.ScheduledDate,
		}
		if _, err := d.TaskRepository.Add(ctx, userID, data); err != nil {
			return mutationFailed("I couldn't create that task.", err)
		}

		d.invalidateBurnout(ctx, userID, intent.ScheduledDate)
		return &Reply{
			Response:     fmt.Sprintf("Done! I scheduled %q for %s.", intent.Title, intent.ScheduledDate),
			TasksUpdated: true,
		}
	}

	return &Reply{
		Response: "I could not act on that request, could you rephrase it?",
		Error:    "unsupported intent",
	}
}

func (d *Dispatcher) invalidateBurnout(ctx context.Context, userID string, scheduledDate string) {
	invalidator, ok := d.Burnout.(burnoutInvalidator)
	if !ok {
		return
	}

	if day, err := date.Parse(scheduledDate); err == nil {
		invalidator.Invalidate(ctx, userID, date.Format(date.WeekStart(day)))
	}
}

func (d *Dispatcher) saveTurn(ctx context.Context, userID string, query string, reply *Reply, groundingContext string) {
	err := d.Conversations.SaveTurn(ctx, &ConversationTurn{
		UserID:   userID,
		Message:  query,
		Response: reply.Response,
		Context:  groundingContext,
	})
	if err != nil {
		d.Logger.Warning("could not save conversation turn: " + err.Error())
	}
}

func mutationFailed(message string, err error) *Reply {
	return &Reply{
		Response: message,
		Error:    err.Error(),
	}
}
