package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/locking"
	"github.com/planweek/planweek-backend/pkg/tasks"
)

type testLogger struct{}

func (testLogger) Error(string, error) {}
func (testLogger) Warning(string)      {}
func (testLogger) Info(string)         {}
func (testLogger) Debug(string)        {}
func (testLogger) Fatal(error)         {}

// MockModel is a canned-response model for testing
type MockModel struct {
	Result  *ModelResult
	Err     error
	Prompts []string
}

// Generate records the prompt and returns the canned result
func (m *MockModel) Generate(_ context.Context, prompt string, _ []Tool) (*ModelResult, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

func strPtr(value string) *string {
	return &value
}

func overrideNow(t *testing.T, fixed time.Time) {
	t.Helper()

	previous := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = previous })
}

func setupDispatcher(model *MockModel, repository *tasks.MockTaskRepository) (*Dispatcher, *MockConversationRepository) {
	conversations := &MockConversationRepository{}
	dispatcher := &Dispatcher{
		Model:          model,
		TaskRepository: repository,
		Burnout:        repository,
		Conversations:  conversations,
		Locker:         locking.NewLockerMemory(),
		Logger:         testLogger{},
	}
	return dispatcher, conversations
}

func TestDispatchBulkCreate(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolBulkCreateTasks,
		Args: json.RawMessage(`{"tasks": [
			{"title": "Write report", "scheduled_date": "2024-05-02", "complexity": 3},
			{"title": "Review code", "scheduled_date": "2024-05-03", "complexity": 2}
		]}`),
	}}}
	repository := &tasks.MockTaskRepository{}
	dispatcher, conversations := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "plan my week")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !reply.TasksUpdated {
		t.Error("a successful bulk create must set tasks_updated")
	}
	if !strings.Contains(reply.Response, "2 new tasks") {
		t.Errorf("response = %q, want the created count in it", reply.Response)
	}
	if repository.BulkCalls != 1 {
		t.Errorf("bulk create ran %d times, want 1", repository.BulkCalls)
	}
	if len(repository.Tasks) != 2 {
		t.Fatalf("store holds %d tasks, want 2", len(repository.Tasks))
	}
	if repository.Tasks[0].Importance != tasks.ImportanceMedium {
		t.Errorf("created task importance = %q, want medium", repository.Tasks[0].Importance)
	}
	if len(conversations.Turns) != 1 {
		t.Fatalf("conversation log holds %d turns, want 1", len(conversations.Turns))
	}
	if conversations.Turns[0].Message != "plan my week" {
		t.Errorf("logged message = %q, want the verbatim query", conversations.Turns[0].Message)
	}
}

func TestDispatchRescheduleByID(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{
		Tasks: []*tasks.Task{{ID: "task-1", UserID: "user-1", Title: "Write report", ScheduledDate: strPtr("2024-04-30")}},
	}
	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolUpdateTaskSchedule,
		Args: json.RawMessage(`{"task_id": "task-1", "new_date": "2024-05-03"}`),
	}}}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "move the report to friday")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !reply.TasksUpdated {
		t.Error("a successful reschedule must set tasks_updated")
	}
	if got := *repository.Tasks[0].ScheduledDate; got != "2024-05-03" {
		t.Errorf("task scheduled date = %q, want \"2024-05-03\"", got)
	}
}

func TestDispatchRescheduleByTitleResolvesAgainstWeek(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{
		Tasks: []*tasks.Task{{ID: "task-1", UserID: "user-1", Title: "Write quarterly report", ScheduledDate: strPtr("2024-04-30")}},
	}
	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolRescheduleTask,
		Args: json.RawMessage(`{"task_title": "quarterly REPORT", "new_date": "2024-05-03"}`),
	}}}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "push the report")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if !reply.TasksUpdated {
		t.Error("a resolved by-title reschedule must set tasks_updated")
	}
	if got := *repository.Tasks[0].ScheduledDate; got != "2024-05-03" {
		t.Errorf("task scheduled date = %q, want \"2024-05-03\"", got)
	}
}

func TestDispatchRescheduleByTitleWithoutMatchAsksBack(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{
		Tasks: []*tasks.Task{{ID: "task-1", UserID: "user-1", Title: "Write report", ScheduledDate: strPtr("2024-04-30")}},
	}
	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolRescheduleTask,
		Args: json.RawMessage(`{"task_title": "dentist", "new_date": "2024-05-03"}`),
	}}}
	dispatcher, conversations := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "move the dentist appointment")
	if err != nil {
		t.Fatalf("an unresolved title must not fail the dispatch: %v", err)
	}

	if reply.TasksUpdated {
		t.Error("no mutation happened, tasks_updated must stay false")
	}
	if !strings.Contains(reply.Response, "dentist") {
		t.Errorf("clarification = %q, want the searched title in it", reply.Response)
	}
	if repository.UpdateCalls != 0 {
		t.Errorf("the store was mutated %d times, want 0", repository.UpdateCalls)
	}
	if got := *repository.Tasks[0].ScheduledDate; got != "2024-04-30" {
		t.Errorf("task scheduled date = %q, must be untouched", got)
	}
	if len(conversations.Turns) != 1 {
		t.Errorf("a clarification is still an answered query, %d turns logged", len(conversations.Turns))
	}
}

func TestDispatchFreeTextPassesThrough(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	model := &MockModel{Result: &ModelResult{Text: "Your Friday looks light, Thursday is packed."}}
	repository := &tasks.MockTaskRepository{}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "how does my week look?")
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if reply.Response != "Your Friday looks light, Thursday is packed." {
		t.Errorf("response = %q, want the model text verbatim", reply.Response)
	}
	if reply.TasksUpdated {
		t.Error("free text must not set tasks_updated")
	}
	if repository.BulkCalls != 0 || repository.UpdateCalls != 0 {
		t.Error("free text must not touch the store")
	}
}

func TestDispatchRejectsEmptyQuery(t *testing.T) {
	model := &MockModel{}
	dispatcher, _ := setupDispatcher(model, &tasks.MockTaskRepository{})

	_, err := dispatcher.Dispatch(context.Background(), "user-1", "   ")
	if !errors.Is(err, ErrMissingQuery) {
		t.Errorf("Dispatch returned %v, want ErrMissingQuery", err)
	}
	if len(model.Prompts) != 0 {
		t.Error("an empty query must never reach the model")
	}
}

func TestDispatchRequiresIdentity(t *testing.T) {
	dispatcher, _ := setupDispatcher(&MockModel{}, &tasks.MockTaskRepository{})

	_, err := dispatcher.Dispatch(context.Background(), "", "plan my week")
	if !errors.Is(err, tasks.ErrUnauthenticated) {
		t.Errorf("Dispatch returned %v, want ErrUnauthenticated", err)
	}
}

func TestDispatchWrapsModelFailures(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	model := &MockModel{Err: errors.New("503 service unavailable")}
	dispatcher, conversations := setupDispatcher(model, &tasks.MockTaskRepository{})

	_, err := dispatcher.Dispatch(context.Background(), "user-1", "plan my week")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Dispatch returned %v, want ErrUpstream", err)
	}
	if len(conversations.Turns) != 0 {
		t.Error("a failed dispatch must not be logged as an answered turn")
	}
}

func TestDispatchRejectsEmptyModelResult(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	model := &MockModel{Result: &ModelResult{}}
	dispatcher, _ := setupDispatcher(model, &tasks.MockTaskRepository{})

	_, err := dispatcher.Dispatch(context.Background(), "user-1", "plan my week")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("Dispatch returned %v, want ErrUpstream", err)
	}
}

func TestDispatchDegradesWhenGroundingFails(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{FailTasks: errors.New("connection refused")}
	model := &MockModel{Result: &ModelResult{Text: "I cannot see your week right now, but happy to help."}}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "how does my week look?")
	if err != nil {
		t.Fatalf("a grounding failure must not abort the dispatch: %v", err)
	}

	if len(model.Prompts) != 1 {
		t.Fatalf("model was called %d times, want 1", len(model.Prompts))
	}
	if !strings.Contains(model.Prompts[0], degradedContext) {
		t.Error("the degraded placeholder must replace the grounding context")
	}
	if reply.Response == "" {
		t.Error("the dispatch must still answer")
	}
}

func TestDispatchRejectsInvalidToolArguments(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{}
	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolBulkCreateTasks,
		Args: json.RawMessage(`{"tasks": [{"title": "No date", "complexity": 3}]}`),
	}}}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "plan my week")
	if err != nil {
		t.Fatalf("a rejected proposal must not fail the dispatch: %v", err)
	}

	if reply.TasksUpdated {
		t.Error("nothing was executed, tasks_updated must stay false")
	}
	if reply.Error == "" {
		t.Error("the reply must carry the rejection reason")
	}
	if len(repository.Tasks) != 0 {
		t.Errorf("the store holds %d tasks, want 0", len(repository.Tasks))
	}
}

func TestDispatchReportsMutationFailuresInBand(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{FailWrites: errors.New("permission denied")}
	model := &MockModel{Result: &ModelResult{Call: &FunctionCall{
		Name: ToolBulkCreateTasks,
		Args: json.RawMessage(`{"tasks": [{"title": "Write report", "scheduled_date": "2024-05-02", "complexity": 3}]}`),
	}}}
	dispatcher, _ := setupDispatcher(model, repository)

	reply, err := dispatcher.Dispatch(context.Background(), "user-1", "plan my week")
	if err != nil {
		t.Fatalf("a mutation failure renders in the reply, not as an error: %v", err)
	}

	if reply.TasksUpdated {
		t.Error("a failed mutation must not set tasks_updated")
	}
	if !strings.Contains(reply.Error, "permission denied") {
		t.Errorf("reply error = %q, want the store failure in it", reply.Error)
	}
}

func TestDispatchPromptCarriesGroundingAndQuery(t *testing.T) {
	overrideNow(t, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC))

	repository := &tasks.MockTaskRepository{
		Tasks: []*tasks.Task{{ID: "task-1", UserID: "user-1", Title: "Write report", ScheduledDate: strPtr("2024-04-30"), Complexity: 3}},
		Scores: map[string][]tasks.BurnoutScore{
			"2024-04-29": {{DayOfWeek: 2, Score: 7.5}},
		},
	}
	model := &MockModel{Result: &ModelResult{Text: "Looks busy."}}
	dispatcher, _ := setupDispatcher(model, repository)

	if _, err := dispatcher.Dispatch(context.Background(), "user-1", "how is tuesday?"); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	prompt := model.Prompts[0]
	for _, want := range []string{"task-1", "Write report", "Day 2: load 7.50", "Today is 2024-05-01", `"how is tuesday?"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt misses %q", want)
		}
	}
}
