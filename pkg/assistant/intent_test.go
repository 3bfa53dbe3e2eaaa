package assistant

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"

	"github.com/planweek/planweek-backend/pkg/tasks"
)

func TestParseIntentRejectsBadProposals(t *testing.T) {
	tests := []struct {
		name string
		call FunctionCall
	}{
		{
			name: "unknown tool",
			call: FunctionCall{Name: "drop_all_tasks", Args: json.RawMessage(`{}`)},
		},
		{
			name: "malformed json",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": [`)},
		},
		{
			name: "empty task array",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": []}`)},
		},
		{
			name: "draft without a date",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": [{"title": "x", "complexity": 3}]}`)},
		},
		{
			name: "draft with a malformed date",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": [{"title": "x", "scheduled_date": "tomorrow", "complexity": 3}]}`)},
		},
		{
			name: "draft with complexity out of range",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": [{"title": "x", "scheduled_date": "2024-05-02", "complexity": 9}]}`)},
		},
		{
			name: "reschedule without a task id",
			call: FunctionCall{Name: ToolUpdateTaskSchedule, Args: json.RawMessage(`{"new_date": "2024-05-02"}`)},
		},
		{
			name: "reschedule with a malformed date",
			call: FunctionCall{Name: ToolUpdateTaskSchedule, Args: json.RawMessage(`{"task_id": "a", "new_date": "02.05.2024"}`)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseIntent(&test.call)
			if !errors.Is(err, ErrInvalidToolCall) {
				t.Errorf("ParseIntent returned %v, want ErrInvalidToolCall", err)
			}
		})
	}
}

func TestParseIntentAcceptsBothSchemaVariants(t *testing.T) {
	tests := []struct {
		name string
		call FunctionCall
		want MutationIntent
	}{
		{
			name: "bulk create",
			call: FunctionCall{Name: ToolBulkCreateTasks, Args: json.RawMessage(`{"tasks": [{"title": "x", "scheduled_date": "2024-05-02", "complexity": 3}]}`)},
			want: CreateMany{Tasks: []TaskDraft{{Title: "x", ScheduledDate: "2024-05-02", Complexity: 3}}},
		},
		{
			name: "reschedule by id",
			call: FunctionCall{Name: ToolUpdateTaskSchedule, Args: json.RawMessage(`{"task_id": "a", "new_date": "2024-05-02"}`)},
			want: RescheduleByID{TaskID: "a", NewDate: "2024-05-02"},
		},
		{
			name: "single create variant",
			call: FunctionCall{Name: ToolCreateTask, Args: json.RawMessage(`{"title": "x", "scheduled_date": "2024-05-02"}`)},
			want: CreateOne{Title: "x", ScheduledDate: "2024-05-02"},
		},
		{
			name: "reschedule by title variant",
			call: FunctionCall{Name: ToolRescheduleTask, Args: json.RawMessage(`{"task_title": "report", "new_date": "2024-05-02"}`)},
			want: RescheduleByTitle{TitleQuery: "report", NewDate: "2024-05-02"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			intent, err := ParseIntent(&test.call)
			if err != nil {
				t.Fatalf("ParseIntent returned error: %v", err)
			}

			switch want := test.want.(type) {
			case CreateMany:
				got, ok := intent.(CreateMany)
				if !ok || len(got.Tasks) != len(want.Tasks) || got.Tasks[0] != want.Tasks[0] {
					t.Errorf("ParseIntent = %#v, want %#v", intent, test.want)
				}
			default:
				if intent != test.want {
					t.Errorf("ParseIntent = %#v, want %#v", intent, test.want)
				}
			}
		})
	}
}

func TestResolveByTitle(t *testing.T) {
	week := []tasks.Task{
		{ID: "a", Title: "Write quarterly report"},
		{ID: "b", Title: "Review report draft"},
		{ID: "c", Title: "Team retro"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{name: "case-insensitive substring", query: "REPORT", wantIDs: []string{"a", "b"}},
		{name: "unique match", query: "retro", wantIDs: []string{"c"}},
		{name: "no match", query: "dentist", wantIDs: nil},
		{name: "blank query matches nothing", query: "   ", wantIDs: nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			matches := ResolveByTitle(week, test.query)
			if len(matches) != len(test.wantIDs) {
				t.Fatalf("ResolveByTitle(%q) returned %d matches, want %d", test.query, len(matches), len(test.wantIDs))
			}
			for i, match := range matches {
				if match.ID != test.wantIDs[i] {
					t.Errorf("match %d is %q, want %q", i, match.ID, test.wantIDs[i])
				}
			}
		})
	}
}
