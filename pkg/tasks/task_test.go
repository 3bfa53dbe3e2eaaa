package tasks

import "testing"

func TestSanitizeDatesOnCreate(t *testing.T) {
	tests := []struct {
		name      string
		scheduled *string
		deadline  *string
		wantSched *string
		wantDead  *string
	}{
		{
			name:      "empty strings become absent",
			scheduled: strPtr(""),
			deadline:  strPtr(""),
		},
		{
			name:      "whitespace becomes absent",
			scheduled: strPtr("   "),
		},
		{
			name:      "valid dates survive",
			scheduled: strPtr("2024-05-02"),
			deadline:  strPtr("2024-05-04"),
			wantSched: strPtr("2024-05-02"),
			wantDead:  strPtr("2024-05-04"),
		},
		{
			name: "absent dates stay absent",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := CreateTaskData{
				Title:         "Test",
				ScheduledDate: test.scheduled,
				Deadline:      test.deadline,
			}
			data.SanitizeDates()

			assertDate(t, "ScheduledDate", data.ScheduledDate, test.wantSched)
			assertDate(t, "Deadline", data.Deadline, test.wantDead)
		})
	}
}

func TestSanitizeDatesOnUpdate(t *testing.T) {
	updates := UpdateTaskData{
		ScheduledDate: strPtr(""),
		Deadline:      strPtr("2024-06-01"),
	}
	updates.SanitizeDates()

	if updates.ScheduledDate != nil {
		t.Errorf("ScheduledDate = %q, want nil", *updates.ScheduledDate)
	}
	if updates.Deadline == nil || *updates.Deadline != "2024-06-01" {
		t.Error("Deadline should be untouched")
	}
}

func assertDate(t *testing.T, field string, got *string, want *string) {
	t.Helper()

	if want == nil {
		if got != nil {
			t.Errorf("%s = %q, want nil", field, *got)
		}
		return
	}
	if got == nil {
		t.Errorf("%s = nil, want %q", field, *want)
		return
	}
	if *got != *want {
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}
