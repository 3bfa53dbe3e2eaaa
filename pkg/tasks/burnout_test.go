package tasks

import "testing"

func TestClassifyBurnout(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
		color string
	}{
		{
			name:  "zero load is relaxed",
			score: 0,
			label: "Relaxed",
			color: "#4CAF50",
		},
		{
			name:  "quarter capacity is still relaxed",
			score: 5,
			label: "Relaxed",
			color: "#4CAF50",
		},
		{
			name:  "just above a quarter is balanced",
			score: 5.01,
			label: "Balanced",
			color: "#FFC107",
		},
		{
			name:  "half capacity is balanced",
			score: 10,
			label: "Balanced",
			color: "#FFC107",
		},
		{
			name:  "above half is busy",
			score: 11,
			label: "Busy",
			color: "#FF9800",
		},
		{
			name:  "three quarters is busy",
			score: 15,
			label: "Busy",
			color: "#FF9800",
		},
		{
			name:  "above three quarters is overloaded",
			score: 16,
			label: "Overloaded",
			color: "#F44336",
		},
		{
			name:  "full capacity is overloaded",
			score: 20,
			label: "Overloaded",
			color: "#F44336",
		},
		{
			name:  "beyond capacity is overloaded",
			score: 37.5,
			label: "Overloaded",
			color: "#F44336",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			severity := ClassifyBurnout(test.score)
			if severity.Label != test.label {
				t.Errorf("ClassifyBurnout(%v).Label = %q, want %q", test.score, severity.Label, test.label)
			}
			if severity.Color != test.color {
				t.Errorf("ClassifyBurnout(%v).Color = %q, want %q", test.score, severity.Color, test.color)
			}
		})
	}
}

func TestClassifyBurnoutScaleTracksMax(t *testing.T) {
	// the same score lands in a different tier when the capacity shrinks
	tests := []struct {
		name  string
		score float64
		max   float64
		label string
	}{
		{name: "4 of 20 is relaxed", score: 4, max: 20, label: "Relaxed"},
		{name: "4 of 5 is overloaded", score: 4, max: 5, label: "Overloaded"},
		{name: "2.5 of 5 is balanced", score: 2.5, max: 5, label: "Balanced"},
		{name: "3 of 5 is busy", score: 3, max: 5, label: "Busy"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			severity := ClassifyBurnoutScale(test.score, test.max)
			if severity.Label != test.label {
				t.Errorf("ClassifyBurnoutScale(%v, %v).Label = %q, want %q", test.score, test.max, severity.Label, test.label)
			}
		})
	}
}

func TestBurnoutFillPercent(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{name: "empty", score: 0, want: 0},
		{name: "half", score: 10, want: 50},
		{name: "full", score: 20, want: 100},
		{name: "overflow caps at 100", score: 42, want: 100},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := BurnoutFillPercent(test.score); got != test.want {
				t.Errorf("BurnoutFillPercent(%v) = %v, want %v", test.score, got, test.want)
			}
		})
	}
}
