package tasks

// MaxBurnoutScore is the daily load capacity all tier percentages are
// relative to. The canonical scale maxes out at 20; tier logic never
// hardcodes boundaries derived from it.
const MaxBurnoutScore = 20.0

// Severity is the visual tier a burnout score falls into
type Severity struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ClassifyBurnout maps a raw burnout score to its severity tier on the
// canonical scale
func ClassifyBurnout(score float64) Severity {
	return ClassifyBurnoutScale(score, MaxBurnoutScore)
}

// ClassifyBurnoutScale maps a raw score to a tier relative to an explicit
// maximum capacity. Tiers sit at the quartiles: <=25% Relaxed, <=50%
// Balanced, <=75% Busy, above that Overloaded.
func ClassifyBurnoutScale(score float64, max float64) Severity {
	percentage := score / max
	switch {
	case percentage <= 0.25:
		return Severity{Label: "Relaxed", Color: "#4CAF50"}
	case percentage <= 0.5:
		return Severity{Label: "Balanced", Color: "#FFC107"}
	case percentage <= 0.75:
		return Severity{Label: "Busy", Color: "#FF9800"}
	default:
		return Severity{Label: "Overloaded", Color: "#F44336"}
	}
}

// BurnoutFillPercent is the bar fill for a score, capped at 100
func BurnoutFillPercent(score float64) float64 {
	fill := score / MaxBurnoutScore * 100
	if fill > 100 {
		return 100
	}
	return fill
}
