package tasks

import (
	"time"

	"github.com/planweek/planweek-backend/pkg/date"
)

// BuildWeekDays buckets a flat task list into the seven days of the week
// starting at weekStart (a Monday). A task lands in bucket i iff its
// scheduled date equals weekStart+i at calendar-day granularity. Burnout
// scores arrive 1-based with Monday = 1 and are re-mapped onto the 0-based
// bucket offsets; a missing day defaults to 0.
func BuildWeekDays(weekStart time.Time, weekTasks []Task, scores []BurnoutScore, now time.Time) []WeekDay {
	scoreByDay := make(map[int]float64, len(scores))
	for _, score := range scores {
		scoreByDay[score.DayOfWeek] = score.Score
	}

	days := make([]WeekDay, 0, date.DaysPerWeek)
	for i := 0; i < date.DaysPerWeek; i++ {
		dayDate := weekStart.AddDate(0, 0, i)
		dayKey := date.Format(dayDate)

		dayTasks := []Task{}
		for _, task := range weekTasks {
			if task.ScheduledDate != nil && *task.ScheduledDate == dayKey {
				dayTasks = append(dayTasks, task)
			}
		}

		days = append(days, WeekDay{
			Date:         dayDate,
			DayName:      dayDate.Weekday().String(),
			DayNumber:    dayDate.Day(),
			IsToday:      date.IsToday(dayDate, now),
			Tasks:        dayTasks,
			BurnoutScore: scoreByDay[i+1],
		})
	}

	return days
}
