package assistant

import (
	"fmt"
	"strings"

	"github.com/planweek/planweek-backend/pkg/tasks"
)

const systemPersona = `You are PlanWeek AI, a proactive productivity assistant.
You help the user plan their week without overloading any single day.
You see the user's current week: their scheduled tasks and the load score of every day.
When the user asks to create or plan tasks, call bulk_create_tasks; prefer days with a low load.
When the user asks to move an existing task, call update_task_schedule with the task id from the context.
Resolve relative dates like "tomorrow" or "next Friday" against today's date.
If no tool fits the request, answer briefly in plain text. Never invent task ids.`

// degradedContext replaces the grounding summary when context assembly
// fails; the dispatch still has to attempt a reply
const degradedContext = "The task context could not be loaded right now."

// BuildGroundingContext serializes the user's current week into the compact
// textual summary injected into the model prompt
func BuildGroundingContext(weekTasks []tasks.Task, scores []tasks.BurnoutScore) string {
	var loadLines []string
	for _, score := range scores {
		loadLines = append(loadLines, fmt.Sprintf("  - Day %d: load %.2f", score.DayOfWeek, score.Score))
	}
	loadContext := "No load data."
	if len(loadLines) > 0 {
		loadContext = strings.Join(loadLines, "\n")
	}

	var taskLines []string
	for _, task := range weekTasks {
		scheduled := "unscheduled"
		if task.ScheduledDate != nil {
			scheduled = *task.ScheduledDate
		}
		taskLines = append(taskLines, fmt.Sprintf("- ID: %s, Task: %q, Date: %s, Complexity: %d",
			task.ID, task.Title, scheduled, task.Complexity))
	}
	taskContext := "No scheduled tasks."
	if len(taskLines) > 0 {
		taskContext = strings.Join(taskLines, "\n")
	}

	return fmt.Sprintf("Current week load:\n%s\n\nTasks this week:\n%s", loadContext, taskContext)
}

// BuildPrompt composes the single prompt of one dispatch: persona, today's
// date for relative-date resolution, grounding context, verbatim user query
func BuildPrompt(today string, groundingContext string, query string) string {
	var b strings.Builder

	b.WriteString(systemPersona)
	b.WriteString("\n\nToday is ")
	b.WriteString(today)
	b.WriteString(".\n\n")
	b.WriteString(groundingContext)
	b.WriteString("\n\nUser request: \"")
	b.WriteString(query)
	b.WriteString("\"")

	return b.String()
}
