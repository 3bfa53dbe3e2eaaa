package assistant

// Schema is a Gemini-style parameter schema node
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Tool is one function declaration offered to the model
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters"`
}

// Tool names of the canonical (bulk) schema exposed to the model
const (
	ToolBulkCreateTasks    = "bulk_create_tasks"
	ToolUpdateTaskSchedule = "update_task_schedule"
)

// Tool names of the single-task variant, accepted when a model emits them
// but not advertised
const (
	ToolCreateTask     = "create_task"
	ToolRescheduleTask = "reschedule_task"
)

// TaskTools declares the fixed mutation surface the model may propose.
// Execution stays under the dispatcher's control.
func TaskTools() []Tool {
	return []Tool{
		{
			Name:        ToolBulkCreateTasks,
			Description: "Creates one or more new tasks for the user. Use this when the user asks to plan their day or week, or to add tasks.",
			Parameters: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"tasks": {
						Type:        "ARRAY",
						Description: "Array of objects, each one a new task.",
						Items: &Schema{
							Type: "OBJECT",
							Properties: map[string]*Schema{
								"title":          {Type: "STRING", Description: "Task title"},
								"description":    {Type: "STRING", Description: "What has to be done"},
								"scheduled_date": {Type: "STRING", Description: "Date the task is planned for, YYYY-MM-DD"},
								"deadline":       {Type: "STRING", Description: "Optional task deadline, YYYY-MM-DD"},
								"complexity":     {Type: "NUMBER", Description: "Task complexity from 1 to 5"},
							},
							Required: []string{"title", "scheduled_date", "complexity"},
						},
					},
				},
				Required: []string{"tasks"},
			},
		},
		{
			Name:        ToolUpdateTaskSchedule,
			Description: "Moves ONE existing task to another date.",
			Parameters: &Schema{
				Type: "OBJECT",
				Properties: map[string]*Schema{
					"task_id":  {Type: "STRING", Description: "ID of the task to move"},
					"new_date": {Type: "STRING", Description: "New date for the task, YYYY-MM-DD"},
				},
				Required: []string{"task_id", "new_date"},
			},
		},
	}
}
