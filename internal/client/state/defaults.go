package state

const (
	DefaultMainCode    = "// CollabHub Main Editor\n"
	DefaultSandboxCode = "// Personal Sandbox - Experiment Here\n"
)

// DefaultTasks is the board shown before anything was persisted.
func DefaultTasks() []Task {
	return []Task{
		{ID: "1", Title: "Implement user authentication", Description: "Set up OAuth and session management", Status: TaskInProgress, Priority: "high", Assignee: "Alex Chen"},
		{ID: "2", Title: "Design dashboard components", Description: "Create reusable UI components for the main dashboard", Status: TaskTodo, Priority: "medium", Assignee: "Sarah Kim"},
		{ID: "3", Title: "Set up CI/CD pipeline", Description: "Configure automated testing and deployment", Status: TaskDone, Priority: "high", Assignee: "Mike Johnson"},
		{ID: "4", Title: "API documentation", Description: "Document all REST endpoints and WebSocket events", Status: TaskTodo, Priority: "medium", Assignee: "Emma Wilson"},
	}
}
