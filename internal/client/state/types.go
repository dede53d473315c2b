package state

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "inprogress"
	TaskDone       TaskStatus = "done"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee,omitempty"`
}

// TaskPatch carries the fields to overwrite; nil fields are kept.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *string
	Assignee    *string
}

type TestResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Duration int    `json:"duration,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Deployment stages shown by the status panel.
const (
	DeployIdle      = "idle"
	DeployBuilding  = "building"
	DeployTesting   = "testing"
	DeployDeploying = "deploying"
	DeploySuccess   = "success"
	DeployFailed    = "failed"
)

type DeploymentStatus struct {
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Logs         []string   `json:"logs"`
	LastDeployed *time.Time `json:"lastDeployed,omitempty"`
}

type ElementType string

const (
	ElementBox    ElementType = "box"
	ElementCircle ElementType = "circle"
	ElementArrow  ElementType = "arrow"
)

type DesignElement struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  *float64    `json:"width,omitempty"`
	Height *float64    `json:"height,omitempty"`
	Radius *float64    `json:"radius,omitempty"`
	Label  string      `json:"label"`
	Color  string      `json:"color"`
}

type DesignElementPatch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	Radius *float64
	Label  *string
	Color  *string
}

// Profile is the cached copy of the signed-in user.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Tabs of the dashboard.
const (
	TabCode   = "code"
	TabDesign = "design"
	TabTasks  = "tasks"
	TabDeploy = "deploy"
)
