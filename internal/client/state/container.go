package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StorageKey   = "collabhub-storage"
	AuthTokenKey = "auth-token"
	UserDataKey  = "user-data"

	storageVersion = 0
)

// persisted is the subset of the container that survives restarts.
type persisted struct {
	IsDarkMode     bool            `json:"isDarkMode"`
	Tasks          []Task          `json:"tasks"`
	MainCode       string          `json:"mainCode"`
	SandboxCode    string          `json:"sandboxCode"`
	DesignElements []DesignElement `json:"designElements"`
}

type envelope struct {
	State   persisted `json:"state"`
	Version int       `json:"version"`
}

// stored mirrors persisted on the read side. Keys absent from the blob stay nil
// and leave the matching default in place.
type stored struct {
	State struct {
		IsDarkMode     *bool           `json:"isDarkMode"`
		Tasks          []Task          `json:"tasks"`
		MainCode       *string         `json:"mainCode"`
		SandboxCode    *string         `json:"sandboxCode"`
		DesignElements []DesignElement `json:"designElements"`
	} `json:"state"`
}

// Container is the client's working copy of everything the UI shows.
// It has a single writer; the mutex only guards against a realtime
// callback racing the owner.
type Container struct {
	mu    sync.Mutex
	store Storage
	log   *zap.Logger

	darkMode       bool
	tasks          []Task
	mainCode       string
	sandboxCode    string
	deployment     DeploymentStatus
	testResults    []TestResult
	designElements []DesignElement

	currentPage      string
	activeTab        string
	sidebarCollapsed bool
}

type Option func(*Container)

func WithLogger(log *zap.Logger) Option {
	return func(c *Container) { c.log = log }
}

func New(store Storage, opts ...Option) *Container {
	c := &Container{store: store, log: zap.NewNop()}
	c.reset()
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Container) reset() {
	c.darkMode = false
	c.tasks = DefaultTasks()
	c.mainCode = DefaultMainCode
	c.sandboxCode = DefaultSandboxCode
	c.deployment = DeploymentStatus{Status: DeployIdle, Logs: []string{}}
	c.testResults = nil
	c.designElements = nil
	c.currentPage = "landing"
	c.activeTab = TabCode
	c.sidebarCollapsed = false
}

// Hydrate loads the persisted subset. A missing blob keeps the defaults;
// a corrupt one is logged and ignored.
func (c *Container) Hydrate(ctx context.Context) error {
	raw, err := c.store.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("hydrate state: %w", err)
	}

	var env stored
	if err := sonic.Unmarshal(raw, &env); err != nil {
		c.log.Warn("discarding unreadable client state", zap.Error(err))
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := env.State
	if st.IsDarkMode != nil {
		c.darkMode = *st.IsDarkMode
	}
	if st.Tasks != nil {
		c.tasks = st.Tasks
	}
	if st.MainCode != nil {
		c.mainCode = *st.MainCode
	}
	if st.SandboxCode != nil {
		c.sandboxCode = *st.SandboxCode
	}
	if st.DesignElements != nil {
		c.designElements = st.DesignElements
	}
	return nil
}

func (c *Container) Persist(ctx context.Context) error {
	c.mu.Lock()
	env := envelope{
		State: persisted{
			IsDarkMode:     c.darkMode,
			Tasks:          append([]Task(nil), c.tasks...),
			MainCode:       c.mainCode,
			SandboxCode:    c.sandboxCode,
			DesignElements: append([]DesignElement(nil), c.designElements...),
		},
		Version: storageVersion,
	}
	c.mu.Unlock()

	raw, err := sonic.Marshal(env)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// Close persists one last time.
func (c *Container) Close(ctx context.Context) error {
	return c.Persist(ctx)
}

// SaveSession stores the token and profile returned by login or register.
func (c *Container) SaveSession(ctx context.Context, token string, user Profile) error {
	raw, err := sonic.Marshal(user)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, AuthTokenKey, []byte(token)); err != nil {
		return err
	}
	return c.store.Set(ctx, UserDataKey, raw)
}

// LoadSession reports ok=false when either half of the session is missing.
func (c *Container) LoadSession(ctx context.Context) (string, *Profile, bool, error) {
	tok, err := c.store.Get(ctx, AuthTokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}
	raw, err := c.store.Get(ctx, UserDataKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}

	var p Profile
	if err := sonic.Unmarshal(raw, &p); err != nil {
		c.log.Warn("discarding unreadable user data", zap.Error(err))
		return "", nil, false, nil
	}
	return string(tok), &p, true, nil
}

func (c *Container) ClearSession(ctx context.Context) error {
	if err := c.store.Delete(ctx, AuthTokenKey); err != nil {
		return err
	}
	return c.store.Delete(ctx, UserDataKey)
}

func (c *Container) DarkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.darkMode
}

func (c *Container) ToggleDarkMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.darkMode = !c.darkMode
	return c.darkMode
}

func (c *Container) CurrentPage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

func (c *Container) SetCurrentPage(page string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentPage = page
}

func (c *Container) ActiveTab() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

// SetActiveTab ignores unknown tabs.
func (c *Container) SetActiveTab(tab string) bool {
	switch tab {
	case TabCode, TabDesign, TabTasks, TabDeploy:
	default:
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeTab = tab
	return true
}

func (c *Container) SidebarCollapsed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sidebarCollapsed
}

func (c *Container) SetSidebarCollapsed(collapsed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sidebarCollapsed = collapsed
}

func (c *Container) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Task(nil), c.tasks...)
}

// AddTask appends t, assigning an id when it has none.
func (c *Container) AddTask(t Task) Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskTodo
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, t)
	return t
}

func (c *Container) UpdateTask(id string, p TaskPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID != id {
			continue
		}
		t := &c.tasks[i]
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.Assignee != nil {
			t.Assignee = *p.Assignee
		}
		return true
	}
	return false
}

func (c *Container) MoveTask(id string, status TaskStatus) bool {
	return c.UpdateTask(id, TaskPatch{Status: &status})
}

func (c *Container) DeleteTask(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Container) MainCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mainCode
}

func (c *Container) SetMainCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mainCode = code
}

func (c *Container) SandboxCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sandboxCode
}

func (c *Container) SetSandboxCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sandboxCode = code
}

func (c *Container) Deployment() DeploymentStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.deployment
	d.Logs = append([]string(nil), d.Logs...)
	return d
}

func (c *Container) SetDeploymentStatus(d DeploymentStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deployment = d
}

func (c *Container) TestResults() []TestResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]TestResult(nil), c.testResults...)
}

func (c *Container) SetTestResults(results []TestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.testResults = results
}

func (c *Container) DesignElements() []DesignElement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DesignElement(nil), c.designElements...)
}

func (c *Container) AddDesignElement(e DesignElement) DesignElement {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.designElements = append(c.designElements, e)
	return e
}

func (c *Container) UpdateDesignElement(id string, p DesignElementPatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.designElements {
		if c.designElements[i].ID != id {
			continue
		}
		e := &c.designElements[i]
		if p.X != nil {
			e.X = *p.X
		}
		if p.Y != nil {
			e.Y = *p.Y
		}
		if p.Width != nil {
			e.Width = p.Width
		}
		if p.Height != nil {
			e.Height = p.Height
		}
		if p.Radius != nil {
			e.Radius = p.Radius
		}
		if p.Label != nil {
			e.Label = *p.Label
		}
		if p.Color != nil {
			e.Color = *p.Color
		}
		return true
	}
	return false
}

func (c *Container) DeleteDesignElement(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.designElements {
		if c.designElements[i].ID == id {
			c.designElements = append(c.designElements[:i:i], c.designElements[i+1:]...)
			return true
		}
	}
	return false
}
