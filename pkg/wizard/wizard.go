// Package wizard implements the multi step risk assessment wizard. A Wizard owns one
// risk draft, the current step and the tasks created while the wizard is open. All
// network and persistence calls run on handles bound to the wizard lifetime so that
// results arriving after Close are discarded.
package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Step is a wizard step number starting from 1
type Step int

const (
	StepRiskDetails Step = 1
	StepTreatment   Step = 2
	StepTasks       Step = 3
)

var stepLabels = map[Step]string{
	StepRiskDetails: "Risk Assessment",
	StepTreatment:   "Risk Treatment and Planning",
	StepTasks:       "Task Management",
}

func (s Step) Label() string {
	return stepLabels[s]
}

const (
	// ConfirmationPath is the view the wizard navigates to after a successful submit
	ConfirmationPath = "/risk-assessment/saved"

	DefaultFocusArea         = "risk"
	DefaultConfirmationDelay = time.Second
)

// RiskService loads and persists risks
type RiskService interface {
	GetAllRiskIDs(ctx context.Context) ([]string, error)

	// GetRiskByID returns nil without error when the risk does not exist
	GetRiskByID(ctx context.Context, riskID string) (*model.Risk, error)

	// SaveRisk creates or updates the risk with the same risk ID
	SaveRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error)
}

// DepartmentSource lists the departments a session may assign risks to
type DepartmentSource interface {
	ListDepartments(ctx context.Context, session *auth.Session) ([]*model.Department, error)
}

// TaskService stores the session's tasks once the risk they belong to has been saved
type TaskService interface {
	SaveTask(ctx context.Context, task *model.Task) (*model.Task, error)
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

type Option func(*Wizard)

// WithEditRiskID loads the risk with riskID and edits it instead of creating a new one
func WithEditRiskID(riskID string) Option {
	return func(w *Wizard) {
		w.editRiskID = riskID
	}
}

func WithFocusArea(area string) Option {
	return func(w *Wizard) {
		w.focusArea = area
	}
}

// WithOnSubmit sets the callback receiving the persisted risk after Save and Submit
func WithOnSubmit(fn func(*model.Risk)) Option {
	return func(w *Wizard) {
		w.onSubmit = fn
	}
}

func WithTaskService(svc TaskService) Option {
	return func(w *Wizard) {
		w.taskService = svc
	}
}

func WithNavigator(nav Navigator) Option {
	return func(w *Wizard) {
		w.navigator = nav
	}
}

// WithClock replaces time.Now. The clock decides the year of generated risk IDs.
func WithClock(clock func() time.Time) Option {
	return func(w *Wizard) {
		w.clock = clock
	}
}

// WithConfirmationDelay sets how long after Submit the wizard navigates to ConfirmationPath
func WithConfirmationDelay(d time.Duration) Option {
	return func(w *Wizard) {
		w.confirmationDelay = d
	}
}

// Wizard is safe for concurrent use
type Wizard struct {
	session     *auth.Session
	risks       RiskService
	departments DepartmentSource
	taskService TaskService
	navigator   Navigator
	onSubmit    func(*model.Risk)

	editRiskID        string
	focusArea         string
	clock             func() time.Time
	confirmationDelay time.Duration

	mu           sync.Mutex
	step         Step
	draft        *model.Risk
	tasks        []*model.Task
	tasksVersion uint64
	storedTasks  map[model.TaskID]struct{}
	existingIDs  map[string]struct{}
	idsVersion   uint64
	deptList     []*model.Department
	notice       string
	pending      int
	loaded       bool
	closed       bool
	navTimer     *time.Timer
	navigatedTo  string

	step1 memo[step1Key]
	step2 memo[step2Key]
	step3 memo[step3Key]

	// lifetime is cancelled by Close
	lifetime context.Context
	cancel   context.CancelFunc
	group    errgroup.Group
}

// New creates a wizard for session. It starts on the first step with an empty draft;
// call Load to fetch existing risk IDs, departments and the edit target.
func New(session *auth.Session, risks RiskService, departments DepartmentSource, opts ...Option) (*Wizard, error) {
	if session == nil {
		return nil, goerr.Wrap(ErrInvalidArgument, "session is required")
	}
	if risks == nil {
		return nil, goerr.Wrap(ErrInvalidArgument, "risk service is required")
	}
	if departments == nil {
		return nil, goerr.Wrap(ErrInvalidArgument, "department source is required")
	}

	lifetime, cancel := context.WithCancel(context.Background())
	w := &Wizard{
		session:           session,
		risks:             risks,
		departments:       departments,
		navigator:         NavigatorFunc(func(string) {}),
		focusArea:         DefaultFocusArea,
		clock:             time.Now,
		confirmationDelay: DefaultConfirmationDelay,
		step:              StepRiskDetails,
		draft:             &model.Risk{},
		existingIDs:       map[string]struct{}{},
		storedTasks:       map[model.TaskID]struct{}{},
		deptList:          []*model.Department{},
		lifetime:          lifetime,
		cancel:            cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Session returns the session the wizard was created for
func (w *Wizard) Session() *auth.Session {
	return w.session
}

// Editing reports whether the wizard edits an existing risk
func (w *Wizard) Editing() bool {
	return w.editRiskID != ""
}

// callContext returns a context for a call on behalf of the wizard. It carries the
// logger of ctx and the wizard session, and is cancelled when either ctx or the wizard
// lifetime ends.
func (w *Wizard) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.lifetime, cancel)
	callCtx = auth.ContextWithSession(callCtx, w.session)

	return callCtx, func() {
		stop()
		cancel()
	}
}

// taskContext returns a context for a background task. It only ends with the wizard.
func (w *Wizard) taskContext(ctx context.Context) context.Context {
	taskCtx := logging.With(w.lifetime, logging.From(ctx))
	return auth.ContextWithSession(taskCtx, w.session)
}

// Load starts fetching departments, existing risk IDs and, when editing, the edit target.
// It returns immediately; results are applied when they arrive. Use Wait to block until
// loading finishes. Calling Load more than once has no effect.
func (w *Wizard) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return goerr.Wrap(ErrClosed, "cannot load")
	}
	if w.loaded {
		return nil
	}
	w.loaded = true

	taskCtx := w.taskContext(ctx)
	w.pending += 2
	w.group.Go(func() error {
		w.loadDepartments(taskCtx)
		return nil
	})
	w.group.Go(func() error {
		w.loadRisk(taskCtx)
		return nil
	})

	return nil
}

// Wait blocks until every started load task has finished
func (w *Wizard) Wait() error {
	return w.group.Wait()
}

// apply runs fn under the lock unless the wizard was closed in the meantime
func (w *Wizard) apply(fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending--
	if w.closed {
		return false
	}
	fn()
	return true
}

func (w *Wizard) loadDepartments(ctx context.Context) {
	list, err := w.departments.ListDepartments(ctx, w.session)
	if err != nil {
		if ctx.Err() == nil {
			logging.From(ctx).Warn("failed to load departments", "error", err)
		}
		list = []*model.Department{}
	}

	w.apply(func() {
		w.deptList = list
	})
}

func (w *Wizard) loadRisk(ctx context.Context) {
	logger := logging.From(ctx)

	ids, err := w.risks.GetAllRiskIDs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("failed to load risk IDs", "error", err)
		}
		w.apply(func() {})
		return
	}

	var target *model.Risk
	if w.editRiskID != "" {
		target, err = w.risks.GetRiskByID(ctx, w.editRiskID)
		if err != nil && ctx.Err() == nil {
			logger.Warn("failed to load risk", "error", err, riskIDKey, w.editRiskID)
		}
		if err == nil && target == nil {
			logger.Warn("risk to edit does not exist", riskIDKey, w.editRiskID)
		}
	}

	w.apply(func() {
		w.existingIDs = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			w.existingIDs[id] = struct{}{}
		}
		w.idsVersion++

		switch {
		case target != nil:
			w.draft = target.Clone()
		case w.editRiskID == "" && w.draft.RiskID == "":
			w.draft.RiskID = model.NextRiskID(w.clock().Year(), ids)
		}
	})
}

// Close cancels pending loads and a scheduled navigation. Results arriving later are
// dropped. Close blocks until running load tasks return.
func (w *Wizard) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.cancel()
	if w.navTimer != nil {
		w.navTimer.Stop()
		w.navTimer = nil
	}
	w.mu.Unlock()

	return w.group.Wait()
}

// Closed reports whether Close was called
func (w *Wizard) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
