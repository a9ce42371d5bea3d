package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/secmon-lab/themis/pkg/wizard"
)

// WizardUseCase hosts risk assessment wizards on the server. Each wizard belongs to the
// user who opened it.
type WizardUseCase struct {
	risk    *RiskUseCase
	task    *TaskUseCase
	user    *UserUseCase
	metrics *wizardMetrics
	clock   func() time.Time

	// confirmationDelay overrides wizard.DefaultConfirmationDelay when set
	confirmationDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*wizardSession
}

type wizardSession struct {
	id       string
	owner    string
	wizard   *wizard.Wizard
	lastUsed time.Time
}

// NewWizardUseCase creates the use case. Metrics are registered to reg unless it is nil.
func NewWizardUseCase(risk *RiskUseCase, task *TaskUseCase, user *UserUseCase, reg prometheus.Registerer, clock func() time.Time) *WizardUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &WizardUseCase{
		risk:     risk,
		task:     task,
		user:     user,
		metrics:  newWizardMetrics(reg),
		clock:    clock,
		sessions: make(map[string]*wizardSession),
	}
}

// riskAdapter serves wizard.RiskService from the risk use case
type riskAdapter struct {
	risk *RiskUseCase
}

func (a *riskAdapter) GetAllRiskIDs(ctx context.Context) ([]string, error) {
	return a.risk.ListRiskIDs(ctx)
}

func (a *riskAdapter) GetRiskByID(ctx context.Context, riskID string) (*model.Risk, error) {
	risk, err := a.risk.GetRisk(ctx, riskID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return risk, err
}

func (a *riskAdapter) SaveRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	return a.risk.SaveRisk(ctx, risk)
}

// departmentAdapter serves wizard.DepartmentSource from the user use case
type departmentAdapter struct {
	user *UserUseCase
}

func (a *departmentAdapter) ListDepartments(ctx context.Context, _ *auth.Session) ([]*model.Department, error) {
	return a.user.ListDepartments(ctx)
}

// OpenInput selects what a new wizard works on
type OpenInput struct {
	// EditRiskID is the risk to edit. Empty creates a new risk.
	EditRiskID string
	FocusArea  string
}

// Open creates a wizard for session and waits for its initial load
func (uc *WizardUseCase) Open(ctx context.Context, session *auth.Session, input OpenInput) (string, *wizard.View, error) {
	if session == nil {
		return "", nil, goerr.Wrap(ErrUnauthorized, "session is required to open wizard")
	}

	id := uuid.New().String()
	opts := []wizard.Option{
		wizard.WithTaskService(uc.task),
		wizard.WithClock(uc.clock),
		wizard.WithNavigator(wizard.NavigatorFunc(func(path string) {
			uc.navigated(id, path)
		})),
		wizard.WithOnSubmit(func(risk *model.Risk) {
			uc.metrics.submissions.Inc()
		}),
	}
	if input.EditRiskID != "" {
		opts = append(opts, wizard.WithEditRiskID(input.EditRiskID))
	}
	if input.FocusArea != "" {
		opts = append(opts, wizard.WithFocusArea(input.FocusArea))
	}
	if uc.confirmationDelay > 0 {
		opts = append(opts, wizard.WithConfirmationDelay(uc.confirmationDelay))
	}

	w, err := wizard.New(session, &riskAdapter{risk: uc.risk}, &departmentAdapter{user: uc.user}, opts...)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to create wizard")
	}

	if err := w.Load(ctx); err != nil {
		return "", nil, goerr.Wrap(err, "failed to load wizard")
	}
	if err := w.Wait(); err != nil {
		return "", nil, goerr.Wrap(err, "failed to wait for wizard load")
	}

	uc.mu.Lock()
	uc.sessions[id] = &wizardSession{
		id:       id,
		owner:    session.UserID,
		wizard:   w,
		lastUsed: uc.clock(),
	}
	uc.metrics.open.Set(float64(len(uc.sessions)))
	uc.mu.Unlock()

	logging.From(ctx).Info("wizard opened",
		WizardIDKey, id,
		UserIDKey, session.UserID,
		RiskIDKey, input.EditRiskID)

	return id, w.View(), nil
}

// lookup returns the wizard of id owned by session and marks it used
func (uc *WizardUseCase) lookup(session *auth.Session, id string) (*wizard.Wizard, error) {
	if session == nil {
		return nil, goerr.Wrap(ErrUnauthorized, "session is required")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[id]
	if !ok || s.owner != session.UserID {
		return nil, goerr.Wrap(ErrWizardNotFound, "no such wizard", goerr.V(WizardIDKey, id))
	}
	s.lastUsed = uc.clock()
	return s.wizard, nil
}

// Get returns the current view of a wizard
func (uc *WizardUseCase) Get(ctx context.Context, session *auth.Session, id string) (*wizard.View, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	return w.View(), nil
}

// SetFields changes draft fields. Fields are applied in no particular order and stop at the
// first unknown field name.
func (uc *WizardUseCase) SetFields(ctx context.Context, session *auth.Session, id string, fields map[string]string) (*wizard.View, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}

	for name, value := range fields {
		if err := w.SetField(name, value); err != nil {
			if errors.Is(err, model.ErrUnknownField) {
				return nil, goerr.Wrap(ErrValidation, "unknown risk field", goerr.V(FieldKey, name))
			}
			return nil, goerr.Wrap(err, "failed to set field", goerr.V(WizardIDKey, id))
		}
	}
	return w.View(), nil
}

// RegenerateRiskID gives the draft the next free risk ID
func (uc *WizardUseCase) RegenerateRiskID(ctx context.Context, session *auth.Session, id string) (*wizard.View, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	if _, err := w.RegenerateRiskID(); err != nil {
		return nil, goerr.Wrap(err, "failed to regenerate risk ID", goerr.V(WizardIDKey, id))
	}
	return w.View(), nil
}

func (uc *WizardUseCase) AddTask(ctx context.Context, session *auth.Session, id string, task *model.Task) (*model.Task, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	added, err := w.AddTask(ctx, task)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to add task", goerr.V(WizardIDKey, id))
	}
	return added, nil
}

// RemoveTask removes a task from the wizard's task list. The persisted task is kept.
func (uc *WizardUseCase) RemoveTask(ctx context.Context, session *auth.Session, id string, taskID model.TaskID) error {
	w, err := uc.lookup(session, id)
	if err != nil {
		return err
	}
	if !w.RemoveTask(taskID) {
		return goerr.Wrap(ErrNotFound, "task is not in wizard", goerr.V(WizardIDKey, id), goerr.V(TaskIDKey, taskID))
	}
	return nil
}

func (uc *WizardUseCase) Next(ctx context.Context, session *auth.Session, id string) (*wizard.Result, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	return w.Next()
}

func (uc *WizardUseCase) Previous(ctx context.Context, session *auth.Session, id string) (*wizard.Result, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	return w.Previous()
}

func (uc *WizardUseCase) Save(ctx context.Context, session *auth.Session, id string) (*wizard.Result, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	return w.Save(ctx)
}

// Submit persists the draft. The wizard is closed once it navigates to the confirmation view.
func (uc *WizardUseCase) Submit(ctx context.Context, session *auth.Session, id string) (*wizard.Result, error) {
	w, err := uc.lookup(session, id)
	if err != nil {
		return nil, err
	}
	result, err := w.Submit(ctx)
	if errors.Is(err, wizard.ErrSaveFailed) {
		uc.metrics.submitFailures.Inc()
	}
	return result, err
}

func (uc *WizardUseCase) Close(ctx context.Context, session *auth.Session, id string) error {
	if _, err := uc.lookup(session, id); err != nil {
		return err
	}
	return uc.closeSession(ctx, id)
}

func (uc *WizardUseCase) closeSession(ctx context.Context, id string) error {
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	if ok {
		delete(uc.sessions, id)
	}
	uc.metrics.open.Set(float64(len(uc.sessions)))
	uc.mu.Unlock()

	if !ok {
		return goerr.Wrap(ErrWizardNotFound, "no such wizard", goerr.V(WizardIDKey, id))
	}
	if err := s.wizard.Close(); err != nil {
		return goerr.Wrap(err, "failed to close wizard", goerr.V(WizardIDKey, id))
	}
	return nil
}

// navigated closes a submitted wizard after it left for the confirmation view
func (uc *WizardUseCase) navigated(id, path string) {
	ctx := context.Background()
	logging.Default().Info("wizard navigated", WizardIDKey, id, "path", path)
	if err := uc.closeSession(ctx, id); err != nil && !errors.Is(err, ErrWizardNotFound) {
		_ = errutil.Handle(ctx, err, "failed to close navigated wizard")
	}
}

// SweepIdle closes wizards not used for maxIdle and returns how many were closed
func (uc *WizardUseCase) SweepIdle(ctx context.Context, maxIdle time.Duration) int {
	deadline := uc.clock().Add(-maxIdle)

	uc.mu.Lock()
	var idle []string
	for id, s := range uc.sessions {
		if s.lastUsed.Before(deadline) {
			idle = append(idle, id)
		}
	}
	uc.mu.Unlock()

	closed := 0
	for _, id := range idle {
		if err := uc.closeSession(ctx, id); err != nil {
			if !errors.Is(err, ErrWizardNotFound) {
				_ = errutil.Handle(ctx, err, "failed to close idle wizard")
			}
			continue
		}
		closed++
	}

	if closed > 0 {
		logging.From(ctx).Info("idle wizards closed", "count", closed)
	}
	return closed
}

// CloseAll closes every wizard. It is called on shutdown.
func (uc *WizardUseCase) CloseAll(ctx context.Context) {
	uc.mu.Lock()
	ids := make([]string, 0, len(uc.sessions))
	for id := range uc.sessions {
		ids = append(ids, id)
	}
	uc.mu.Unlock()

	for _, id := range ids {
		if err := uc.closeSession(ctx, id); err != nil && !errors.Is(err, ErrWizardNotFound) {
			_ = errutil.Handle(ctx, err, "failed to close wizard")
		}
	}
}

// Count returns the number of open wizards
func (uc *WizardUseCase) Count() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.sessions)
}
