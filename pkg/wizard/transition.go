package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
)

// Result is the outcome of a transition
type Result struct {
	Step   Step   `json:"step"`
	Notice string `json:"notice,omitempty"`

	// Risk is the persisted risk after Save and Submit
	Risk *model.Risk `json:"risk,omitempty"`

	// Redirect is the view the wizard will navigate to after RedirectAfter
	Redirect      string        `json:"redirect,omitempty"`
	RedirectAfter time.Duration `json:"redirectAfter,omitempty"`
}

// Next advances to the following step when the current step is valid. Sessions with the
// risk_identifier role never leave the first step. The step is capped at StepTasks.
func (w *Wizard) Next() (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, goerr.Wrap(ErrClosed, "cannot move to next step")
	}

	if !w.stepValidLocked(w.step) {
		return &Result{Step: w.step}, goerr.Wrap(ErrStepInvalid, "cannot move to next step", goerr.V(stepKey, w.step))
	}

	if w.session.HasRole(types.RoleRiskIdentifier) {
		w.notice = NoticeAccessRestricted
		return &Result{Step: w.step, Notice: NoticeAccessRestricted},
			goerr.Wrap(ErrAccessRestricted, "role may not leave the first step",
				goerr.V(stepKey, w.step),
				goerr.V("role", w.session.Role))
	}

	if w.step < StepTasks {
		w.step++
	}
	return &Result{Step: w.step}, nil
}

// Previous moves back one step. It never fails on validity or role.
func (w *Wizard) Previous() (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, goerr.Wrap(ErrClosed, "cannot move to previous step")
	}
	if w.step > StepRiskDetails {
		w.step--
	}
	return &Result{Step: w.step}, nil
}

// persist saves a snapshot of the draft and then the session's tasks of the saved risk.
// A draft without risk ID is left to the RiskService to number. A result arriving after
// Close is dropped.
func (w *Wizard) persist(ctx context.Context) (*model.Risk, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, goerr.Wrap(ErrClosed, "cannot save")
	}
	snapshot := w.draft.Clone()
	w.mu.Unlock()

	if snapshot.RiskID != "" {
		if _, _, err := model.ParseRiskID(snapshot.RiskID); err != nil {
			return nil, goerr.Wrap(ErrInvalidRiskID, "cannot save draft", goerr.V(riskIDKey, snapshot.RiskID))
		}
	}

	callCtx, done := w.callContext(ctx)
	defer done()

	saved, err := w.risks.SaveRisk(callCtx, snapshot)

	if w.Closed() {
		return nil, goerr.Wrap(ErrClosed, "wizard closed while saving", goerr.V(riskIDKey, snapshot.RiskID))
	}
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to save risk")
		return nil, goerr.Wrap(ErrSaveFailed, "failed to save risk",
			goerr.V(riskIDKey, snapshot.RiskID),
			goerr.V("cause", err.Error()))
	}
	if saved == nil {
		saved = snapshot
	}

	if err := w.storeTasks(callCtx, saved.RiskID); err != nil {
		if w.Closed() {
			return nil, goerr.Wrap(ErrClosed, "wizard closed while saving tasks", goerr.V(riskIDKey, saved.RiskID))
		}
		_ = errutil.Handle(ctx, err, "failed to save tasks of risk")
		return nil, goerr.Wrap(ErrSaveFailed, "failed to save tasks of risk",
			goerr.V(riskIDKey, saved.RiskID),
			goerr.V("cause", err.Error()))
	}
	return saved, nil
}

// failureNotice picks the notice for a failed Save or Submit
func failureNotice(err error, fallback string) string {
	if errors.Is(err, ErrInvalidRiskID) {
		return NoticeInvalidRiskID
	}
	return fallback
}

// Save persists the draft from any step regardless of validity. The step does not change.
// On failure the draft is kept for a retry.
func (w *Wizard) Save(ctx context.Context) (*Result, error) {
	saved, err := w.persist(ctx)
	if err != nil {
		return w.failed(err, failureNotice(err, NoticeSaveFailed))
	}

	notice := NoticeDraftSaved
	if w.Editing() {
		notice = NoticeChangesSaved
	}

	w.mu.Lock()
	w.notice = notice
	step := w.step
	w.mu.Unlock()

	if w.onSubmit != nil {
		w.onSubmit(saved.Clone())
	}
	return &Result{Step: step, Notice: notice, Risk: saved}, nil
}

// Submit persists the draft and schedules navigation to ConfirmationPath. It is allowed
// on the task management step only, whether or not that step is valid.
func (w *Wizard) Submit(ctx context.Context) (*Result, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, goerr.Wrap(ErrClosed, "cannot submit")
	}
	if w.step != StepTasks {
		step := w.step
		w.mu.Unlock()
		return &Result{Step: step}, goerr.Wrap(ErrSubmitNotAllowed, "cannot submit", goerr.V(stepKey, step))
	}
	w.mu.Unlock()

	saved, err := w.persist(ctx)
	if err != nil {
		return w.failed(err, failureNotice(err, NoticeSubmitFailed))
	}

	notice := NoticeCreated
	if w.Editing() {
		notice = NoticeUpdated
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil, goerr.Wrap(ErrClosed, "wizard closed while submitting")
	}
	w.notice = notice
	step := w.step
	w.scheduleNavigationLocked()
	w.mu.Unlock()

	if w.onSubmit != nil {
		w.onSubmit(saved.Clone())
	}

	return &Result{
		Step:          step,
		Notice:        notice,
		Risk:          saved,
		Redirect:      ConfirmationPath,
		RedirectAfter: w.confirmationDelay,
	}, nil
}

func (w *Wizard) failed(err error, notice string) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, err
	}
	w.notice = notice
	return &Result{Step: w.step, Notice: notice}, err
}

func (w *Wizard) scheduleNavigationLocked() {
	if w.navTimer != nil {
		w.navTimer.Stop()
	}
	w.navTimer = time.AfterFunc(w.confirmationDelay, func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.navTimer = nil
		w.navigatedTo = ConfirmationPath
		w.mu.Unlock()

		w.navigator.Navigate(ConfirmationPath)
	})
}
