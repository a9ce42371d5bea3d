package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/wizard"
)

var riskDetails = map[string]string{
	model.FieldDepartment:      "IT",
	model.FieldDate:            "2025-03-14",
	model.FieldRiskType:        "Operational",
	model.FieldAssetType:       "Hardware",
	model.FieldLocation:        "HQ",
	model.FieldRiskDescription: "Unpatched servers",
	model.FieldConfidentiality: "high",
	model.FieldIntegrity:       "medium",
	model.FieldAvailability:    "low",
	model.FieldProbability:     "likely",
}

var treatment = map[string]string{
	model.FieldControlReference:   "A.8.8",
	model.FieldAdditionalControls: "Monthly patch window",
	model.FieldNumberOfDays:       "30",
}

func managerSession() *auth.Session {
	return &auth.Session{UserID: "manager", Role: types.RoleRiskManager}
}

func TestWizardUseCase_Open(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)

	_, err := uc.Risk.SaveRisk(ctx, &model.Risk{RiskID: "RR-2025-001", Asset: "edit me"})
	gt.NoError(t, err).Required()

	t.Run("new risk gets next free ID", func(t *testing.T) {
		id, view, err := uc.Wizard.Open(ctx, managerSession(), usecase.OpenInput{})
		gt.NoError(t, err).Required()
		gt.Value(t, id).NotEqual("")
		gt.Value(t, view.Draft.RiskID).Equal("RR-2025-002")
		gt.Bool(t, view.Loading).False()
		gt.Array(t, view.ExistingRiskIDs).Has("RR-2025-001")
	})

	t.Run("edit loads the target risk", func(t *testing.T) {
		_, view, err := uc.Wizard.Open(ctx, managerSession(), usecase.OpenInput{EditRiskID: "RR-2025-001"})
		gt.NoError(t, err).Required()
		gt.Bool(t, view.Editing).True()
		gt.Value(t, view.Draft.Asset).Equal("edit me")
	})

	t.Run("session is required", func(t *testing.T) {
		_, _, err := uc.Wizard.Open(ctx, nil, usecase.OpenInput{})
		gt.Error(t, err).Is(usecase.ErrUnauthorized)
	})

	t.Run("other users cannot see the wizard", func(t *testing.T) {
		id, _, err := uc.Wizard.Open(ctx, managerSession(), usecase.OpenInput{})
		gt.NoError(t, err).Required()

		_, err = uc.Wizard.Get(ctx, &auth.Session{UserID: "someone-else"}, id)
		gt.Error(t, err).Is(usecase.ErrWizardNotFound)
	})
}

func TestWizardUseCase_SetFields(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)
	session := managerSession()

	id, _, err := uc.Wizard.Open(ctx, session, usecase.OpenInput{})
	gt.NoError(t, err).Required()

	view, err := uc.Wizard.SetFields(ctx, session, id, riskDetails)
	gt.NoError(t, err).Required()
	gt.Value(t, view.Draft.Location).Equal("HQ")
	gt.Bool(t, view.Next.Enabled).True()

	_, err = uc.Wizard.SetFields(ctx, session, id, map[string]string{"color": "red"})
	gt.Error(t, err).Is(usecase.ErrValidation)
}

func TestWizardUseCase_Submit(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	uc, _ := newUseCases(t,
		usecase.WithMetrics(reg),
		usecase.WithConfirmationDelay(10*time.Millisecond),
	)
	session := managerSession()

	id, _, err := uc.Wizard.Open(ctx, session, usecase.OpenInput{})
	gt.NoError(t, err).Required()

	_, err = uc.Wizard.Submit(ctx, session, id)
	gt.Error(t, err).Is(wizard.ErrSubmitNotAllowed)

	_, err = uc.Wizard.SetFields(ctx, session, id, riskDetails)
	gt.NoError(t, err).Required()
	result, err := uc.Wizard.Next(ctx, session, id)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Step).Equal(wizard.StepTreatment)

	_, err = uc.Wizard.Next(ctx, session, id)
	gt.Error(t, err).Is(wizard.ErrStepInvalid)

	_, err = uc.Wizard.SetFields(ctx, session, id, treatment)
	gt.NoError(t, err).Required()
	result, err = uc.Wizard.Next(ctx, session, id)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Step).Equal(wizard.StepTasks)

	// The risk is not stored yet; the task stays in the session
	task, err := uc.Wizard.AddTask(ctx, session, id, &model.Task{Title: "Patch servers"})
	gt.NoError(t, err).Required()
	gt.Value(t, task.RiskID).Equal("RR-2025-001")

	view, err := uc.Wizard.Get(ctx, session, id)
	gt.NoError(t, err).Required()
	gt.Array(t, view.Tasks).Length(1)
	gt.Bool(t, view.Submit.Visible).True()

	stored, err := uc.Task.ListTasks(ctx, "RR-2025-001")
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(0)

	result, err = uc.Wizard.Submit(ctx, session, id)
	gt.NoError(t, err).Required()
	gt.Value(t, result.Notice).Equal(wizard.NoticeCreated)
	gt.Value(t, result.Redirect).Equal(wizard.ConfirmationPath)

	saved, err := uc.Risk.GetRisk(ctx, "RR-2025-001")
	gt.NoError(t, err).Required()
	gt.Value(t, saved.NumberOfDays).Equal("30")

	stored, err = uc.Task.ListTasks(ctx, "RR-2025-001")
	gt.NoError(t, err).Required()
	gt.Array(t, stored).Length(1).Required()
	gt.Value(t, stored[0].ID).Equal(task.ID)
	gt.Value(t, stored[0].Title).Equal("Patch servers")

	deadline := time.Now().Add(2 * time.Second)
	for uc.Wizard.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	gt.Number(t, uc.Wizard.Count()).Equal(0)

	_, err = uc.Wizard.Get(ctx, session, id)
	gt.Error(t, err).Is(usecase.ErrWizardNotFound)

	gt.Number(t, counterValue(t, reg, "themis_wizard_submissions_total")).Equal(1.0)
}

func TestWizardUseCase_RiskIdentifier(t *testing.T) {
	ctx := context.Background()
	uc, _ := newUseCases(t)
	session := &auth.Session{UserID: "identifier", Role: types.RoleRiskIdentifier}

	id, _, err := uc.Wizard.Open(ctx, session, usecase.OpenInput{})
	gt.NoError(t, err).Required()
	_, err = uc.Wizard.SetFields(ctx, session, id, riskDetails)
	gt.NoError(t, err).Required()

	result, err := uc.Wizard.Next(ctx, session, id)
	gt.Error(t, err).Is(wizard.ErrAccessRestricted)
	gt.Value(t, result.Step).Equal(wizard.StepRiskDetails)
	gt.Value(t, result.Notice).Equal(wizard.NoticeAccessRestricted)

	saved, err := uc.Wizard.Save(ctx, session, id)
	gt.NoError(t, err).Required()
	gt.Value(t, saved.Notice).Equal(wizard.NoticeDraftSaved)
}

func TestWizardUseCase_SweepIdle(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: fixedClock()}
	uc, _ := newUseCases(t, usecase.WithClock(clock.Now))
	session := managerSession()

	idle, _, err := uc.Wizard.Open(ctx, session, usecase.OpenInput{})
	gt.NoError(t, err).Required()

	clock.Advance(20 * time.Minute)
	active, _, err := uc.Wizard.Open(ctx, session, usecase.OpenInput{})
	gt.NoError(t, err).Required()

	gt.Number(t, uc.Wizard.SweepIdle(ctx, 15*time.Minute)).Equal(1)

	_, err = uc.Wizard.Get(ctx, session, idle)
	gt.Error(t, err).Is(usecase.ErrWizardNotFound)
	_, err = uc.Wizard.Get(ctx, session, active)
	gt.NoError(t, err)

	gt.NoError(t, uc.Wizard.Close(ctx, session, active)).Required()
	gt.Number(t, uc.Wizard.Count()).Equal(0)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	gt.NoError(t, err).Required()
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
