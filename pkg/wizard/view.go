package wizard

import (
	"sort"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// StepIndicator is one entry of the step indicator
type StepIndicator struct {
	Step      Step   `json:"step"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

// Button describes a navigation button
type Button struct {
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// View is what the presentation layer renders for the current state
type View struct {
	Step           Step            `json:"step"`
	StepLabel      string          `json:"stepLabel"`
	Steps          []StepIndicator `json:"steps"`
	FocusArea      string          `json:"focusArea"`
	Editing        bool            `json:"editing"`
	OriginalRiskID string          `json:"originalRiskId,omitempty"`
	Loading        bool            `json:"loading"`

	Draft           *model.Risk         `json:"draft"`
	Departments     []*model.Department `json:"departments"`
	ExistingRiskIDs []string            `json:"existingRiskIds"`
	Tasks           []*model.Task       `json:"tasks"`

	Previous Button `json:"previous"`
	Save     Button `json:"save"`
	Next     Button `json:"next"`
	Submit   Button `json:"submit"`

	Notice      string `json:"notice,omitempty"`
	NavigatedTo string `json:"navigatedTo,omitempty"`
}

const (
	labelPrevious   = "Previous"
	labelSave       = "Save"
	labelNext       = "Next Step"
	labelSubmit     = "Submit"
	labelSaveFinish = "Save & Finish"
)

// View returns a snapshot of the wizard for rendering
func (w *Wizard) View() *View {
	w.mu.Lock()
	defer w.mu.Unlock()

	steps := make([]StepIndicator, 0, int(StepTasks))
	for s := StepRiskDetails; s <= StepTasks; s++ {
		steps = append(steps, StepIndicator{
			Step:      s,
			Label:     s.Label(),
			Active:    s == w.step,
			Completed: s < w.step,
		})
	}

	ids := make([]string, 0, len(w.existingIDs))
	for id := range w.existingIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	departments := make([]*model.Department, len(w.deptList))
	for i, d := range w.deptList {
		c := *d
		departments[i] = &c
	}

	submitLabel := labelSubmit
	if w.editRiskID != "" {
		submitLabel = labelSaveFinish
	}

	return &View{
		Step:            w.step,
		StepLabel:       w.step.Label(),
		Steps:           steps,
		FocusArea:       w.focusArea,
		Editing:         w.editRiskID != "",
		OriginalRiskID:  w.editRiskID,
		Loading:         w.pending > 0,
		Draft:           w.draft.Clone(),
		Departments:     departments,
		ExistingRiskIDs: ids,
		Tasks:           w.tasksLocked(),
		Previous: Button{
			Visible: w.step > StepRiskDetails,
			Enabled: true,
			Label:   labelPrevious,
		},
		Save: Button{
			Visible: true,
			Enabled: !w.closed,
			Label:   labelSave,
		},
		Next: Button{
			Visible: w.step < StepTasks,
			Enabled: w.stepValidLocked(w.step),
			Label:   labelNext,
		},
		Submit: Button{
			Visible: w.step == StepTasks,
			Enabled: true,
			Label:   submitLabel,
		},
		Notice:      w.notice,
		NavigatedTo: w.navigatedTo,
	}
}
