package wizard

import (
	"strconv"
	"strings"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

// memo caches the result of a predicate for the last key it was computed for
type memo[K comparable] struct {
	key   K
	value bool
	ok    bool
}

func (m *memo[K]) get(key K, compute func(K) bool) bool {
	if m.ok && m.key == key {
		return m.value
	}
	m.key, m.value, m.ok = key, compute(key), true
	return m.value
}

// step1Required lists the risk details that must be filled before leaving the first step
var step1Required = []string{
	model.FieldRiskID,
	model.FieldDepartment,
	model.FieldDate,
	model.FieldRiskType,
	model.FieldAssetType,
	model.FieldLocation,
	model.FieldRiskDescription,
	model.FieldConfidentiality,
	model.FieldIntegrity,
	model.FieldAvailability,
	model.FieldProbability,
}

type step1Key struct {
	values     [11]string
	idsVersion uint64
}

type step2Key struct {
	controlReference   string
	additionalControls string
	numberOfDays       string
}

type step3Key struct {
	riskID       string
	tasksVersion uint64
}

func (w *Wizard) step1KeyLocked() step1Key {
	var key step1Key
	for i, name := range step1Required {
		key.values[i], _ = w.draft.Field(name)
	}
	key.idsVersion = w.idsVersion
	return key
}

func (w *Wizard) step1ValidLocked() bool {
	return w.step1.get(w.step1KeyLocked(), func(key step1Key) bool {
		for _, v := range key.values {
			if v == "" {
				return false
			}
		}
		return !w.collidesLocked(w.draft.RiskID)
	})
}

// collidesLocked reports whether riskID belongs to another risk. The risk being edited
// does not collide with itself.
func (w *Wizard) collidesLocked(riskID string) bool {
	if w.editRiskID != "" && riskID == w.editRiskID {
		return false
	}
	_, exists := w.existingIDs[riskID]
	return exists
}

func (w *Wizard) step2ValidLocked() bool {
	key := step2Key{
		controlReference:   w.draft.ControlReference,
		additionalControls: w.draft.AdditionalControls,
		numberOfDays:       w.draft.NumberOfDays,
	}
	return w.step2.get(key, func(key step2Key) bool {
		return key.controlReference != "" &&
			key.additionalControls != "" &&
			positiveInt(key.numberOfDays)
	})
}

func positiveInt(s string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && n > 0
}

func (w *Wizard) step3ValidLocked() bool {
	key := step3Key{riskID: w.draft.RiskID, tasksVersion: w.tasksVersion}
	return w.step3.get(key, func(key step3Key) bool {
		for _, task := range w.tasks {
			if task.RiskID == key.riskID {
				return true
			}
		}
		return false
	})
}

func (w *Wizard) stepValidLocked(step Step) bool {
	switch step {
	case StepRiskDetails:
		return w.step1ValidLocked()
	case StepTreatment:
		return w.step2ValidLocked()
	case StepTasks:
		return w.step3ValidLocked()
	default:
		return false
	}
}

// IsStep1Valid reports whether every required risk detail is set and the risk ID is not
// used by another risk
func (w *Wizard) IsStep1Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step1ValidLocked()
}

// IsStep2Valid reports whether the treatment plan is set and the number of days is a
// positive integer
func (w *Wizard) IsStep2Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step2ValidLocked()
}

// IsStep3Valid reports whether at least one task belongs to the draft's risk ID
func (w *Wizard) IsStep3Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step3ValidLocked()
}

// NextDisabled reports whether the current step blocks Next
func (w *Wizard) NextDisabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.stepValidLocked(w.step)
}
