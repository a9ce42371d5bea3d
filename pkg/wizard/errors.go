package wizard

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrStepInvalid is returned by Next when the current step does not pass validation
	ErrStepInvalid = goerr.New("current step is not valid")

	// ErrAccessRestricted is returned by Next for roles that may only work on the first step
	ErrAccessRestricted = goerr.New("access restricted")

	// ErrSubmitNotAllowed is returned by Submit outside the task management step
	ErrSubmitNotAllowed = goerr.New("submit is only allowed on the last step")

	// ErrSaveFailed is returned by Save and Submit when the risk could not be persisted.
	// The draft is kept so that the caller can retry.
	ErrSaveFailed = goerr.New("failed to save risk")

	// ErrInvalidRiskID is returned by Save and Submit when the draft's risk ID is not
	// formatted as RR-YYYY-NNN. Nothing is persisted.
	ErrInvalidRiskID = goerr.New("malformed risk ID")

	// ErrClosed is returned by every operation after Close. RemoveTask reports false.
	ErrClosed = goerr.New("wizard is closed")

	ErrInvalidArgument = goerr.New("invalid argument")
)

// Notices shown to the user after an operation
const (
	NoticeAccessRestricted = "Access Restricted. You can save and exit."
	NoticeDraftSaved       = "Draft Saved!"
	NoticeChangesSaved     = "Changes Saved!"
	NoticeSaveFailed       = "Error saving draft. Please try again."
	NoticeInvalidRiskID    = "Invalid Risk ID. Use the format RR-YYYY-NNN."
	NoticeCreated          = "Risk Assessment Created Successfully!"
	NoticeUpdated          = "Risk Assessment Updated Successfully!"
	NoticeSubmitFailed     = "Error saving risk assessment. Please try again."
)

const (
	stepKey   = "step"
	riskIDKey = "risk_id"
)
