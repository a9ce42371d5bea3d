package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Role
		wantErr bool
	}{
		{"admin", "admin", types.RoleAdmin, false},
		{"risk identifier", "risk_identifier", types.RoleRiskIdentifier, false},
		{"auditor", "auditor", types.RoleAuditor, false},
		{"empty", "", "", true},
		{"uppercase", "ADMIN", "", true},
		{"unknown", "superuser", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseRole() error = %v, wantErr %v", err, tt.wantErr)
			}
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestRole_CanWrite(t *testing.T) {
	gt.Bool(t, types.RoleAdmin.CanWrite()).True()
	gt.Bool(t, types.RoleRiskIdentifier.CanWrite()).True()
	gt.Bool(t, types.RoleAuditor.CanWrite()).False()
	gt.Bool(t, types.Role("unknown").CanWrite()).False()
}

func TestParseTaskStatus(t *testing.T) {
	t.Run("empty defaults to TODO", func(t *testing.T) {
		status, err := types.ParseTaskStatus("")
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.TaskStatusTodo)
	})

	t.Run("all statuses round trip", func(t *testing.T) {
		for _, s := range types.AllTaskStatuses() {
			parsed, err := types.ParseTaskStatus(s.String())
			gt.NoError(t, err).Required()
			gt.Value(t, parsed).Equal(s)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := types.ParseTaskStatus("DONE")
		gt.Value(t, err).NotNil()
	})
}

func TestParseComplianceStatuses(t *testing.T) {
	gap, err := types.ParseGapStatus("")
	gt.NoError(t, err).Required()
	gt.Value(t, gap).Equal(types.GapStatusOpen)

	_, err = types.ParseGapStatus("RESOLVED")
	gt.Value(t, err).NotNil()

	impl, err := types.ParseImplementationStatus("IMPLEMENTED")
	gt.NoError(t, err).Required()
	gt.Value(t, impl).Equal(types.ImplementationImplemented)

	doc, err := types.ParseDocumentStatus("")
	gt.NoError(t, err).Required()
	gt.Value(t, doc).Equal(types.DocumentStatusDraft)

	_, err = types.ParseDocumentStatus("PUBLISHED")
	gt.Value(t, err).NotNil()
}
