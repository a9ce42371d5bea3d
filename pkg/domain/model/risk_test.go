package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

func TestNextRiskID(t *testing.T) {
	t.Run("empty avoid set yields first sequence", func(t *testing.T) {
		gt.Value(t, model.NextRiskID(2024, nil)).Equal("RR-2024-001")
	})

	t.Run("skips taken IDs", func(t *testing.T) {
		avoid := []string{"RR-2024-001", "RR-2024-002", "RR-2024-004"}
		gt.Value(t, model.NextRiskID(2024, avoid)).Equal("RR-2024-003")
	})

	t.Run("IDs of other years do not collide", func(t *testing.T) {
		avoid := []string{"RR-2023-001", "RR-2023-002"}
		gt.Value(t, model.NextRiskID(2024, avoid)).Equal("RR-2024-001")
	})

	t.Run("result is never in the avoid set and is the smallest free sequence", func(t *testing.T) {
		for n := 1; n <= 150; n += 7 {
			avoid := make([]string, 0, n)
			for seq := 1; seq <= n; seq++ {
				avoid = append(avoid, model.FormatRiskID(2025, seq))
			}
			got := model.NextRiskID(2025, avoid)
			gt.Value(t, got).Equal(model.FormatRiskID(2025, n+1))
			for _, id := range avoid {
				gt.Value(t, got).NotEqual(id)
			}
		}
	})

	t.Run("sequence wider than three digits", func(t *testing.T) {
		avoid := make([]string, 0, 999)
		for seq := 1; seq <= 999; seq++ {
			avoid = append(avoid, model.FormatRiskID(2024, seq))
		}
		gt.Value(t, model.NextRiskID(2024, avoid)).Equal("RR-2024-1000")
	})
}

func TestParseRiskID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantYear int
		wantSeq  int
		wantErr  bool
	}{
		{"valid", "RR-2024-001", 2024, 1, false},
		{"four digit sequence", "RR-2024-1000", 2024, 1000, false},
		{"wrong prefix", "RK-2024-001", 0, 0, true},
		{"short sequence", "RR-2024-01", 0, 0, true},
		{"zero sequence", "RR-2024-000", 0, 0, true},
		{"two digit year", "RR-24-001", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, seq, err := model.ParseRiskID(tt.id)
			if tt.wantErr {
				gt.Error(t, err).Is(model.ErrInvalidRiskID)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, year).Equal(tt.wantYear)
			gt.Value(t, seq).Equal(tt.wantSeq)
		})
	}
}

func TestRisk_SetField(t *testing.T) {
	t.Run("sets known fields", func(t *testing.T) {
		var r model.Risk
		gt.NoError(t, r.SetField(model.FieldDepartment, "IT")).Required()
		gt.NoError(t, r.SetField(model.FieldNumberOfDays, "30")).Required()
		gt.Value(t, r.Department).Equal("IT")
		gt.Value(t, r.NumberOfDays).Equal("30")

		v, err := r.Field(model.FieldDepartment)
		gt.NoError(t, err).Required()
		gt.Value(t, v).Equal("IT")
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		var r model.Risk
		gt.Error(t, r.SetField("owner", "x")).Is(model.ErrUnknownField)
		_, err := r.Field("owner")
		gt.Error(t, err).Is(model.ErrUnknownField)
	})

	t.Run("clone is independent", func(t *testing.T) {
		r := &model.Risk{RiskID: "RR-2024-001"}
		c := r.Clone()
		c.RiskID = "RR-2024-002"
		gt.Value(t, r.RiskID).Equal("RR-2024-001")
	})
}
