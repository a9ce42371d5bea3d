package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type riskRepository struct {
	db *sql.DB
}

func (r *riskRepository) Get(ctx context.Context, riskID string) (*model.Risk, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM risks WHERE risk_id = ?`, riskID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", riskID))
	}
	return decode[model.Risk](data, "risk")
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM risks ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks")
	}
	defer rows.Close()
	return scanDocs[model.Risk](rows, "risk")
}

func (r *riskRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT risk_id FROM risks ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk IDs")
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk ID")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate risk IDs")
	}
	return ids, nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	stored := risk.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT data FROM risks WHERE risk_id = ?`, risk.RiskID).Scan(&existing)
	switch {
	case err == nil:
		prev, err := decode[model.Risk](existing, "risk")
		if err != nil {
			return nil, err
		}
		stored.CreatedAt = prev.CreatedAt
	case !errors.Is(err, sql.ErrNoRows):
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", risk.RiskID))
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal risk", goerr.V("risk_id", risk.RiskID))
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO risks (risk_id, data) VALUES (?, ?)
		ON CONFLICT(risk_id) DO UPDATE SET data = excluded.data`,
		stored.RiskID, string(data)); err != nil {
		return nil, goerr.Wrap(err, "failed to put risk", goerr.V("risk_id", risk.RiskID))
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit risk", goerr.V("risk_id", risk.RiskID))
	}
	return stored, nil
}

func (r *riskRepository) Delete(ctx context.Context, riskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risks WHERE risk_id = ?`, riskID)
	if err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V("risk_id", riskID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}
	return nil
}
