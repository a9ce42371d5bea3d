package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// docTable stores JSON documents keyed by id in a two column table
type docTable[T any] struct {
	db    *sql.DB
	table string
	name  string
}

func newDocTable[T any](db *sql.DB, table, name string) *docTable[T] {
	return &docTable[T]{db: db, table: table, name: name}
}

func (t *docTable[T]) insert(ctx context.Context, id string, row *T) (*T, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal "+t.name, goerr.V("id", id))
	}

	res, err := t.db.ExecContext(ctx, `INSERT INTO `+t.table+` (id, data) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, string(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert "+t.name, goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(ErrAlreadyExists, t.name+" already exists", goerr.V("id", id))
	}
	return row, nil
}

func (t *docTable[T]) get(ctx context.Context, id string) (*T, error) {
	var data string
	err := t.db.QueryRowContext(ctx, `SELECT data FROM `+t.table+` WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get "+t.name, goerr.V("id", id))
	}
	return decode[T](data, t.name)
}

func (t *docTable[T]) list(ctx context.Context) ([]*T, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT data FROM `+t.table+` ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list "+t.name)
	}
	defer rows.Close()

	return scanDocs[T](rows, t.name)
}

func (t *docTable[T]) update(ctx context.Context, id string, row *T) (*T, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal "+t.name, goerr.V("id", id))
	}

	res, err := t.db.ExecContext(ctx, `UPDATE `+t.table+` SET data = ? WHERE id = ?`, string(data), id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update "+t.name, goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}
	return row, nil
}

func (t *docTable[T]) delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete "+t.name, goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}
	return nil
}

func decode[T any](data, name string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal "+name)
	}
	return &v, nil
}

func scanDocs[T any](rows *sql.Rows, name string) ([]*T, error) {
	result := []*T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to scan "+name)
		}
		v, err := decode[T](data, name)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate "+name)
	}
	return result, nil
}
