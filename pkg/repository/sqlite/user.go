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

type userRepository struct {
	db *sql.DB
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = model.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal user", goerr.V("id", created.ID))
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO users (id, email, password_hash, data) VALUES (?, ?, ?, ?)`,
		created.ID, created.Email, created.PasswordHash, string(data)); err != nil {
		if isUniqueViolation(err) {
			return nil, goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", created.Email))
		}
		return nil, goerr.Wrap(err, "failed to insert user", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *userRepository) scan(row *sql.Row, key string, value any) (*model.User, error) {
	var data, hash string
	err := row.Scan(&data, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V(key, value))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V(key, value))
	}

	user, err := decode[model.User](data, "user")
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data, password_hash FROM users WHERE id = ?`, id)
	return r.scan(row, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data, password_hash FROM users WHERE email = ?`, email)
	return r.scan(row, "email", email)
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM users ORDER BY rowid`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	defer rows.Close()
	return scanDocs[model.User](rows, "user")
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, goerr.Wrap(err, "failed to count users")
	}
	return n, nil
}
