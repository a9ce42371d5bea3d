package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// SQLite is a single file repository. Records are stored as JSON documents next to the
// columns needed for lookups.
type SQLite struct {
	db       *sql.DB
	risk     *riskRepository
	task     *taskRepository
	document *documentRepository
	control  *controlRepository
	soa      *soaRepository
	gap      *gapRepository
	user     *userRepository
}

var _ interfaces.Repository = &SQLite{}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS risks (
		risk_id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		risk_id TEXT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_risk_id ON tasks (risk_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS controls (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL UNIQUE,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS soa_entries (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gaps (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		data TEXT NOT NULL
	)`,
}

// New opens the SQLite database at path and applies the schema. ":memory:" opens a
// volatile database.
func New(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, goerr.Wrap(err, "failed to enable WAL mode")
		}
	}

	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, goerr.Wrap(err, "failed to apply migration", goerr.V("index", i))
		}
	}

	return &SQLite{
		db:       db,
		risk:     &riskRepository{db: db},
		task:     &taskRepository{db: db},
		document: &documentRepository{docs: newDocTable[model.Document](db, "documents", "document")},
		control:  &controlRepository{db: db},
		soa:      &soaRepository{entries: newDocTable[model.SoAEntry](db, "soa_entries", "soa entry")},
		gap:      &gapRepository{gaps: newDocTable[model.Gap](db, "gaps", "gap")},
		user:     &userRepository{db: db},
	}, nil
}

func (s *SQLite) Risk() interfaces.RiskRepository {
	return s.risk
}

func (s *SQLite) Task() interfaces.TaskRepository {
	return s.task
}

func (s *SQLite) Document() interfaces.DocumentRepository {
	return s.document
}

func (s *SQLite) Control() interfaces.ControlRepository {
	return s.control
}

func (s *SQLite) SoA() interfaces.SoARepository {
	return s.soa
}

func (s *SQLite) Gap() interfaces.GapRepository {
	return s.gap
}

func (s *SQLite) User() interfaces.UserRepository {
	return s.user
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
