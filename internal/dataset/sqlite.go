package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// SQLiteFile is the database name inside an output directory.
const SQLiteFile = "trajectories.db"

// SQLiteStore persists batches into a SQLite database using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at the given path and configures WAL mode.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	job_name        TEXT NOT NULL,
	dataset_version TEXT NOT NULL,
	config          TEXT NOT NULL,
	statistics      TEXT NOT NULL,
	result          TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS trajectories (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	seq           INTEGER NOT NULL,
	session_id    TEXT NOT NULL,
	workflow_type TEXT NOT NULL,
	domain        TEXT NOT NULL,
	user_type     TEXT NOT NULL,
	device_type   TEXT NOT NULL,
	browser_type  TEXT NOT NULL,
	goal          TEXT NOT NULL,
	goal_achieved INTEGER NOT NULL,
	action_count  INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS actions (
	trajectory_id TEXT NOT NULL REFERENCES trajectories(id),
	seq           INTEGER NOT NULL,
	action_id     TEXT NOT NULL,
	action_type   TEXT NOT NULL,
	timestamp_ms  INTEGER NOT NULL,
	url           TEXT NOT NULL,
	selector      TEXT NOT NULL,
	PRIMARY KEY (trajectory_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_trajectories_run_id ON trajectories(run_id);
CREATE INDEX IF NOT EXISTS idx_trajectories_workflow ON trajectories(workflow_type);
CREATE INDEX IF NOT EXISTS idx_actions_type ON actions(action_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Write inserts the run and all of its trajectories in one transaction.
func (s *SQLiteStore) Write(ctx context.Context, b Batch) error {
	_, err := s.SaveRun(ctx, b)
	return err
}

// SaveRun is Write returning the new run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, b Batch) (string, error) {
	runID := uuid.New().String()

	cfgJSON, err := json.Marshal(b.Config)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal config")
	}
	statsJSON, err := json.Marshal(b.Stats)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal statistics")
	}
	resultJSON, err := json.Marshal(b.Result)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal result")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, job_name, dataset_version, config, statistics, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, b.Result.JobName, Version, string(cfgJSON), string(statsJSON), string(resultJSON), time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}

	for i, t := range b.Trajectories {
		if err := insertTrajectory(ctx, tx, runID, i, t); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	zap.L().Info("sqlite run saved",
		zap.String("run_id", runID),
		zap.Int("trajectories", len(b.Trajectories)),
	)
	return runID, nil
}

func insertTrajectory(ctx context.Context, tx *sql.Tx, runID string, seq int, t *models.Trajectory) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal trajectory %s", t.TrajectoryID)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO trajectories (id, run_id, seq, session_id, workflow_type, domain, user_type, device_type, browser_type, goal, goal_achieved, action_count, duration_ms, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TrajectoryID, runID, seq, t.SessionID, string(t.WorkflowType), t.Domain, string(t.UserType),
		t.DeviceType, t.BrowserType, t.Goal, t.GoalAchieved, len(t.Actions), t.Duration, string(payload), t.CreatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert trajectory %s", t.TrajectoryID)
	}

	for i, a := range t.Actions {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO actions (trajectory_id, seq, action_id, action_type, timestamp_ms, url, selector) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.TrajectoryID, i, a.ActionID, string(a.Type()), a.Timestamp, a.URL, a.ElementSelector,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert action %s/%d", t.TrajectoryID, i)
		}
	}
	return nil
}

// LatestRun returns the id of the most recently saved run.
func (s *SQLiteStore) LatestRun(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", eris.New("sqlite: database has no runs")
	}
	if err != nil {
		return "", eris.Wrap(err, "sqlite: query latest run")
	}
	return runID, nil
}

// LoadRun returns the trajectories of a run in their original order.
func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) ([]*models.Trajectory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM trajectories WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query run %s", runID)
	}
	defer rows.Close()

	var trajs []*models.Trajectory
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trajectory")
		}
		t := &models.Trajectory{}
		if err := json.Unmarshal([]byte(payload), t); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal trajectory")
		}
		trajs = append(trajs, t)
	}
	return trajs, eris.Wrap(rows.Err(), "sqlite: iterate trajectories")
}

// ActionTypeCounts aggregates action types across every stored run.
func (s *SQLiteStore) ActionTypeCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT action_type, COUNT(*) FROM actions GROUP BY action_type`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: count action types")
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var (
			at string
			n  int
		)
		if err := rows.Scan(&at, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan action type count")
		}
		counts[at] = n
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate action type counts")
}
