package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"PriceForecast/internal/logger"
	"PriceForecast/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets readers query history while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			company     TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			points      INTEGER,
			train_size  INTEGER,
			test_size   INTEGER,
			folds       INTEGER,
			epochs      INTEGER,
			status      TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS fold_scores (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			fold        INTEGER NOT NULL,
			model       TEXT NOT NULL,
			loss        REAL,
			accuracy    REAL,
			val_loss    REAL,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fold_scores_run ON fold_scores(run_id)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			model  TEXT NOT NULL,
			step   INTEGER NOT NULL,
			date   INTEGER,
			value  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_run ON predictions(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts the run, replacing an earlier record with the same ID.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Unix()
	}
	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(id, company, started_at, finished_at, points, train_size, test_size, folds, epochs, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Company, run.StartedAt.Unix(), finished,
		run.Points, run.TrainSize, run.TestSize, run.Folds, run.Epochs,
		run.Status, run.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordFoldScores(runID string, scores []model.FoldScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO fold_scores
			(run_id, fold, model, loss, accuracy, val_loss, duration_ms)
			VALUES (?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, s := range scores {
			if _, err := stmt.Exec(runID, s.Fold, s.Model, s.Loss, s.Accuracy, s.ValLoss, s.Duration.Milliseconds()); err != nil {
				return fmt.Errorf("fold %d %s: %w", s.Fold, s.Model, err)
			}
		}
		return nil
	})
}

// RecordPredictions stores every forecast value with its plotted date.
func (r *SQLiteRecorder) RecordPredictions(runID string, pred *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.inTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO predictions
			(run_id, model, step, date, value)
			VALUES (?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, f := range pred.Forecasts {
			for i, v := range f.Values {
				var date any
				if i < len(pred.Dates) {
					date = pred.Dates[i].Unix()
				}
				if _, err := stmt.Exec(runID, f.Model, i, date, v); err != nil {
					return fmt.Errorf("%s step %d: %w", f.Model, i, err)
				}
			}
		}
		return nil
	})
}

func (r *SQLiteRecorder) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
