package record

import (
	"database/sql"

	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const createEstimates = `CREATE TABLE IF NOT EXISTS estimates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	frame INTEGER NOT NULL,
	pred_x REAL NOT NULL,
	pred_y REAL NOT NULL,
	found INTEGER NOT NULL,
	det_x REAL,
	det_y REAL,
	radius REAL,
	vx REAL NOT NULL,
	vy REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_estimates_session_frame ON estimates (session, frame);`

const insertEstimate = `INSERT INTO estimates (session, frame, pred_x, pred_y, found, det_x, det_y, radius, vx, vy)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteRecorder stores results in table 'estimates'. Detection columns are NULL on frames without detection.
type SQLiteRecorder struct {
	db     *sql.DB
	insert *sql.Stmt
}

// NewSQLiteRecorder opens (or creates) database and prepares schema
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't open database '%s'", path)
	}
	// Single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't set busy timeout")
	}
	if _, err := db.Exec(createEstimates); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't create table 'estimates'")
	}
	insert, err := db.Prepare(insertEstimate)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "Can't prepare insert statement")
	}
	return &SQLiteRecorder{
		db:     db,
		insert: insert,
	}, nil
}

// Record implements Recorder
func (recorder *SQLiteRecorder) Record(result track.Result) error {
	r := newRow(result)
	var detX, detY, radius sql.NullFloat64
	if r.found {
		detX = sql.NullFloat64{Float64: r.detX, Valid: true}
		detY = sql.NullFloat64{Float64: r.detY, Valid: true}
		radius = sql.NullFloat64{Float64: r.radius, Valid: true}
	}
	_, err := recorder.insert.Exec(r.session, r.frame, r.predX, r.predY, r.found, detX, detY, radius, result.State.VX, result.State.VY)
	if err != nil {
		return errors.Wrapf(err, "Can't insert estimate for frame %d", r.frame)
	}
	return nil
}

// DB returns underlying database handle
func (recorder *SQLiteRecorder) DB() *sql.DB {
	return recorder.db
}

// Close implements Recorder
func (recorder *SQLiteRecorder) Close() error {
	if err := recorder.insert.Close(); err != nil {
		recorder.db.Close()
		return errors.Wrap(err, "Can't close statement")
	}
	return recorder.db.Close()
}
