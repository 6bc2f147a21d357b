// Package catalog records processed videos in a SQLite database.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var (
	// ErrDuplicateID indicates a record with the same id already exists
	ErrDuplicateID = errors.New("video id already exists")
	// ErrNotFound indicates no record has the requested id
	ErrNotFound = errors.New("video not found")
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id             TEXT PRIMARY KEY,
	original_name  TEXT NOT NULL,
	original_ext   TEXT NOT NULL,
	mime_type      TEXT,
	size_bytes     INTEGER,
	duration_sec   REAL,
	fps            REAL,
	width          INTEGER,
	height         INTEGER,
	filter         TEXT,
	created_at     TEXT NOT NULL,
	path_original  TEXT NOT NULL,
	path_processed TEXT NOT NULL,
	path_thumbnail TEXT,
	path_preview   TEXT
)`

const columns = `id, original_name, original_ext, mime_type, size_bytes, duration_sec,
	fps, width, height, filter, created_at, path_original, path_processed,
	path_thumbnail, path_preview`

// Record is one catalog row. Paths are relative to the media root.
type Record struct {
	ID            string    `json:"id"`
	OriginalName  string    `json:"original_name"`
	OriginalExt   string    `json:"original_ext"`
	MimeType      string    `json:"mime_type"`
	SizeBytes     int64     `json:"size_bytes"`
	DurationSec   float64   `json:"duration_sec"`
	FPS           float64   `json:"fps"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Filter        string    `json:"filter"`
	CreatedAt     time.Time `json:"created_at"`
	PathOriginal  string    `json:"path_original"`
	PathProcessed string    `json:"path_processed"`
	PathThumbnail string    `json:"path_thumbnail,omitempty"`
	PathPreview   string    `json:"path_preview,omitempty"`
}

// Store is a SQLite-backed catalog. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path and ensures the table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog table: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "catalog.Open",
		"path":     path,
	}).Info("Catalog ready")

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a record. A zero CreatedAt is set to the current time.
func (s *Store) Add(r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		"INSERT INTO videos ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.OriginalName, r.OriginalExt, r.MimeType, r.SizeBytes, r.DurationSec,
		r.FPS, r.Width, r.Height, r.Filter, r.CreatedAt.UTC().Format(timeLayout),
		r.PathOriginal, r.PathProcessed, r.PathThumbnail, r.PathPreview,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		return fmt.Errorf("insert video %s: %w", r.ID, err)
	}
	return nil
}

// List returns every record, newest first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query("SELECT " + columns + " FROM videos ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return records, nil
}

// Get returns the record with id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow("SELECT "+columns+" FROM videos WHERE id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r                   Record
		mime, filter        sql.NullString
		thumb, preview      sql.NullString
		size, width, height sql.NullInt64
		duration, fps       sql.NullFloat64
		createdAt           string
	)
	err := row.Scan(&r.ID, &r.OriginalName, &r.OriginalExt, &mime, &size, &duration,
		&fps, &width, &height, &filter, &createdAt, &r.PathOriginal, &r.PathProcessed,
		&thumb, &preview)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan video: %w", err)
	}

	r.MimeType = mime.String
	r.SizeBytes = size.Int64
	r.DurationSec = duration.Float64
	r.FPS = fps.Float64
	r.Width = int(width.Int64)
	r.Height = int(height.Int64)
	r.Filter = filter.String
	r.PathThumbnail = thumb.String
	r.PathPreview = preview.String

	r.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at of %s: %w", r.ID, err)
	}
	return r, nil
}
