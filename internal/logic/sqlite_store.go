package logic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matchoracle/prediction-api/internal/models"
)

// sqliteTimeLayout is fixed width so text ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteSchema creates the predictions table for the embedded store
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	sport TEXT NOT NULL,
	home_team TEXT NOT NULL,
	away_team TEXT NOT NULL,
	predicted_home_score INTEGER NOT NULL,
	predicted_away_score INTEGER NOT NULL,
	confidence_percentage REAL NOT NULL,
	prediction_factors TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TEXT NOT NULL,
	actual_home_score INTEGER,
	actual_away_score INTEGER,
	league_name TEXT,
	venue TEXT,
	match_date TEXT
);
CREATE INDEX IF NOT EXISTS idx_predictions_user_created ON predictions (user_id, created_at);
`

type sqlitePredictionStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database file and applies the schema
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// NewSQLitePredictionStore is the embedded store used for local development
func NewSQLitePredictionStore(db *sql.DB) PredictionStore {
	return &sqlitePredictionStore{db: db, now: time.Now}
}

func (s *sqlitePredictionStore) Create(ctx context.Context, in *models.PredictionRecord) (*models.PredictionRecord, error) {
	rec := newRecord(in, s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (`+predictionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.UserID, rec.Sport.String(), rec.HomeTeam, rec.AwayTeam,
		rec.PredictedHomeScore, rec.PredictedAwayScore, rec.ConfidencePercentage,
		rec.PredictionFactors, string(rec.Status), rec.CreatedAt.Format(sqliteTimeLayout),
		nullable(rec.ActualHomeScore), nullable(rec.ActualAwayScore),
		nullable(rec.LeagueName), nullable(rec.Venue), nullable(rec.MatchDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert prediction: %w", err)
	}
	return rec, nil
}

func (s *sqlitePredictionStore) List(ctx context.Context, opts models.ListOptions) ([]models.PredictionRecord, error) {
	order := orderClause(opts.Order)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = ?
		ORDER BY created_at `+order+`, rowid `+order+`
		LIMIT ?
	`, opts.UserID, listLimit(opts.Limit))
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	records := []models.PredictionRecord{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return records, nil
}

func (s *sqlitePredictionStore) Get(ctx context.Context, userID, id string) (*models.PredictionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE id = ? AND user_id = ?
	`, id, userID)
	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPredictionNotFound
	}
	return rec, err
}

// nullable unwraps optional columns into plain driver values
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row sqlScanner) (*models.PredictionRecord, error) {
	var (
		rec       models.PredictionRecord
		sport     string
		status    string
		createdAt string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &sport, &rec.HomeTeam, &rec.AwayTeam,
		&rec.PredictedHomeScore, &rec.PredictedAwayScore, &rec.ConfidencePercentage,
		&rec.PredictionFactors, &status, &createdAt,
		&rec.ActualHomeScore, &rec.ActualAwayScore, &rec.LeagueName, &rec.Venue, &rec.MatchDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	if rec.Sport, err = models.ParseSport(sport); err != nil {
		return nil, fmt.Errorf("scan prediction %s: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("scan prediction %s created_at: %w", rec.ID, err)
	}
	rec.Status = models.PredictionStatus(status)
	return &rec, nil
}
