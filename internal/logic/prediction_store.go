package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/matchoracle/prediction-api/internal/models"
)

// predictionColumns is the column order every store selects and scans
const predictionColumns = `id, user_id, sport, home_team, away_team,
	predicted_home_score, predicted_away_score, confidence_percentage,
	prediction_factors, status, created_at,
	actual_home_score, actual_away_score, league_name, venue, match_date`

// orderClause maps a sort order to SQL. Anything but asc lists newest first.
func orderClause(o models.SortOrder) string {
	if o == models.OrderAsc {
		return "ASC"
	}
	return "DESC"
}

func listLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultListLimit
	}
	return limit
}

// newRecord copies the caller's fields and assigns the identity columns
func newRecord(in *models.PredictionRecord, now time.Time) *models.PredictionRecord {
	rec := *in
	rec.ID = uuid.NewString()
	rec.CreatedAt = now.UTC()
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	return &rec
}

type pgPredictionStore struct {
	pg  PgPool
	now func() time.Time
}

// NewPostgresPredictionStore stores predictions in the predictions table
func NewPostgresPredictionStore(pg PgPool) PredictionStore {
	return &pgPredictionStore{pg: pg, now: time.Now}
}

func (s *pgPredictionStore) Create(ctx context.Context, in *models.PredictionRecord) (*models.PredictionRecord, error) {
	rec := newRecord(in, s.now())
	_, err := s.pg.Exec(ctx, `
		INSERT INTO predictions (`+predictionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		rec.ID, rec.UserID, rec.Sport.String(), rec.HomeTeam, rec.AwayTeam,
		rec.PredictedHomeScore, rec.PredictedAwayScore, rec.ConfidencePercentage,
		rec.PredictionFactors, string(rec.Status), rec.CreatedAt,
		rec.ActualHomeScore, rec.ActualAwayScore, rec.LeagueName, rec.Venue, rec.MatchDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert prediction: %w", err)
	}
	return rec, nil
}

func (s *pgPredictionStore) List(ctx context.Context, opts models.ListOptions) ([]models.PredictionRecord, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE user_id = $1
		ORDER BY created_at `+orderClause(opts.Order)+`
		LIMIT $2
	`, opts.UserID, listLimit(opts.Limit))
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	records := []models.PredictionRecord{}
	for rows.Next() {
		rec, err := scanPgRecord(rows)
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

func (s *pgPredictionStore) Get(ctx context.Context, userID, id string) (*models.PredictionRecord, error) {
	row := s.pg.QueryRow(ctx, `
		SELECT `+predictionColumns+`
		FROM predictions
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	rec, err := scanPgRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPredictionNotFound
	}
	return rec, err
}

func scanPgRecord(row pgx.Row) (*models.PredictionRecord, error) {
	var (
		rec    models.PredictionRecord
		sport  string
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &sport, &rec.HomeTeam, &rec.AwayTeam,
		&rec.PredictedHomeScore, &rec.PredictedAwayScore, &rec.ConfidencePercentage,
		&rec.PredictionFactors, &status, &rec.CreatedAt,
		&rec.ActualHomeScore, &rec.ActualAwayScore, &rec.LeagueName, &rec.Venue, &rec.MatchDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	if rec.Sport, err = models.ParseSport(sport); err != nil {
		return nil, fmt.Errorf("scan prediction %s: %w", rec.ID, err)
	}
	rec.Status = models.PredictionStatus(status)
	return &rec, nil
}
