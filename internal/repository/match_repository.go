package repository

import (
	"context"
	"time"

	"venture-match/internal/database"
	"venture-match/internal/domain/match"
	"venture-match/internal/domain/profile"

	"github.com/google/uuid"
)

type MatchUpsert struct {
	StartupID  uuid.UUID
	InvestorID uuid.UUID
	Percentage int
	ScoredAt   time.Time
}

// RankedMatch is a match row joined with the counterpart profile's display
// attributes, in ranking order.
type RankedMatch struct {
	StartupID  uuid.UUID
	InvestorID uuid.UUID
	Percentage int
	ScoredAt   time.Time

	CounterpartID        uuid.UUID
	CounterpartName      string
	Industries           []string
	Regions              []string
	Stage                string // startup counterparts only
	CounterpartUpdatedAt time.Time
}

// MatchRepository owns all writes to the matches table. The (startup_id,
// investor_id) unique key plus ON CONFLICT upserts make concurrent refreshes
// of the same profile safe without in-process locking.
type MatchRepository interface {
	Upsert(ctx context.Context, m MatchUpsert) error
	UpsertBatch(ctx context.Context, ms []MatchUpsert) error
	GetPair(ctx context.Context, startupID, investorID uuid.UUID) (match.Match, error)
	ListRanked(ctx context.Context, profileID uuid.UUID, t profile.Type, limit, offset int) ([]RankedMatch, error)
	CountForProfile(ctx context.Context, profileID uuid.UUID, t profile.Type) (int, error)
	NewestScoredAt(ctx context.Context, profileID uuid.UUID, t profile.Type) (time.Time, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

const upsertMatchSQL = `
INSERT INTO matches (id, startup_id, investor_id, match_percentage, scored_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (startup_id, investor_id) DO UPDATE SET
	match_percentage = EXCLUDED.match_percentage,
	scored_at = EXCLUDED.scored_at`

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m MatchUpsert) error {
	if m.StartupID == uuid.Nil || m.InvestorID == uuid.Nil {
		return nil
	}
	if m.ScoredAt.IsZero() {
		m.ScoredAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx, upsertMatchSQL,
		uuid.New(), m.StartupID, m.InvestorID, m.Percentage, m.ScoredAt)
	return err
}

func (r *PostgresMatchRepository) UpsertBatch(ctx context.Context, ms []MatchUpsert) error {
	if len(ms) == 0 {
		return nil
	}
	if len(ms) == 1 {
		return r.Upsert(ctx, ms[0])
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, m := range ms {
		if m.StartupID == uuid.Nil || m.InvestorID == uuid.Nil {
			continue
		}
		if m.ScoredAt.IsZero() {
			m.ScoredAt = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx, upsertMatchSQL,
			uuid.New(), m.StartupID, m.InvestorID, m.Percentage, m.ScoredAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresMatchRepository) GetPair(ctx context.Context, startupID, investorID uuid.UUID) (match.Match, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, startup_id, investor_id, match_percentage, scored_at
		 FROM matches WHERE startup_id = $1 AND investor_id = $2`,
		startupID, investorID,
	)

	var m match.Match
	if err := row.Scan(&m.ID, &m.StartupID, &m.InvestorID, &m.Percentage, &m.ScoredAt); err != nil {
		if isNoRows(err) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, err
	}
	return m, nil
}

// ListRanked orders by percentage descending, then counterpart recency
// descending, then counterpart id ascending so pagination stays stable
// across identical percentages.
func (r *PostgresMatchRepository) ListRanked(ctx context.Context, profileID uuid.UUID, t profile.Type, limit, offset int) ([]RankedMatch, error) {
	if t == profile.TypeStartup {
		return r.listRankedForStartup(ctx, profileID, limit, offset)
	}
	return r.listRankedForInvestor(ctx, profileID, limit, offset)
}

func (r *PostgresMatchRepository) listRankedForStartup(ctx context.Context, startupID uuid.UUID, limit, offset int) ([]RankedMatch, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.startup_id, m.investor_id, m.match_percentage, m.scored_at,
			i.id, i.name, i.preferred_industries, i.geographic_focus, i.updated_at
		 FROM matches m
		 JOIN investor_profiles i ON i.id = m.investor_id
		 WHERE m.startup_id = $1 AND NOT i.disabled
		 ORDER BY m.match_percentage DESC, i.updated_at DESC, i.id ASC
		 LIMIT $2 OFFSET $3`,
		startupID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RankedMatch, 0, limit)
	for rows.Next() {
		var rm RankedMatch
		if err := rows.Scan(
			&rm.StartupID, &rm.InvestorID, &rm.Percentage, &rm.ScoredAt,
			&rm.CounterpartID, &rm.CounterpartName, &rm.Industries, &rm.Regions,
			&rm.CounterpartUpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *PostgresMatchRepository) listRankedForInvestor(ctx context.Context, investorID uuid.UUID, limit, offset int) ([]RankedMatch, error) {
	rows, err := r.db.Query(ctx,
		`SELECT m.startup_id, m.investor_id, m.match_percentage, m.scored_at,
			s.id, s.name, s.industries, s.city, s.stage, s.updated_at
		 FROM matches m
		 JOIN startup_profiles s ON s.id = m.startup_id
		 WHERE m.investor_id = $1 AND NOT s.disabled
		 ORDER BY m.match_percentage DESC, s.updated_at DESC, s.id ASC
		 LIMIT $2 OFFSET $3`,
		investorID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RankedMatch, 0, limit)
	for rows.Next() {
		var rm RankedMatch
		var city string
		if err := rows.Scan(
			&rm.StartupID, &rm.InvestorID, &rm.Percentage, &rm.ScoredAt,
			&rm.CounterpartID, &rm.CounterpartName, &rm.Industries, &city,
			&rm.Stage, &rm.CounterpartUpdatedAt,
		); err != nil {
			return nil, err
		}
		if city != "" {
			rm.Regions = []string{city}
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *PostgresMatchRepository) CountForProfile(ctx context.Context, profileID uuid.UUID, t profile.Type) (int, error) {
	query := `SELECT COUNT(*) FROM matches m
		JOIN investor_profiles i ON i.id = m.investor_id
		WHERE m.startup_id = $1 AND NOT i.disabled`
	if t == profile.TypeInvestor {
		query = `SELECT COUNT(*) FROM matches m
			JOIN startup_profiles s ON s.id = m.startup_id
			WHERE m.investor_id = $1 AND NOT s.disabled`
	}

	var n int
	if err := r.db.QueryRow(ctx, query, profileID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresMatchRepository) NewestScoredAt(ctx context.Context, profileID uuid.UUID, t profile.Type) (time.Time, error) {
	col := "startup_id"
	if t == profile.TypeInvestor {
		col = "investor_id"
	}

	var newest *time.Time
	err := r.db.QueryRow(ctx,
		`SELECT MAX(scored_at) FROM matches WHERE `+col+` = $1`, profileID,
	).Scan(&newest)
	if err != nil {
		return time.Time{}, err
	}
	if newest == nil {
		return time.Time{}, nil
	}
	return *newest, nil
}
