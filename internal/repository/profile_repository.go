package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"venture-match/internal/database"
	"venture-match/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// ProfileRepository is the read/write surface over the two profile
// populations. List* use keyset cursors (uuid.Nil starts a scan, returned
// cursor is uuid.Nil when exhausted) so a refresh never loads an entire
// population at once.
type ProfileRepository interface {
	CreateStartup(ctx context.Context, s profile.Startup) error
	UpdateStartup(ctx context.Context, s profile.Startup) error
	GetStartup(ctx context.Context, id uuid.UUID) (profile.Startup, error)
	ListStartups(ctx context.Context, cursor uuid.UUID, limit int) ([]profile.Startup, uuid.UUID, error)

	CreateInvestor(ctx context.Context, inv profile.Investor) error
	UpdateInvestor(ctx context.Context, inv profile.Investor) error
	GetInvestor(ctx context.Context, id uuid.UUID) (profile.Investor, error)
	ListInvestors(ctx context.Context, cursor uuid.UUID, limit int) ([]profile.Investor, uuid.UUID, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const startupColumns = `id, account_id, name, description, industries, stage, city,
	business_models, funding_ask_cents, currency, team_members, key_metrics,
	disabled, created_at, updated_at`

const investorColumns = `id, account_id, name, description, preferred_industries,
	excluded_industries, preferred_stages, geographic_focus,
	preferred_business_models, typical_check_size_cents, currency,
	notable_exits, disabled, created_at, updated_at`

func (r *PostgresProfileRepository) CreateStartup(ctx context.Context, s profile.Startup) error {
	team, err := json.Marshal(s.TeamMembers)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(s.KeyMetrics)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO startup_profiles
		 (id, account_id, name, description, industries, stage, city,
		  business_models, funding_ask_cents, currency, team_members, key_metrics)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.AccountID, s.Name, s.Description, s.Industries, s.Stage.String(),
		s.City, s.BusinessModels, s.FundingAskCents, s.Currency, team, metrics,
	)
	return err
}

func (r *PostgresProfileRepository) UpdateStartup(ctx context.Context, s profile.Startup) error {
	team, err := json.Marshal(s.TeamMembers)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(s.KeyMetrics)
	if err != nil {
		return err
	}

	n, err := r.db.Exec(ctx,
		`UPDATE startup_profiles SET
			name = $2, description = $3, industries = $4, stage = $5, city = $6,
			business_models = $7, funding_ask_cents = $8, currency = $9,
			team_members = $10, key_metrics = $11, disabled = $12,
			updated_at = now()
		 WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Industries, s.Stage.String(), s.City,
		s.BusinessModels, s.FundingAskCents, s.Currency, team, metrics, s.Disabled,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) GetStartup(ctx context.Context, id uuid.UUID) (profile.Startup, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+startupColumns+` FROM startup_profiles WHERE id = $1`, id)
	return scanStartup(row)
}

func (r *PostgresProfileRepository) ListStartups(ctx context.Context, cursor uuid.UUID, limit int) ([]profile.Startup, uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+startupColumns+`
		 FROM startup_profiles
		 WHERE NOT disabled AND id > $1
		 ORDER BY id ASC
		 LIMIT $2`,
		cursor, limit,
	)
	if err != nil {
		return nil, uuid.Nil, err
	}
	defer rows.Close()

	out := make([]profile.Startup, 0, limit)
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, uuid.Nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, uuid.Nil, err
	}

	next := uuid.Nil
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (r *PostgresProfileRepository) CreateInvestor(ctx context.Context, inv profile.Investor) error {
	exits, err := json.Marshal(inv.NotableExits)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO investor_profiles
		 (id, account_id, name, description, preferred_industries,
		  excluded_industries, preferred_stages, geographic_focus,
		  preferred_business_models, typical_check_size_cents, currency, notable_exits)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		inv.ID, inv.AccountID, inv.Name, inv.Description, inv.PreferredIndustries,
		inv.ExcludedIndustries, stagesToStrings(inv.PreferredStages),
		inv.GeographicFocus, inv.PreferredBusinessModels,
		inv.TypicalCheckSizeCents, inv.Currency, exits,
	)
	return err
}

func (r *PostgresProfileRepository) UpdateInvestor(ctx context.Context, inv profile.Investor) error {
	exits, err := json.Marshal(inv.NotableExits)
	if err != nil {
		return err
	}

	n, err := r.db.Exec(ctx,
		`UPDATE investor_profiles SET
			name = $2, description = $3, preferred_industries = $4,
			excluded_industries = $5, preferred_stages = $6, geographic_focus = $7,
			preferred_business_models = $8, typical_check_size_cents = $9,
			currency = $10, notable_exits = $11, disabled = $12,
			updated_at = now()
		 WHERE id = $1`,
		inv.ID, inv.Name, inv.Description, inv.PreferredIndustries,
		inv.ExcludedIndustries, stagesToStrings(inv.PreferredStages),
		inv.GeographicFocus, inv.PreferredBusinessModels,
		inv.TypicalCheckSizeCents, inv.Currency, exits, inv.Disabled,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) GetInvestor(ctx context.Context, id uuid.UUID) (profile.Investor, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+investorColumns+` FROM investor_profiles WHERE id = $1`, id)
	return scanInvestor(row)
}

func (r *PostgresProfileRepository) ListInvestors(ctx context.Context, cursor uuid.UUID, limit int) ([]profile.Investor, uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+investorColumns+`
		 FROM investor_profiles
		 WHERE NOT disabled AND id > $1
		 ORDER BY id ASC
		 LIMIT $2`,
		cursor, limit,
	)
	if err != nil {
		return nil, uuid.Nil, err
	}
	defer rows.Close()

	out := make([]profile.Investor, 0, limit)
	for rows.Next() {
		inv, err := scanInvestor(rows)
		if err != nil {
			return nil, uuid.Nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, uuid.Nil, err
	}

	next := uuid.Nil
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStartup(row scanner) (profile.Startup, error) {
	var s profile.Startup
	var stage string
	var team, metrics []byte

	err := row.Scan(
		&s.ID, &s.AccountID, &s.Name, &s.Description, &s.Industries, &stage,
		&s.City, &s.BusinessModels, &s.FundingAskCents, &s.Currency,
		&team, &metrics, &s.Disabled, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return profile.Startup{}, profile.ErrNotFound
		}
		return profile.Startup{}, err
	}

	s.Stage = profile.StageUnknown
	if st, ok := profile.ParseStage(stage); ok {
		s.Stage = st
	}
	s.TeamMembers = decodeTeamMembers(team)
	s.KeyMetrics = decodeKeyMetrics(metrics)
	return s, nil
}

func scanInvestor(row scanner) (profile.Investor, error) {
	var inv profile.Investor
	var stages []string
	var exits []byte

	err := row.Scan(
		&inv.ID, &inv.AccountID, &inv.Name, &inv.Description,
		&inv.PreferredIndustries, &inv.ExcludedIndustries, &stages,
		&inv.GeographicFocus, &inv.PreferredBusinessModels,
		&inv.TypicalCheckSizeCents, &inv.Currency, &exits,
		&inv.Disabled, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return profile.Investor{}, profile.ErrNotFound
		}
		return profile.Investor{}, err
	}

	inv.PreferredStages = make([]profile.Stage, 0, len(stages))
	for _, raw := range stages {
		if st, ok := profile.ParseStage(raw); ok {
			inv.PreferredStages = append(inv.PreferredStages, st)
		}
	}
	inv.NotableExits = decodeNotableExits(exits)
	return inv, nil
}

func stagesToStrings(stages []profile.Stage) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		if n := s.String(); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// The jsonb blobs are loosely typed at rest. Malformed blobs or entries are
// dropped here rather than surfaced to callers.
func decodeTeamMembers(raw []byte) []profile.TeamMember {
	var all []profile.TeamMember
	if len(raw) == 0 || json.Unmarshal(raw, &all) != nil {
		return nil
	}
	out := all[:0]
	for _, m := range all {
		if m.Valid() {
			out = append(out, m)
		}
	}
	return out
}

func decodeKeyMetrics(raw []byte) []profile.KeyMetric {
	var all []profile.KeyMetric
	if len(raw) == 0 || json.Unmarshal(raw, &all) != nil {
		return nil
	}
	out := all[:0]
	for _, m := range all {
		if m.Valid() {
			out = append(out, m)
		}
	}
	return out
}

func decodeNotableExits(raw []byte) []profile.NotableExit {
	var all []profile.NotableExit
	if len(raw) == 0 || json.Unmarshal(raw, &all) != nil {
		return nil
	}
	out := all[:0]
	for _, e := range all {
		if e.Valid() {
			out = append(out, e)
		}
	}
	return out
}
