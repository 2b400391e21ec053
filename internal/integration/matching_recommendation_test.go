package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"venture-match/internal/config"
	"venture-match/internal/database"
	"venture-match/internal/database/migration"
	dbpostgres "venture-match/internal/database/postgres"
	"venture-match/internal/delivery/http/middleware"
	"venture-match/internal/delivery/http/routes"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type recommendationItem struct {
	ProfileID       uuid.UUID `json:"profile_id"`
	Name            string    `json:"name"`
	MatchPercentage int       `json:"match_percentage"`
}

type recommendationPage struct {
	Items      []recommendationItem `json:"items"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

func TestIntegration_Refresh_Recommendations_PairMatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	seed := seedDummyData(t, ctx, db)
	defer cleanupSeed(t, ctx, db, seed)

	app := newTestFiberApp(t, seed.cfg, db)

	tok := loginAndGetJWT(t, app)
	if tok == "" {
		t.Fatalf("login: empty access_token")
	}

	refreshMatches(t, app, tok, seed.startupID)

	page := callRecommendations(t, app, tok, seed.startupID)
	if len(page.Items) < 2 {
		t.Fatalf("recommendations: expected at least 2 items, got %d", len(page.Items))
	}

	assertNoDuplicates(t, page.Items)
	assertSortedByPercentageDesc(t, page.Items)

	byID := map[uuid.UUID]int{}
	for _, it := range page.Items {
		byID[it.ProfileID] = it.MatchPercentage
	}
	strong, ok := byID[seed.strongInvestorID]
	if !ok {
		t.Fatalf("recommendations: seeded aligned investor missing")
	}
	veto, ok := byID[seed.vetoInvestorID]
	if !ok {
		t.Fatalf("recommendations: seeded vetoing investor missing")
	}
	if strong <= veto {
		t.Fatalf("recommendations: aligned investor (%d) should outrank vetoing investor (%d)", strong, veto)
	}

	pair := callPairMatch(t, app, tok, seed.startupID, seed.vetoInvestorID)
	if pair.MatchPercentage != veto {
		t.Fatalf("pair match: expected %d to agree with persisted row, got %d", veto, pair.MatchPercentage)
	}
	foundVeto := false
	for _, f := range pair.Breakdown {
		if f.Factor == "industry_overlap" && f.Score == 0 {
			foundVeto = true
		}
	}
	if !foundVeto {
		t.Fatalf("pair match: expected zero industry factor for excluded industry")
	}
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set VENTUREMATCH_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	dbcfg := config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	}

	db, err := dbpostgres.Connect(ctx, dbcfg)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	migDir := resolveMigrationsDir(t)
	r := migration.Runner{Dir: migDir}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func resolveMigrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("resolve migrations dir: runtime.Caller failed")
	}

	// this file: internal/integration/matching_recommendation_test.go
	root := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
	migDir := filepath.Join(root, "migrations")

	if st, err := os.Stat(migDir); err != nil || !st.IsDir() {
		t.Fatalf("resolve migrations dir: not found or not a dir: %s", migDir)
	}
	files, _ := filepath.Glob(filepath.Join(migDir, "V*__*.sql"))
	if len(files) == 0 {
		t.Fatalf("resolve migrations dir: no migration files found in %s", migDir)
	}

	return migDir
}

type seededIDs struct {
	cfg config.Config

	founderID  uuid.UUID
	accountIDs []uuid.UUID

	startupID         uuid.UUID
	strongInvestorID  uuid.UUID
	vetoInvestorID    uuid.UUID
	partialInvestorID uuid.UUID
}

func seedDummyData(t *testing.T, ctx context.Context, db database.DB) seededIDs {
	t.Helper()

	out := seededIDs{
		cfg: config.Config{
			App: config.AppConfig{AppName: "venture-match", Environment: "test", HTTPPort: "0"},
			JWT: config.JWTConfig{
				AccessSecret:     stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_JWT_ACCESS_SECRET"), "test-access-secret"),
				RefreshSecret:    stringsOrDefault(os.Getenv("VENTUREMATCH_TEST_JWT_REFRESH_SECRET"), "test-refresh-secret"),
				AccessExpiresIn:  15 * time.Minute,
				RefreshExpiresIn: 24 * time.Hour,
			},
			Match: config.MatchConfig{
				BatchSize:       50,
				RefreshWorkers:  2,
				FreshnessWindow: 30 * time.Minute,
				RefreshTimeout:  10 * time.Second,
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
	}

	out.founderID = ensureAccount(t, ctx, db, "founder@example.com", "password123")

	out.startupID = uuid.New()
	mustExec(t, ctx, db,
		`INSERT INTO startup_profiles
		 (id, account_id, name, industries, stage, city, business_models, funding_ask_cents)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO NOTHING`,
		out.startupID, out.founderID, "IT Payline",
		[]string{"fintech"}, "mvp", "Manila", []string{"b2b"}, int64(100_000_00),
	)

	out.strongInvestorID = seedInvestor(t, ctx, db, &out, "IT Harbor Ventures",
		[]string{"fintech", "healthtech"}, nil, []string{"mvp", "early_traction"},
		[]string{"Manila"}, []string{"b2b"}, 100_000_00)
	out.vetoInvestorID = seedInvestor(t, ctx, db, &out, "IT NoFin Capital",
		[]string{"healthtech"}, []string{"fintech"}, []string{"mvp"},
		[]string{"Manila"}, nil, 100_000_00)
	out.partialInvestorID = seedInvestor(t, ctx, db, &out, "IT Farshore Fund",
		[]string{"fintech"}, nil, []string{"expansion"},
		[]string{"Singapore"}, nil, 5_000_000_00)

	return out
}

func seedInvestor(t *testing.T, ctx context.Context, db database.DB, out *seededIDs, name string,
	preferred, excluded, stages, focus, models []string, checkCents int64) uuid.UUID {
	t.Helper()

	accountID := ensureAccount(t, ctx, db, name+"@example.com", "password123")
	out.accountIDs = append(out.accountIDs, accountID)

	id := uuid.New()
	if excluded == nil {
		excluded = []string{}
	}
	if models == nil {
		models = []string{}
	}
	mustExec(t, ctx, db,
		`INSERT INTO investor_profiles
		 (id, account_id, name, preferred_industries, excluded_industries,
		  preferred_stages, geographic_focus, preferred_business_models,
		  typical_check_size_cents)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO NOTHING`,
		id, accountID, name, preferred, excluded, stages, focus, models, checkCents,
	)
	return id
}

func ensureAccount(t *testing.T, ctx context.Context, db database.DB, email, password string) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id := uuid.New()
	mustExec(t, ctx, db,
		`INSERT INTO accounts (id, email, password_hash) VALUES ($1,$2,$3)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		id, email, string(hash),
	)

	row := db.QueryRow(ctx, `SELECT id FROM accounts WHERE email = $1`, email)
	if err := row.Scan(&id); err != nil {
		t.Fatalf("read account id: %v", err)
	}
	return id
}

func cleanupSeed(t *testing.T, ctx context.Context, db database.DB, seed seededIDs) {
	t.Helper()

	_, _ = db.Exec(ctx, `DELETE FROM matches WHERE startup_id = $1`, seed.startupID)
	_, _ = db.Exec(ctx, `DELETE FROM startup_profiles WHERE id = $1`, seed.startupID)
	_, _ = db.Exec(ctx, `DELETE FROM investor_profiles WHERE id IN ($1,$2,$3)`,
		seed.strongInvestorID, seed.vetoInvestorID, seed.partialInvestorID)
	_, _ = db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, seed.founderID)
	for _, id := range seed.accountIDs {
		_, _ = db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	}
}

func newTestFiberApp(t *testing.T, cfg config.Config, db database.DB) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware().Middleware())

	logger := log.New(os.Stderr, "", log.LstdFlags)
	routes.NewRegistry(cfg, db, nil, logger).Register(app)
	return app
}

func loginAndGetJWT(t *testing.T, app *fiber.App) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    "founder@example.com",
		"password": "password123",
	})

	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login request error: %v", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("login decode error: %v", err)
	}
	if sr.Status != 200 {
		t.Fatalf("login: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("login data unmarshal: %v", err)
	}
	return data.AccessToken
}

func refreshMatches(t *testing.T, app *fiber.App, jwt string, startupID uuid.UUID) {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/startups/"+startupID.String()+"/matches/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("refresh request error: %v", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("refresh decode error: %v", err)
	}
	if sr.Status != 200 {
		t.Fatalf("refresh: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}

	var data struct {
		Scored int `json:"scored"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("refresh data unmarshal: %v", err)
	}
	if data.Scored < 2 {
		t.Fatalf("refresh: expected at least 2 scored, got %d", data.Scored)
	}
}

func callRecommendations(t *testing.T, app *fiber.App, jwt string, startupID uuid.UUID) recommendationPage {
	t.Helper()

	req := httptest.NewRequest("GET", "/api/v1/startups/"+startupID.String()+"/recommendations?page=1&page_size=20", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("recommendations request error: %v", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("recommendations decode error: %v", err)
	}
	if sr.Status != 200 {
		t.Fatalf("recommendations: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}

	var page recommendationPage
	if err := json.Unmarshal(sr.Data, &page); err != nil {
		t.Fatalf("recommendations data unmarshal: %v", err)
	}
	return page
}

type pairMatchData struct {
	MatchPercentage int `json:"match_percentage"`
	Breakdown       []struct {
		Factor string  `json:"factor"`
		Score  float64 `json:"score"`
	} `json:"breakdown"`
}

func callPairMatch(t *testing.T, app *fiber.App, jwt string, startupID, investorID uuid.UUID) pairMatchData {
	t.Helper()

	req := httptest.NewRequest("GET", "/api/v1/matches/"+startupID.String()+"/"+investorID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+jwt)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("pair match request error: %v", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("pair match decode error: %v", err)
	}
	if sr.Status != 200 {
		t.Fatalf("pair match: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}

	var data pairMatchData
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("pair match data unmarshal: %v", err)
	}
	return data
}

func assertNoDuplicates(t *testing.T, items []recommendationItem) {
	t.Helper()

	seen := map[uuid.UUID]struct{}{}
	for _, it := range items {
		if _, ok := seen[it.ProfileID]; ok {
			t.Fatalf("duplicate recommendation for %s", it.ProfileID)
		}
		seen[it.ProfileID] = struct{}{}
	}
}

func assertSortedByPercentageDesc(t *testing.T, items []recommendationItem) {
	t.Helper()

	for i := 1; i < len(items); i++ {
		if items[i].MatchPercentage > items[i-1].MatchPercentage {
			t.Fatalf("items not sorted desc at index %d: %d > %d",
				i, items[i].MatchPercentage, items[i-1].MatchPercentage)
		}
	}
}

func mustExec(t *testing.T, ctx context.Context, db database.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(ctx, query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
