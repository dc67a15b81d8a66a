package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLStore persists brand profiles in SQLite through a pooled sqlx
// connection. The schema is migrated on open.
type SQLStore struct {
	db *sqlx.DB
}

func Open(path string) (*SQLStore, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

func OpenWithConfig(cfg Config) (*SQLStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("profile db path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve profile db path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingTimeout := cfg.BusyTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping profile db: %w", err)
	}

	store := &SQLStore{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("profile store not initialised")
	}
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS brand_profiles (
                site_key TEXT PRIMARY KEY,
                brand_voice TEXT NOT NULL DEFAULT '',
                industry TEXT NOT NULL DEFAULT '',
                target_keywords TEXT NOT NULL DEFAULT '[]',
                keyword_history TEXT NOT NULL DEFAULT '[]',
                last_solution TEXT NOT NULL DEFAULT '',
                updated_at TIMESTAMP NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("migrate profile schema: %w", err)
	}
	return nil
}

type profileRow struct {
	SiteKey        string    `db:"site_key"`
	BrandVoice     string    `db:"brand_voice"`
	Industry       string    `db:"industry"`
	TargetKeywords string    `db:"target_keywords"`
	KeywordHistory string    `db:"keyword_history"`
	LastSolution   string    `db:"last_solution"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (s *SQLStore) Get(ctx context.Context, siteKey string) (*BrandProfile, error) {
	if strings.TrimSpace(siteKey) == "" {
		return nil, errors.New("site key required")
	}
	var row profileRow
	err := s.db.GetContext(ctx, &row, `SELECT site_key, brand_voice, industry, target_keywords, keyword_history, last_solution, updated_at
                FROM brand_profiles WHERE site_key = ?`, siteKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	profile := BrandProfile{
		SiteKey:      row.SiteKey,
		BrandVoice:   row.BrandVoice,
		Industry:     row.Industry,
		LastSolution: row.LastSolution,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.TargetKeywords), &profile.TargetKeywords); err != nil {
		return nil, fmt.Errorf("decode target keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(row.KeywordHistory), &profile.KeywordHistory); err != nil {
		return nil, fmt.Errorf("decode keyword history: %w", err)
	}
	return &profile, nil
}

func (s *SQLStore) Put(ctx context.Context, profile BrandProfile) error {
	if strings.TrimSpace(profile.SiteKey) == "" {
		return errors.New("site key required")
	}
	targets, err := json.Marshal(emptyIfNil(profile.TargetKeywords))
	if err != nil {
		return fmt.Errorf("encode target keywords: %w", err)
	}
	history, err := json.Marshal(emptyIfNil(profile.KeywordHistory))
	if err != nil {
		return fmt.Errorf("encode keyword history: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO brand_profiles
                (site_key, brand_voice, industry, target_keywords, keyword_history, last_solution, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?)
                ON CONFLICT(site_key) DO UPDATE SET
                        brand_voice = excluded.brand_voice,
                        industry = excluded.industry,
                        target_keywords = excluded.target_keywords,
                        keyword_history = excluded.keyword_history,
                        last_solution = excluded.last_solution,
                        updated_at = excluded.updated_at`,
		profile.SiteKey, profile.BrandVoice, profile.Industry, string(targets), string(history), profile.LastSolution, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
