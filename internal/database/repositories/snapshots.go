// Package repositories holds the snapshot cache repositories.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotRepository caches fetched price history so repeated
// allocation runs within the freshness window skip the network.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// SavePriceHistory upserts the close series for a symbol.
func (r *SnapshotRepository) SavePriceHistory(symbol string, closes []float64) error {
	payload, err := json.Marshal(closes)
	if err != nil {
		return fmt.Errorf("failed to encode closes: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO price_history (symbol, fetched_at, closes)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET fetched_at = excluded.fetched_at, closes = excluded.closes
	`, symbol, time.Now().UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save price history: %w", err)
	}

	return nil
}

// PriceHistory returns the cached close series for a symbol if it was
// fetched within maxAge. The second return value reports a cache hit.
func (r *SnapshotRepository) PriceHistory(symbol string, maxAge time.Duration) ([]float64, bool, error) {
	var fetchedAt time.Time
	var payload string

	err := r.db.QueryRow(`
		SELECT fetched_at, closes FROM price_history WHERE symbol = ?
	`, symbol).Scan(&fetchedAt, &payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query price history: %w", err)
	}

	if time.Since(fetchedAt) > maxAge {
		return nil, false, nil
	}

	var closes []float64
	if err := json.Unmarshal([]byte(payload), &closes); err != nil {
		return nil, false, fmt.Errorf("failed to decode closes: %w", err)
	}

	return closes, true, nil
}

// SaveCompanyFacts upserts the raw company-facts document for a CIK.
func (r *SnapshotRepository) SaveCompanyFacts(cik string, document []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO company_facts (cik, fetched_at, document)
		VALUES (?, ?, ?)
		ON CONFLICT(cik) DO UPDATE SET fetched_at = excluded.fetched_at, document = excluded.document
	`, cik, time.Now().UTC(), string(document))
	if err != nil {
		return fmt.Errorf("failed to save company facts: %w", err)
	}

	return nil
}

// CompanyFacts returns the cached facts document for a CIK if it was
// fetched within maxAge. The second return value reports a cache hit.
func (r *SnapshotRepository) CompanyFacts(cik string, maxAge time.Duration) ([]byte, bool, error) {
	var fetchedAt time.Time
	var document string

	err := r.db.QueryRow(`
		SELECT fetched_at, document FROM company_facts WHERE cik = ?
	`, cik).Scan(&fetchedAt, &document)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query company facts: %w", err)
	}

	if time.Since(fetchedAt) > maxAge {
		return nil, false, nil
	}

	return []byte(document), true, nil
}

// SaveArticleSentiment records one scored article for a symbol. Kept
// for later inspection of what drove a ranking; never read back by the
// pipeline itself.
func (r *SnapshotRepository) SaveArticleSentiment(symbol string, negative, neutral, positive float64) error {
	_, err := r.db.Exec(`
		INSERT INTO article_sentiment (symbol, fetched_at, negative, neutral, positive)
		VALUES (?, ?, ?, ?, ?)
	`, symbol, time.Now().UTC(), negative, neutral, positive)
	if err != nil {
		return fmt.Errorf("failed to save article sentiment: %w", err)
	}

	return nil
}

// Symbols lists every symbol with a cached price series.
func (r *SnapshotRepository) Symbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT symbol FROM price_history ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	return symbols, rows.Err()
}
