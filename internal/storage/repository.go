package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertContributionSQL = `INSERT INTO contributions (
        sale_address,
        account_address,
        amount_wei,
        tx_hash,
        result,
        reason
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    RETURNING id, sale_address, account_address, amount_wei, tx_hash, result, reason, created_at;`

	listRecentContributionsSQL = `SELECT
        id,
        sale_address,
        account_address,
        amount_wei,
        tx_hash,
        result,
        reason,
        created_at
    FROM contributions
    WHERE sale_address = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	upsertRaiseSampleSQL = `INSERT INTO raise_samples (
        sale_address,
        bucket_ts,
        raised_wei,
        softcap_wei,
        status
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    ON CONFLICT (sale_address, bucket_ts) DO UPDATE
    SET
        raised_wei  = EXCLUDED.raised_wei,
        softcap_wei = EXCLUDED.softcap_wei,
        status      = EXCLUDED.status;`

	listSamplesBetweenSQL = `SELECT
        sale_address,
        bucket_ts,
        raised_wei,
        softcap_wei,
        status,
        created_at
    FROM raise_samples
    WHERE sale_address = $1
      AND bucket_ts >= $2
      AND bucket_ts < $3
    ORDER BY bucket_ts;`

	listRecentSamplesSQL = `SELECT
        sale_address,
        bucket_ts,
        raised_wei,
        softcap_wei,
        status,
        created_at
    FROM raise_samples
    WHERE sale_address = $1
    ORDER BY bucket_ts DESC
    LIMIT $2;`

	countSamplesSQL = `SELECT COUNT(*) FROM raise_samples WHERE sale_address = $1;`
)

// ContributionStore defines operations for contribution auditing.
type ContributionStore interface {
	InsertContribution(ctx context.Context, c Contribution) (Contribution, error)
	ListRecentContributions(ctx context.Context, saleAddress string, limit int) ([]Contribution, error)
}

// RaiseSampleStore defines operations for raise observation persistence.
type RaiseSampleStore interface {
	UpsertRaiseSample(ctx context.Context, sample RaiseSample) error
	ListSamplesBetween(ctx context.Context, saleAddress string, from, to time.Time) ([]RaiseSample, error)
	ListRecentSamples(ctx context.Context, saleAddress string, limit int) ([]RaiseSample, error)
	CountSamples(ctx context.Context, saleAddress string) (int64, error)
}

// Store aggregates access to contributions and raise samples.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertContribution persists a submitted buy attempt.
func (s *Store) InsertContribution(ctx context.Context, c Contribution) (Contribution, error) {
	pool, err := s.getPool()
	if err != nil {
		return Contribution{}, err
	}

	row := pool.QueryRow(ctx, insertContributionSQL,
		c.Sale,
		c.Account,
		c.AmountWei.String(),
		c.TxHash,
		c.Result,
		c.Reason,
	)

	rec, scanErr := scanContribution(row)
	if scanErr != nil {
		return Contribution{}, fmt.Errorf("insert contribution: %w", scanErr)
	}
	return rec, nil
}

// ListRecentContributions lists the most recent contributions for a sale.
func (s *Store) ListRecentContributions(ctx context.Context, saleAddress string, limit int) ([]Contribution, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentContributionsSQL, saleAddress, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent contributions: %w", queryErr)
	}
	defer rows.Close()

	contributions := make([]Contribution, 0, limit)
	for rows.Next() {
		rec, scanErr := scanContribution(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		contributions = append(contributions, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return contributions, nil
}

// UpsertRaiseSample persists or updates a raise observation.
func (s *Store) UpsertRaiseSample(ctx context.Context, sample RaiseSample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, upsertRaiseSampleSQL,
		sample.Sale,
		sample.Bucket,
		sample.RaisedWei.String(),
		sample.SoftCapWei.String(),
		sample.Status,
	)
	if execErr != nil {
		return fmt.Errorf("upsert raise sample: %w", execErr)
	}
	return nil
}

// ListSamplesBetween lists raise observations within a time window.
func (s *Store) ListSamplesBetween(ctx context.Context, saleAddress string, from, to time.Time) ([]RaiseSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, saleAddress, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]RaiseSample, 0)
	for rows.Next() {
		sample, scanErr := scanRaiseSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// ListRecentSamples lists the most recent raise observations ordered by descending bucket.
func (s *Store) ListRecentSamples(ctx context.Context, saleAddress string, limit int) ([]RaiseSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, saleAddress, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]RaiseSample, 0, limit)
	for rows.Next() {
		sample, scanErr := scanRaiseSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// CountSamples counts stored observations for a sale.
func (s *Store) CountSamples(ctx context.Context, saleAddress string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSamplesSQL, saleAddress).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count samples: %w", scanErr)
	}
	return count, nil
}

func scanContribution(row pgx.Row) (Contribution, error) {
	var (
		rec       Contribution
		amountStr string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.Sale,
		&rec.Account,
		&amountStr,
		&rec.TxHash,
		&rec.Result,
		&rec.Reason,
		&rec.CreatedAt,
	); err != nil {
		return Contribution{}, err
	}

	amount, convErr := decimal.NewFromString(amountStr)
	if convErr != nil {
		return Contribution{}, fmt.Errorf("parse amount wei: %w", convErr)
	}
	rec.AmountWei = amount
	return rec, nil
}

func scanRaiseSample(rows pgx.Rows) (RaiseSample, error) {
	var (
		sample     RaiseSample
		raisedStr  string
		softcapStr string
	)
	if err := rows.Scan(
		&sample.Sale,
		&sample.Bucket,
		&raisedStr,
		&softcapStr,
		&sample.Status,
		&sample.CreatedAt,
	); err != nil {
		return RaiseSample{}, err
	}

	raised, err := decimal.NewFromString(raisedStr)
	if err != nil {
		return RaiseSample{}, fmt.Errorf("parse raised wei: %w", err)
	}
	softcap, err := decimal.NewFromString(softcapStr)
	if err != nil {
		return RaiseSample{}, fmt.Errorf("parse softcap wei: %w", err)
	}

	sample.RaisedWei = raised
	sample.SoftCapWei = softcap
	return sample, nil
}
