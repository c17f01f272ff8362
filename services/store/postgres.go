package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"ymurakami/suumowatcher/internal/scraper"
	apperrors "ymurakami/suumowatcher/pkg/errors"
)

// PostgresStore persists listings to PostgreSQL, one row per (criterion,
// detail URL). Upserts give the same last-seen-wins merge semantics as the
// file store; transactions stand in for its temp-and-rename atomicity.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, runs schema migrations, and returns
// a ready-to-use store.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.NewPersistence("postgres", "open", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, apperrors.NewPersistence("postgres", "ping failed after retries", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, apperrors.NewPersistence("postgres", "migrate", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			criterion      TEXT         NOT NULL,
			url            TEXT         NOT NULL,
			listing_id     TEXT         NOT NULL DEFAULT '',
			name           TEXT         NOT NULL DEFAULT '',
			address        TEXT         NOT NULL DEFAULT '',
			station        TEXT         NOT NULL DEFAULT '',
			walk_minutes   INT          NOT NULL DEFAULT 0,
			rent           INT          NOT NULL DEFAULT 0,
			management_fee INT          NOT NULL DEFAULT 0,
			deposit        INT          NOT NULL DEFAULT 0,
			key_money      INT          NOT NULL DEFAULT 0,
			layout         TEXT         NOT NULL DEFAULT '',
			size           NUMERIC(7,2) NOT NULL DEFAULT 0,
			age_years      INT          NOT NULL DEFAULT 0,
			floor          TEXT         NOT NULL DEFAULT '',
			image_url      TEXT         NOT NULL DEFAULT '',
			updated_at     BIGINT       NOT NULL DEFAULT 0,
			PRIMARY KEY (criterion, url)
		);

		CREATE INDEX IF NOT EXISTS idx_listings_criterion ON listings(criterion);
	`)
	return err
}

// Load returns every listing recorded for the criterion, in insertion
// order by discovery timestamp.
func (ps *PostgresStore) Load(criterionName string) ([]scraper.Listing, error) {
	rows, err := ps.db.Query(`
		SELECT listing_id, name, address, station, walk_minutes, rent,
		       management_fee, deposit, key_money, layout, size, age_years,
		       floor, url, image_url, updated_at
		FROM listings
		WHERE criterion = $1
		ORDER BY updated_at, url
	`, criterionName)
	if err != nil {
		return nil, apperrors.NewPersistence(criterionName, "query listings", err)
	}
	defer rows.Close()

	var listings []scraper.Listing
	for rows.Next() {
		var l scraper.Listing
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Address, &l.Station, &l.WalkMinutes, &l.Rent,
			&l.ManagementFee, &l.Deposit, &l.KeyMoney, &l.Layout, &l.Size,
			&l.AgeYears, &l.Floor, &l.URL, &l.ImageURL, &l.UpdatedAt,
		); err != nil {
			return nil, apperrors.NewPersistence(criterionName, "scan row", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Merge upserts newListings for the criterion in one transaction.
func (ps *PostgresStore) Merge(criterionName string, newListings []scraper.Listing) error {
	if len(newListings) == 0 {
		return nil
	}

	tx, err := ps.db.Begin()
	if err != nil {
		return apperrors.NewPersistence(criterionName, "begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO listings (
			criterion, url, listing_id, name, address, station, walk_minutes,
			rent, management_fee, deposit, key_money, layout, size, age_years,
			floor, image_url, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (criterion, url) DO UPDATE SET
			listing_id = EXCLUDED.listing_id,
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			station = EXCLUDED.station,
			walk_minutes = EXCLUDED.walk_minutes,
			rent = EXCLUDED.rent,
			management_fee = EXCLUDED.management_fee,
			deposit = EXCLUDED.deposit,
			key_money = EXCLUDED.key_money,
			layout = EXCLUDED.layout,
			size = EXCLUDED.size,
			age_years = EXCLUDED.age_years,
			floor = EXCLUDED.floor,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return apperrors.NewPersistence(criterionName, "prepare upsert", err)
	}
	defer stmt.Close()

	for _, l := range newListings {
		if _, err := stmt.Exec(
			criterionName, l.URL, l.ID, l.Name, l.Address, l.Station,
			l.WalkMinutes, l.Rent, l.ManagementFee, l.Deposit, l.KeyMoney,
			l.Layout, l.Size, l.AgeYears, l.Floor, l.ImageURL, l.UpdatedAt,
		); err != nil {
			return apperrors.NewPersistence(criterionName, fmt.Sprintf("upsert %s", l.URL), err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
