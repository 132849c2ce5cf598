package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cryptotracker/internal/model"
)

const searchLimit = 50

// SaveCoins upserts coins in a single transaction.
func (s *Store) SaveCoins(coins []model.Coin) error {
	if len(coins) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO coins (id, symbol, name, rank, source, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range coins {
		if _, err := stmt.Exec(c.ID, c.Symbol, c.Name, c.Rank, c.Source, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite upsert coin %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// ListAll returns every stored coin, best ranked first.
func (s *Store) ListAll() ([]model.Coin, error) {
	rows, err := s.db.Query(`
		SELECT id, symbol, name, rank, source
		FROM coins
		ORDER BY rank ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query coins: %w", err)
	}
	return scanCoins(rows)
}

// Search matches query against id, symbol and name (case-insensitive
// substring) and returns at most 50 coins, best ranked first.
func (s *Store) Search(query string) ([]model.Coin, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, symbol, name, rank, source
		FROM coins
		WHERE id LIKE ? OR symbol LIKE ? OR name LIKE ?
		ORDER BY rank ASC, id ASC
		LIMIT ?
	`, pattern, pattern, pattern, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("sqlite search coins: %w", err)
	}
	return scanCoins(rows)
}

// IsEmpty reports whether no coin metadata has been stored yet.
func (s *Store) IsEmpty() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM coins`).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite count coins: %w", err)
	}
	return n == 0, nil
}

func scanCoins(rows *sql.Rows) ([]model.Coin, error) {
	defer rows.Close()

	var coins []model.Coin
	for rows.Next() {
		var c model.Coin
		var rank sql.NullInt64
		var source sql.NullString
		if err := rows.Scan(&c.ID, &c.Symbol, &c.Name, &rank, &source); err != nil {
			return nil, fmt.Errorf("sqlite scan coin: %w", err)
		}
		c.Rank = int(rank.Int64)
		c.Source = source.String
		coins = append(coins, c)
	}
	return coins, rows.Err()
}
