package sqlite

import "fmt"

// ListFavorites returns favorite coin ids in the order they were added.
func (s *Store) ListFavorites() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM favorites ORDER BY added_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddFavorite marks id as a favorite. Adding twice is a no-op.
func (s *Store) AddFavorite(id string) error {
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO favorites (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("sqlite add favorite %s: %w", id, err)
	}
	return nil
}

// RemoveFavorite unmarks id.
func (s *Store) RemoveFavorite(id string) error {
	if _, err := s.db.Exec(`DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite remove favorite %s: %w", id, err)
	}
	return nil
}

// IsFavorite reports whether id is a favorite.
func (s *Store) IsFavorite(id string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM favorites WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite check favorite %s: %w", id, err)
	}
	return n > 0, nil
}
