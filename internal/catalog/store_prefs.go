package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cadenza/internal/prefs"
)

// Preferences loads the stored preference document for a user. Returns
// prefs.ErrNoSuchUser when no row exists.
func (s *Store) Preferences(ctx context.Context, userID string) (prefs.Tree, error) {
	ctx = ensureContext(ctx)
	var document string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM user_preferences WHERE user_id = ?`, userID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, prefs.ErrNoSuchUser
	}
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	tree, err := prefs.Parse([]byte(document))
	if err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return tree, nil
}

// SavePreferences stores the preference document for a user, replacing any
// previous row.
func (s *Store) SavePreferences(ctx context.Context, userID string, tree prefs.Tree) error {
	document, err := tree.Encode()
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return s.execWrite(ctx,
		`INSERT INTO user_preferences (user_id, document, updated_at)
         VALUES (?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET
             document = excluded.document,
             updated_at = excluded.updated_at`,
		userID, string(document), time.Now().UTC().Format(time.RFC3339Nano))
}
