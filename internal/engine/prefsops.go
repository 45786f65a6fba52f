package engine

import (
	"context"
	"errors"

	"cadenza/internal/bus"
	"cadenza/internal/prefs"
	"cadenza/internal/worker"
)

// DownloadUserPreferences merges the remote preference document into the
// local one (local wins on conflict) and persists the result locally.
// Requires a logged-in user.
func (e *Engine) DownloadUserPreferences() error {
	_, err := e.call(bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpDownloadPreferences,
	})
	return err
}

// DownloadUserPreferencesAsync posts completion with tags
// ["download","user_preferences"] and a boolean result.
func (e *Engine) DownloadUserPreferencesAsync(requestID int64) error {
	return e.submitAsync(requestID, bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpDownloadPreferences,
	})
}

// UploadUserPreferences merges the local preference document over the remote
// one and writes the result back to mother.
func (e *Engine) UploadUserPreferences() error {
	_, err := e.call(bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpUploadPreferences,
	})
	return err
}

// UploadUserPreferencesAsync is UploadUserPreferences posting through the bus.
func (e *Engine) UploadUserPreferencesAsync(requestID int64) error {
	return e.submitAsync(requestID, bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpUploadPreferences,
	})
}

// UserPreference reads the stored preference value at a period-separated key
// path, such as "experiences.228.theme_weights". Returns nil when unset.
func (e *Engine) UserPreference(keyPath string) (any, error) {
	return e.call(bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpUserPreference,
		Args:   worker.Args{KeyPath: keyPath},
	})
}

// UserPreferenceAsync posts the value with tags ["response","user_preference"].
func (e *Engine) UserPreferenceAsync(requestID int64, keyPath string) error {
	return e.submitAsync(requestID, bus.KindPreference, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpUserPreference,
		Args:   worker.Args{KeyPath: keyPath},
	})
}

// SetUserPreference writes a preference value at a key path, creating
// intermediate containers as needed. Local write; sync to mother is explicit
// via UploadUserPreferences.
func (e *Engine) SetUserPreference(ctx context.Context, keyPath string, value any) error {
	userID := e.identity()
	if userID == "" {
		return errors.New("not logged in")
	}
	tree, err := e.store.Preferences(ctx, userID)
	if err != nil && !errors.Is(err, prefs.ErrNoSuchUser) {
		return err
	}
	if tree == nil {
		tree = prefs.Tree{}
	}
	if err := tree.Set(keyPath, value); err != nil {
		return err
	}
	return e.store.SavePreferences(ctx, userID, tree)
}

// ClearUserPreference removes the preference value at a key path.
func (e *Engine) ClearUserPreference(ctx context.Context, keyPath string) error {
	userID := e.identity()
	if userID == "" {
		return errors.New("not logged in")
	}
	tree, err := e.store.Preferences(ctx, userID)
	if err != nil {
		if errors.Is(err, prefs.ErrNoSuchUser) {
			return nil
		}
		return err
	}
	tree.Clear(keyPath)
	return e.store.SavePreferences(ctx, userID, tree)
}
