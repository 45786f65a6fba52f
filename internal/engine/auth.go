package engine

import (
	"context"

	"cadenza/internal/logging"
)

// SetLoginToken installs the JWT bearer token used for mother requests. The
// userID keys local preference storage.
func (e *Engine) SetLoginToken(token, userID string) {
	e.remote.SetToken(token)
	e.authMu.Lock()
	e.userID = userID
	e.authMu.Unlock()
}

// SetLoginRole sets the role claim sent with mother requests.
func (e *Engine) SetLoginRole(role string) {
	e.remote.SetRole(role)
}

// SetDirectLoginEmail stores the email for a later DirectLogin. CI path.
func (e *Engine) SetDirectLoginEmail(email string) {
	e.authMu.Lock()
	e.directEmail = email
	e.authMu.Unlock()
}

// SetDirectLoginPW stores the password for a later DirectLogin. CI path.
func (e *Engine) SetDirectLoginPW(pw string) {
	e.authMu.Lock()
	e.directPW = pw
	e.authMu.Unlock()
}

// DirectLogin exchanges the stored email/password for a token and installs
// it. Returns the user id mother assigned.
func (e *Engine) DirectLogin(ctx context.Context) (string, error) {
	e.authMu.Lock()
	email, pw := e.directEmail, e.directPW
	e.authMu.Unlock()

	result, err := e.remote.DirectLogin(ctx, email, pw)
	if err != nil {
		return "", err
	}
	e.authMu.Lock()
	e.userID = result.UserID
	e.authMu.Unlock()

	e.logger.Info("direct login succeeded",
		logging.String("user_id", result.UserID),
		logging.String(logging.FieldEventType, "direct_login"))
	return result.UserID, nil
}
