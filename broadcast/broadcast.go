// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/pixelden/lobbyserver/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionNotifier delivers registry notifications to live connections through
// the session manager. It implements registry.Notifier.
type SessionNotifier struct {
	sessionManager *session.Manager
}

func NewSessionNotifier(sessionManager *session.Manager) *SessionNotifier {
	return &SessionNotifier{
		sessionManager: sessionManager,
	}
}

// Unicast sends one message to one connection. A missing session means the
// connection is already gone; the caller treats that as skippable.
func (b *SessionNotifier) Unicast(sessionID string, msgID uint16, data []byte) error {
	sess, exists := b.sessionManager.Get(sessionID)
	if !exists {
		return ErrSessionNotFound
	}
	return sess.Send(msgID, data)
}
