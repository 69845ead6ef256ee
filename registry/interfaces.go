package registry

// Notifier delivers a message to a single connection. It is implemented by
// the broadcast package; defined here to break the import cycle between
// registry and broadcast.
type Notifier interface {
	Unicast(sessionID string, msgID uint16, data []byte) error
}
