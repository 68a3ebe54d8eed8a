package events

import "github.com/asaskevich/EventBus"

// GlobalBus is the shared event bus for the entire application
var GlobalBus EventBus.Bus

func init() {
	GlobalBus = EventBus.New()
}

// Event types for application-wide coordination
const (
	// Shutdown events
	EventShutdownRequested = "app:shutdown:requested"

	// Transfer lifecycle; handlers receive a Transfer value
	EventTransferStarted   = "transfer:started"
	EventTransferCompleted = "transfer:completed"
	EventTransferFailed    = "transfer:failed"
)

// Transfer describes one sync run as seen by event subscribers.
type Transfer struct {
	RunID      string
	Host       string
	LocalPath  string
	RemotePath string
	Pull       bool
	DryRun     bool
	Err        error
}
