package bridge

// Stream event types emitted during run_prompt_streaming. Exactly one
// terminal event (complete or error) is emitted per call.
const (
	StreamStart    = "start"
	StreamToken    = "token"
	StreamComplete = "complete"
	StreamError    = "error"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Events is the session's out-of-band channel back to the host. The RPC
// notifier implements it; tests substitute a recorder. Implementations must
// be safe to call from the middle of an in-flight operation.
type Events interface {
	// Notify emits a notification frame with the given level and message.
	Notify(level, message string)

	// Stream emits a streaming event frame.
	Stream(eventType, content string)
}

// discardEvents drops everything, used when no notifier is wired.
type discardEvents struct{}

func (discardEvents) Notify(string, string) {}
func (discardEvents) Stream(string, string) {}
