package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier owns all writes to the output stream. Responses, notifications
// and stream events share one mutex so frames from concurrent writers (the
// watcher, the heartbeat) interleave at line granularity only; a frame
// boundary is never corrupted. It implements bridge.Events.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewNotifier creates a notifier writing frames to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Ready emits the readiness frame the host waits for at startup.
func (n *Notifier) Ready() {
	n.write(Notification{
		JSONRPC: Version,
		Method:  MethodReady,
		Params:  struct{}{},
	})
}

// Notify emits a notification frame.
func (n *Notifier) Notify(level, message string) {
	n.write(Notification{
		JSONRPC: Version,
		Method:  MethodNotification,
		Params:  NotificationParams{Level: level, Message: message},
	})
}

// Stream emits a streaming event frame.
func (n *Notifier) Stream(eventType, content string) {
	n.write(Notification{
		JSONRPC: Version,
		Method:  MethodStream,
		Params: StreamParams{
			Type:      eventType,
			Content:   content,
			Timestamp: time.Now().UnixMilli(),
		},
	})
}

// Send writes a response frame.
func (n *Notifier) Send(resp *Response) {
	if resp == nil {
		return
	}
	n.write(resp)
}

func (n *Notifier) write(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal frame")
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.w, "%s\n", data); err != nil {
		log.Error().Err(err).Msg("Failed to write frame")
	}
}
