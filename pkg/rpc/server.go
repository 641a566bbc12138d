package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/harun/edbridge/pkg/bridge"
)

// Server drives the stdio transport loop: read one frame, dispatch it,
// write the response, repeat. Processing is single-threaded and
// non-reentrant; one frame completes (including all notifier side effects)
// before the next is read, so frames are handled strictly in arrival order
// and nothing mutates session state concurrently.
type Server struct {
	reader     *bufio.Reader
	notifier   *Notifier
	dispatcher *Dispatcher
	session    *bridge.Session
}

// NewServer creates a server reading frames from r. The notifier carries
// both responses and out-of-band frames to the shared output stream.
func NewServer(r io.Reader, notifier *Notifier, dispatcher *Dispatcher, session *bridge.Session) *Server {
	return &Server{
		reader:     bufio.NewReader(r),
		notifier:   notifier,
		dispatcher: dispatcher,
		session:    session,
	}
}

// Run blocks until the exit sentinel, EOF, or a read error. On startup it
// emits the readiness frame (and a human-readable marker on the diagnostic
// channel) so the host knows the stream is live. The session is shut down
// on every exit path.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("Bridge server ready")
	s.notifier.Ready()

	defer s.session.Shutdown()

	for {
		line, err := s.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			if trimmed := strings.TrimSpace(line); trimmed != "" && trimmed != ExitSentinel {
				s.handleLine(ctx, trimmed)
			}
			log.Info().Msg("EOF on input stream, shutting down")
			return nil
		}
		if err != nil {
			log.Error().Err(err).Msg("Read error on input stream")
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ExitSentinel {
			log.Info().Msg("Exit sentinel received, shutting down")
			return nil
		}

		s.handleLine(ctx, trimmed)
	}
}

func (s *Server) handleLine(ctx context.Context, line string) {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		log.Warn().Err(err).Msg("Malformed frame")
		s.notifier.Send(errorResponse(nil, CodeParseError, "Parse error", nil))
		return
	}

	log.Debug().Str("method", req.Method).Msg("Frame received")

	if resp := s.dispatcher.Dispatch(ctx, &req); resp != nil {
		s.notifier.Send(resp)
	}
}
