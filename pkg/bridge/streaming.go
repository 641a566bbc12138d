package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// streamingPreamble steers the engine toward targeted edits. It is
// prepended to every streaming instruction.
const streamingPreamble = `Make targeted, minimal edits. Prefer editing the
relevant lines over rewriting whole files unless a rewrite is unavoidable.

`

// streamSink forwards every engine output chunk to the host as a token
// event, in emission order.
type streamSink struct {
	events Events
}

func (ss *streamSink) EmitOutput(text string) {
	ss.events.Stream(StreamToken, text)
}

func (ss *streamSink) EmitError(text string) {
	ss.events.Notify(LevelError, text)
}

// RunPromptStreaming behaves like RunPrompt but interleaves partial output
// with the final result: a start event before invocation, zero or more
// token events during it, and exactly one terminal complete or error event.
// The engine's original sink is restored on every exit path, including
// panics, so a later non-streaming call behaves normally.
func (s *Session) RunPromptStreaming(ctx context.Context, message string) any {
	if s.eng == nil {
		// No stream frames before a successful initialize.
		return failure(ErrNotInitialized)
	}

	before := s.scanSnapshot()
	start := time.Now()

	prev := s.eng.SwapSink(&streamSink{events: s.events})
	s.events.Stream(StreamStart, "")

	response, err := func() (response string, err error) {
		s.watcher.Suppress()
		defer s.watcher.Resume()
		defer s.eng.SwapSink(prev)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("engine panic: %v", r)
			}
		}()
		return s.eng.Run(ctx, streamingPreamble+message)
	}()

	if err != nil {
		s.events.Stream(StreamError, err.Error())
		log.Error().Err(err).Msg("Streaming instruction failed")
		return failureDiag(err, fmt.Sprintf("streaming instruction failed after %s", time.Since(start)))
	}

	s.events.Stream(StreamComplete, response)

	newFiles, modified := s.diffSnapshot(before)
	s.record(message, response, time.Since(start))

	return PromptResult{
		Success:        true,
		Response:       response,
		NewFiles:       newFiles,
		ModifiedFiles:  modified,
		FilesInContext: s.eng.Files(),
	}
}
