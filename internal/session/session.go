// Package session owns the capture lifecycle. A Controller consumes control
// commands strictly one at a time, and at most one Session bridges the
// hardware callback to the frame writer.
package session

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/audio-recorder/internal/frame"
)

// The consumer expects 16000 Hz mono PCM; the converter consumes fixed
// 1024-sample chunks.
const (
	TargetSampleRate = 16000
	ChunkSize        = 1024
)

// converter consumes fixed-size sample chunks and returns resampled output.
type converter interface {
	Process(chunk []float32) ([]float32, error)
}

// Session is one live capture pipeline from device callback to output
// frames. The hardware callback has exclusive ownership of buf and conv for
// the session's lifetime; the controller only touches the stream handle.
type Session struct {
	id     string
	conv   converter
	buf    []float32
	stream stream
	writer *frame.Writer
	log    zerolog.Logger
}

// stream is the handle a session releases on stop.
type stream interface {
	Close() error
}

func newSession(conv converter, w *frame.Writer, log zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		conv:   conv,
		writer: w,
		log:    log.With().Str("session", id).Logger(),
	}
}

// Feed runs on the hardware callback context. Without a converter every
// callback becomes one audio frame. With one, samples accumulate and drain
// in exact ChunkSize chunks, preserving order; the leftover below ChunkSize
// carries over to the next callback.
func (s *Session) Feed(samples []float32) {
	if s.conv == nil {
		if err := s.writer.WriteAudio(samples); err != nil {
			s.log.Error().Err(err).Msg("Failed to write audio frame")
		}
		return
	}

	s.buf = append(s.buf, samples...)
	for len(s.buf) >= ChunkSize {
		chunk := s.buf[:ChunkSize]
		s.buf = s.buf[ChunkSize:]

		out, err := s.conv.Process(chunk)
		if err != nil {
			s.log.Error().Err(err).Msg("Dropping chunk after conversion failure")
			continue
		}
		if err := s.writer.WriteAudio(out); err != nil {
			s.log.Error().Err(err).Msg("Failed to write audio frame")
		}
	}
}

// close releases the stream, blocking until the backend confirms no further
// callback runs. Samples still buffered below one chunk are discarded.
func (s *Session) close() error {
	err := s.stream.Close()
	if n := len(s.buf); n > 0 {
		s.log.Debug().Int("samples", n).Msg("Discarding buffered remainder")
	}
	return err
}
