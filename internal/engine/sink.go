package engine

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"cadenza/internal/bus"
)

// ndjsonSink appends one JSON object per line to a file. It is the default
// out-of-process consumer: `cadenza listen` tails the file. Deliver runs on
// the bus dispatch goroutine, so a slow disk backpressures the bus's
// dropping path rather than the audio thread.
type ndjsonSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func newNDJSONSink(path string) (*ndjsonSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open notify sink: %w", err)
	}
	return &ndjsonSink{file: file, writer: bufio.NewWriter(file)}, nil
}

// Deliver implements bus.Sink.
func (s *ndjsonSink) Deliver(n bus.Notification) {
	data, err := n.Encode()
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	_, _ = s.writer.Write(data)
	_ = s.writer.WriteByte('\n')
	// Terminal notifications flush immediately so waiting clients see them;
	// stream ticks ride along on the next flush.
	if n.Solicited() {
		_ = s.writer.Flush()
	}
}

func (s *ndjsonSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	_ = s.writer.Flush()
	err := s.file.Close()
	s.file = nil
	return err
}
