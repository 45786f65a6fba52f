package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// followInterval is how often a following tail re-reads the file while
// waiting for new lines.
const followInterval = 250 * time.Millisecond

// TailOptions selects which slice of the daemon log to read. A negative
// Offset asks for the last Limit lines; a non-negative Offset reads forward
// from that byte position, as returned by a previous call. Follow with a
// positive Wait keeps polling for new lines until something arrives or Wait
// elapses.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the byte offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads from the daemon log at path. A missing file is not an error:
// the result is empty with offset zero, so callers can poll a log that has
// not been created yet. When ctx is cancelled mid-follow, the partial result
// is returned together with ctx.Err().
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		result.Lines, result.Offset, err = tailEnd(path, opts.Limit)
	} else {
		start := opts.Offset
		if start > info.Size() {
			start = info.Size()
		}
		result.Lines, result.Offset, err = scanFrom(path, start)
	}
	if err != nil {
		return TailResult{Offset: opts.Offset}, err
	}

	if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
		return pollForLines(ctx, path, result.Offset, opts.Wait)
	}
	return result, nil
}

// tailEnd returns the last limit lines of the file and the offset of its
// current end, so a follow-up call picks up where the tail stopped.
func tailEnd(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log: %w", err)
	}
	if limit <= 0 {
		return nil, info.Size(), nil
	}

	// Single forward pass through a ring of the last limit lines. Daemon
	// logs rotate before they get big enough for this to hurt.
	ring := make([]string, limit)
	count, head := 0, 0
	scanner := newLineScanner(file)
	for scanner.Scan() {
		ring[head] = scanner.Text()
		head = (head + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}

	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := range lines {
			lines[i] = ring[(head+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, end, nil
}

// scanFrom reads every complete line from offset to the end of the file and
// returns the new end offset.
func scanFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log: %w", err)
	}

	var lines []string
	scanner := newLineScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log: %w", err)
	}

	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log: %w", err)
	}
	return lines, end, nil
}

// pollForLines re-reads the file from offset until a line appears, wait
// elapses, or ctx is cancelled.
func pollForLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, end, err := scanFrom(path, offset)
		if err != nil {
			return result, err
		}
		if len(lines) > 0 {
			result.Lines = lines
			result.Offset = end
			return result, nil
		}
		result.Offset = end

		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLineScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
