package jsonrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultMaxMessageBytes bounds a single framed message
const DefaultMaxMessageBytes = 1024 * 1024

// ErrMessageTooLarge is returned when a line exceeds the configured maximum.
// The stream cannot be resynchronised after it.
var ErrMessageTooLarge = errors.New("jsonrpc: message exceeds maximum size")

// Reader reads newline-delimited messages
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a reader; maxMessageBytes <= 0 selects the default
func NewReader(r io.Reader, maxMessageBytes int) *Reader {
	if maxMessageBytes <= 0 {
		maxMessageBytes = DefaultMaxMessageBytes
	}

	scanner := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > maxMessageBytes {
		initial = maxMessageBytes
	}
	scanner.Buffer(make([]byte, 0, initial), maxMessageBytes)

	return &Reader{scanner: scanner}
}

// Next returns the next non-blank line. It returns io.EOF when the stream ends.
func (r *Reader) Next() ([]byte, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		return append([]byte(nil), line...), nil
	}

	if err := r.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrMessageTooLarge
		}
		return nil, fmt.Errorf("jsonrpc: read failed: %w", err)
	}
	return nil, io.EOF
}

// Writer writes one JSON value per line; safe for concurrent use
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes v followed by a newline in a single write
func (w *Writer) Write(v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("jsonrpc: encode failed: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("jsonrpc: write failed: %w", err)
	}
	return nil
}
