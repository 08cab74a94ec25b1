// Package stream handles both sides of the streaming relay: reading SSE
// chunks from the Perplexity response and writing SSE events to the frontend.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

// Reader reads chat completion chunks from an upstream SSE body.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader creates a new SSE reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next returns the next chunk. Returns nil, io.EOF when the stream ends or
// the [DONE] sentinel arrives. Malformed data lines are skipped.
func (r *Reader) Next() (*openai.ChatCompletionChunk, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(line[6:])
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil, io.EOF
		}
		var chunk openai.ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		return &chunk, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
