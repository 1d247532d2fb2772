// internal/translate/source.go
package translate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// NDJSONSource reads elements from a newline-delimited JSON file where each
// line is {"type": "node", "tags": {...}}.
type NDJSONSource struct {
	path string
}

// NewNDJSONSource creates a source reading path.
func NewNDJSONSource(path string) *NDJSONSource {
	return &NDJSONSource{path: path}
}

func (s *NDJSONSource) ReadElements(ctx context.Context, each func(Element) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open element source %s: %w", s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var element Element
		if err := json.Unmarshal(raw, &element); err != nil {
			return fmt.Errorf("%s:%d: invalid element: %w", s.path, line, err)
		}
		if err := each(element); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return nil
}

// SliceSource serves a fixed slice of elements, mainly for tests.
type SliceSource []Element

func (s SliceSource) ReadElements(ctx context.Context, each func(Element) error) error {
	for _, element := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := each(element); err != nil {
			return err
		}
	}
	return nil
}
