// internal/translate/store.go
package translate

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Store persists fetched translations between runs.
type Store interface {
	// Load returns everything a previous run stored. A store that has never
	// been written returns an empty table, not an error.
	Load(ctx context.Context) (*Translations, error)

	// WriteBatch persists one batch of translations.
	WriteBatch(ctx context.Context, batch map[int64]map[string]string) error

	Close() error
}

// OpenStore opens a store from a URL: file:path or a bare path for the
// NDJSON file store, sqlite://path or postgres://... for the SQL store.
func OpenStore(storeURL string) (Store, error) {
	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store URL: %w", err)
	}
	switch u.Scheme {
	case "", "file":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if path == "" {
			return nil, errors.New("file store URL has no path")
		}
		return NewFileStore(path), nil
	case "sqlite", "postgres":
		return OpenSQLStore(storeURL)
	default:
		return nil, fmt.Errorf("unsupported store scheme: %s (expected file, sqlite or postgres)", u.Scheme)
	}
}

// FileStore persists translations as newline-delimited JSON, one
// ["<qid>", {"lang": "name", ...}] array per line. The format matches what
// other tooling in this pipeline family writes, so existing caches load
// unchanged.
//
// The first WriteBatch of a run truncates the file; LoadExisting replays
// previously loaded translations first, so a completed run always contains
// old and new mappings.
type FileStore struct {
	path   string
	file   *os.File
	writer *bufio.Writer
}

// NewFileStore creates a file store at path. The file is not opened until
// the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (*Translations, error) {
	translations := NewTranslations()

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return translations, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var row []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &row); err != nil || len(row) != 2 {
			return nil, fmt.Errorf("%s:%d: invalid translation line", s.path, line)
		}
		var qidText string
		if err := json.Unmarshal(row[0], &qidText); err != nil {
			return nil, fmt.Errorf("%s:%d: invalid qid: %w", s.path, line, err)
		}
		qid, err := strconv.ParseInt(qidText, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid qid: %w", s.path, line, err)
		}
		var names map[string]string
		if err := json.Unmarshal(row[1], &names); err != nil {
			return nil, fmt.Errorf("%s:%d: invalid names: %w", s.path, line, err)
		}
		for lang, name := range names {
			translations.Put(qid, lang, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return translations, nil
}

func (s *FileStore) WriteBatch(ctx context.Context, batch map[int64]map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.file == nil {
		file, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", s.path, err)
		}
		s.file = file
		s.writer = bufio.NewWriter(file)
	}

	// Sorted so reruns produce byte-identical files for identical inputs.
	qids := make([]int64, 0, len(batch))
	for qid := range batch {
		qids = append(qids, qid)
	}
	sort.Slice(qids, func(i, j int) bool { return qids[i] < qids[j] })

	for _, qid := range qids {
		row, err := json.Marshal([]any{strconv.FormatInt(qid, 10), batch[qid]})
		if err != nil {
			return fmt.Errorf("failed to encode translation %d: %w", qid, err)
		}
		if _, err := s.writer.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.path, err)
		}
		if err := s.writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write %s: %w", s.path, err)
		}
	}
	return s.writer.Flush()
}

func (s *FileStore) Close() error {
	if s.file == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
