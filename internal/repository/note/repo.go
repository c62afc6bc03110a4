package note

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/inkdex/inkdex/internal/db"
	"github.com/inkdex/inkdex/internal/domain"
)

// store is the consumer interface for note persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists notes and their analyses as JSON documents.
type Repo struct {
	store  store
	prefix string
}

// New creates a note repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// SaveNote creates or updates a note. Returns true if created.
func (r *Repo) SaveNote(ctx context.Context, n domain.Note) (bool, error) {
	key := r.noteKey(n.ID)
	data, err := json.Marshal(n)
	if err != nil {
		return false, fmt.Errorf("marshal note: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	return !exists, nil
}

// GetNote returns a note by ID.
func (r *Repo) GetNote(ctx context.Context, id string) (domain.Note, error) {
	key := r.noteKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Note{}, domain.ErrNoteNotFound
		}
		return domain.Note{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	n, err := unmarshalRoot[domain.Note](raw)
	if err != nil {
		return domain.Note{}, fmt.Errorf("parse note %s: %w", id, err)
	}
	return n, nil
}

// ListNotes returns notes with cursor-based pagination, ordered by ID.
// The cursor is an opaque offset into the sorted key list.
func (r *Repo) ListNotes(ctx context.Context, cursor string, limit int) ([]domain.Note, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = parsed
	}

	keys, err := r.store.Scan(ctx, r.prefix+"note:*")
	if err != nil {
		return nil, "", fmt.Errorf("scan notes: %w", err)
	}
	sort.Strings(keys)

	if offset >= len(keys) {
		return nil, "", nil
	}
	end := offset + limit
	if end > len(keys) {
		end = len(keys)
	}

	notes := make([]domain.Note, 0, end-offset)
	for _, key := range keys[offset:end] {
		id := strings.TrimPrefix(key, r.prefix+"note:")
		n, err := r.GetNote(ctx, id)
		if err != nil {
			// Deleted between scan and fetch.
			if errors.Is(err, domain.ErrNoteNotFound) {
				continue
			}
			return nil, "", err
		}
		notes = append(notes, n)
	}

	var nextCursor string
	if end < len(keys) {
		nextCursor = strconv.Itoa(end)
	}
	return notes, nextCursor, nil
}

// DeleteNote removes a note and its analysis.
func (r *Repo) DeleteNote(ctx context.Context, id string) error {
	key := r.noteKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrNoteNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	// Analysis is derived data; best effort is fine but errors still surface.
	if err := r.store.Del(ctx, r.analysisKey(id)); err != nil {
		return fmt.Errorf("del analysis %s: %w", id, err)
	}
	return nil
}

// SaveAnalysis stores the pipeline output for a note.
func (r *Repo) SaveAnalysis(ctx context.Context, a domain.Analysis) error {
	key := r.analysisKey(a.NoteID)
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// GetAnalysis returns the stored analysis for a note.
func (r *Repo) GetAnalysis(ctx context.Context, noteID string) (domain.Analysis, error) {
	key := r.analysisKey(noteID)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Analysis{}, domain.ErrAnalysisNotFound
		}
		return domain.Analysis{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	a, err := unmarshalRoot[domain.Analysis](raw)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("parse analysis %s: %w", noteID, err)
	}
	return a, nil
}

func (r *Repo) noteKey(id string) string {
	return r.prefix + "note:" + id
}

func (r *Repo) analysisKey(id string) string {
	return r.prefix + "analysis:" + id
}

// unmarshalRoot decodes a JSON.GET "$" result, which wraps the document in a
// one-element array.
func unmarshalRoot[T any](raw []byte) (T, error) {
	var zero T
	var docs []T
	if err := json.Unmarshal(raw, &docs); err != nil {
		// Some servers return the bare document for root-path gets.
		var single T
		if err2 := json.Unmarshal(raw, &single); err2 == nil {
			return single, nil
		}
		return zero, err
	}
	if len(docs) == 0 {
		return zero, fmt.Errorf("empty result")
	}
	return docs[0], nil
}
