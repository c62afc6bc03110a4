package note

import (
	"context"
	"testing"
	"time"

	"github.com/inkdex/inkdex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn     func(ctx context.Context, key string) error
	existsFn  func(ctx context.Context, key string) (bool, error)
	scanFn    func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "inkdex:")
	return repo, ms
}

func testNote(t *testing.T) domain.Note {
	t.Helper()
	return domain.Note{
		ID:         "note-1",
		SourceFile: "meeting.png",
		PageCount:  1,
		Provider:   "tesseract",
		Elements: []domain.NoteElement{
			{
				ID:         "el-1",
				Text:       "1. Buy milk",
				Box:        domain.BoundingBox{X: 100, Y: 100, Width: 80, Height: 20},
				Confidence: 0.9,
				Type:       domain.ElementText,
			},
		},
		CreatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}
