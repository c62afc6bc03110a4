package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
	healthuc "github.com/inkdex/inkdex/internal/usecase/health"
	ingestuc "github.com/inkdex/inkdex/internal/usecase/ingest"
	organizeuc "github.com/inkdex/inkdex/internal/usecase/organize"
	usageuc "github.com/inkdex/inkdex/internal/usecase/usage"
)

// --- Mocks ---

type mockNoteRepo struct {
	note           domain.Note
	getNoteErr     error
	saveNoteErr    error
	deleteErr      error
	analysis       domain.Analysis
	getAnalysisErr error
}

func (m *mockNoteRepo) SaveNote(_ context.Context, _ domain.Note) (bool, error) {
	return true, m.saveNoteErr
}

func (m *mockNoteRepo) GetNote(_ context.Context, _ string) (domain.Note, error) {
	return m.note, m.getNoteErr
}

func (m *mockNoteRepo) ListNotes(_ context.Context, _ string, _ int) ([]domain.Note, string, error) {
	return []domain.Note{m.note}, "", nil
}

func (m *mockNoteRepo) DeleteNote(_ context.Context, _ string) error { return m.deleteErr }

func (m *mockNoteRepo) SaveAnalysis(_ context.Context, _ domain.Analysis) error { return nil }

func (m *mockNoteRepo) GetAnalysis(_ context.Context, _ string) (domain.Analysis, error) {
	return m.analysis, m.getAnalysisErr
}

type mockRecognizer struct {
	result domain.OCRResult
	err    error
}

func (m *mockRecognizer) Recognize(_ context.Context, _ ocr.Input, _ ocr.Quality) (domain.OCRResult, error) {
	return m.result, m.err
}

type mockOrganizer struct {
	analysis domain.Analysis
	calls    int
	err      error
}

func (m *mockOrganizer) Organize(_ context.Context, _ string, _ []domain.NoteElement) (domain.Analysis, error) {
	m.calls++
	return m.analysis, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type serverFixture struct {
	repo       *mockNoteRepo
	recognizer *mockRecognizer
	organizer  *mockOrganizer
	pinger     *mockPinger
	handler    http.Handler
}

func newFixture() *serverFixture {
	f := &serverFixture{
		repo: &mockNoteRepo{
			note: domain.Note{ID: "n1", SourceFile: "list.png", PageCount: 1},
			analysis: domain.Analysis{
				NoteID: "n1",
				Structures: []domain.GeneratedStructure{{
					ID:    "structure-1",
					Type:  domain.StructureOutline,
					Title: "Notes",
					Root:  &domain.StructureNode{ID: "root", Content: "Notes"},
				}},
			},
		},
		recognizer: &mockRecognizer{result: domain.OCRResult{
			Provider: "tesseract",
			Fragments: []domain.Fragment{
				{Text: "hello", Box: domain.BoundingBox{X: 1, Y: 1, Width: 40, Height: 12}, Confidence: 0.9},
			},
		}},
		organizer: &mockOrganizer{},
		pinger:    &mockPinger{},
	}
	f.organizer.analysis = f.repo.analysis

	decoder := ingestuc.DecoderFunc(func(data []byte) ([][]byte, error) {
		if bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, domain.ErrUnsupportedFormat
		}
		return [][]byte{data}, nil
	})

	server := NewServer(
		ingestuc.New(f.repo, decoder, f.recognizer),
		organizeuc.New(f.repo, f.organizer),
		usageuc.New(nil),
		healthuc.New(f.pinger),
		zap.NewNop(),
	)

	r := chirouter.NewRouter()
	server.Mount(r)
	f.handler = r
	return f
}

func multipartUpload(t *testing.T, content []byte, quality string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "list.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if quality != "" {
		if err := mw.WriteField("quality", quality); err != nil {
			t.Fatalf("write quality field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

// --- Tests ---

func TestUploadNote(t *testing.T) {
	f := newFixture()
	body, contentType := multipartUpload(t, []byte("image-bytes"), "fast")

	req := httptest.NewRequest("POST", "/api/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, "/api/v1/notes/") {
		t.Errorf("Location = %q", loc)
	}

	var note domain.Note
	if err := json.NewDecoder(rr.Body).Decode(&note); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(note.Elements) != 1 || note.Elements[0].Text != "hello" {
		t.Errorf("elements = %+v", note.Elements)
	}
	if note.SourceFile != "list.png" {
		t.Errorf("SourceFile = %q", note.SourceFile)
	}
}

func TestUploadNote_OrganizeInline(t *testing.T) {
	f := newFixture()
	body, contentType := multipartUpload(t, []byte("image-bytes"), "")

	req := httptest.NewRequest("POST", "/api/v1/notes?organize=true", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if f.organizer.calls != 1 {
		t.Errorf("organizer calls = %d, want 1", f.organizer.calls)
	}
}

func TestUploadNote_UnknownQuality(t *testing.T) {
	f := newFixture()
	body, contentType := multipartUpload(t, []byte("image-bytes"), "turbo")

	req := httptest.NewRequest("POST", "/api/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadNote_UnsupportedFormat(t *testing.T) {
	f := newFixture()
	body, contentType := multipartUpload(t, []byte("%PDF-1.7"), "")

	req := httptest.NewRequest("POST", "/api/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rr.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "unsupported_format" {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestUploadNote_MalformedElement(t *testing.T) {
	f := newFixture()
	f.recognizer.result = domain.OCRResult{
		Provider: "tesseract",
		Fragments: []domain.Fragment{
			{Text: "hello", Box: domain.BoundingBox{Width: 40, Height: 12}, Confidence: 2.0},
		},
	}
	body, contentType := multipartUpload(t, []byte("image-bytes"), "")

	req := httptest.NewRequest("POST", "/api/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "malformed_element" {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestUploadNote_BudgetExceeded(t *testing.T) {
	f := newFixture()
	f.recognizer.err = domain.ErrOCRBudgetExceeded
	body, contentType := multipartUpload(t, []byte("image-bytes"), "premium")

	req := httptest.NewRequest("POST", "/api/v1/notes", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", rr.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	f := newFixture()
	f.repo.getNoteErr = domain.ErrNoteNotFound

	req := httptest.NewRequest("GET", "/api/v1/notes/missing", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != "note_not_found" {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestListNotes_InvalidLimit(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/api/v1/notes?limit=abc", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestOrganizeNote(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("POST", "/api/v1/notes/n1/organize", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var analysis domain.Analysis
	if err := json.NewDecoder(rr.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if len(analysis.Structures) != 1 {
		t.Errorf("structures = %d, want 1", len(analysis.Structures))
	}
}

func TestListStructures(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/api/v1/notes/n1/structures", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp struct {
		Items []domain.GeneratedStructure `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Type != domain.StructureOutline {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestExportStructure(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/api/v1/notes/n1/export", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "# Notes") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestExportStructure_UnknownType(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/api/v1/notes/n1/export?type=poster", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestExportStructure_NoAnalysis(t *testing.T) {
	f := newFixture()
	f.repo.getAnalysisErr = domain.ErrAnalysisNotFound

	req := httptest.NewRequest("GET", "/api/v1/notes/n1/export", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestGetUsage(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/api/v1/usage?period=day", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var report usageuc.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Period != usageuc.PeriodDay {
		t.Errorf("period = %q, want day", report.Period)
	}
	if report.Remaining != -1 {
		t.Errorf("remaining = %v, want -1 (unlimited)", report.Remaining)
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestHealthCheck_Degraded(t *testing.T) {
	f := newFixture()
	f.pinger.err = context.DeadlineExceeded

	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
