package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jsrodrigue/sidekickAI/internal/data/store"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/commonModels"
	"github.com/Jsrodrigue/sidekickAI/internal/domain/jobModel"
)

type mockIndexService struct {
	indexed []commonModels.Document
	err     error
}

func (m *mockIndexService) IndexDocument(ctx context.Context, doc commonModels.Document, text string, settings commonModels.FolderSettings) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.indexed = append(m.indexed, doc)
	return 1, nil
}

func (m *mockIndexService) Search(ctx context.Context, folderId string, query string, limit int) ([]commonModels.ScoredChunk, error) {
	return nil, nil
}

func (m *mockIndexService) DropFolder(ctx context.Context, folderId string) error { return nil }

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected commonModels.DocType
	}{
		{"test.pdf", commonModels.PDF},
		{"DOC.DOCX", commonModels.DOCX},
		{"notes.txt", commonModels.Text},
		{"README.md", commonModels.Markdown},
		{"main.go", commonModels.SourceCode},
		{"script.py", commonModels.SourceCode},
		{"image.png", commonModels.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestExtractText_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello from a text file"), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := extractText(path, commonModels.Text)
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}
	if text != "hello from a text file" {
		t.Errorf("got %q", text)
	}
}

func writeFixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"readme.md":             "# readme",
		"notes.txt":             "some notes",
		"src/main.go":           "package main",
		"image.png":             "not text",
		".venv/lib/module.py":   "ignored",
		"__pycache__/cached.py": "ignored",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestProcessFolderIndexing(t *testing.T) {
	root := writeFixtureTree(t)
	indexSvc := &mockIndexService{}
	settingsStore := store.InitInMemorySettingsStore()

	job := jobModel.Job{
		Id:       "job-1",
		FolderId: "docs",
		JobType:  jobModel.JobTypeIndexFolder,
		JobPayload: jobModel.JobPayload{
			IndexPath: root,
		},
	}

	result := ProcessFolderIndexing(context.Background(), job, indexSvc, settingsStore)

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete job, got %s (%s)", result.Status, result.Error.Message)
	}
	if result.JobPayload.DocumentsIndexed != 3 {
		t.Errorf("expected 3 documents indexed, got %d", result.JobPayload.DocumentsIndexed)
	}
	if result.JobPayload.DocumentsSkipped != 1 {
		t.Errorf("expected 1 skipped (png), got %d", result.JobPayload.DocumentsSkipped)
	}

	for _, doc := range indexSvc.indexed {
		if doc.FolderId != "docs" {
			t.Errorf("document indexed into wrong folder: %+v", doc)
		}
		if filepath.IsAbs(doc.Id) {
			t.Errorf("document id should be relative to the root: %s", doc.Id)
		}
		if doc.SourcePath == ".venv/lib/module.py" || doc.SourcePath == "__pycache__/cached.py" {
			t.Errorf("excluded directory was walked: %s", doc.SourcePath)
		}
	}
}

func TestProcessFolderIndexing_EmbeddingFailureAborts(t *testing.T) {
	root := writeFixtureTree(t)
	indexSvc := &mockIndexService{err: commonModels.ErrEmbeddingService}
	settingsStore := store.InitInMemorySettingsStore()

	job := jobModel.Job{
		Id:         "job-2",
		FolderId:   "docs",
		JobType:    jobModel.JobTypeIndexFolder,
		JobPayload: jobModel.JobPayload{IndexPath: root},
	}

	result := ProcessFolderIndexing(context.Background(), job, indexSvc, settingsStore)
	if result.Status != jobModel.JobStatusError {
		t.Errorf("expected error status when embeddings are down, got %s", result.Status)
	}
}

func TestProcessFolderIndexing_BadPath(t *testing.T) {
	job := jobModel.Job{
		Id:         "job-3",
		FolderId:   "docs",
		JobPayload: jobModel.JobPayload{IndexPath: "/does/not/exist"},
	}
	result := ProcessFolderIndexing(context.Background(), job, &mockIndexService{}, store.InitInMemorySettingsStore())
	if result.Status != jobModel.JobStatusError {
		t.Errorf("expected error for missing path, got %s", result.Status)
	}
}

func TestProcessDocumentIngestion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload-123")
	if err := os.WriteFile(path, []byte("uploaded content"), 0o644); err != nil {
		t.Fatal(err)
	}

	indexSvc := &mockIndexService{}
	job := jobModel.Job{
		Id:       "job-4",
		FolderId: "docs",
		JobType:  jobModel.JobTypeIngest,
		JobPayload: jobModel.JobPayload{
			IngestFileName: "notes.txt",
			IngestURL:      path,
		},
	}

	result := ProcessDocumentIngestion(context.Background(), job, indexSvc, store.InitInMemorySettingsStore())
	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", result.Status, result.Error.Message)
	}
	if len(indexSvc.indexed) != 1 || indexSvc.indexed[0].Name != "notes.txt" {
		t.Errorf("document not indexed as expected: %+v", indexSvc.indexed)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("uploaded temp file should be removed after ingestion")
	}
}

func TestProcessDocumentIngestion_UnsupportedFormat(t *testing.T) {
	job := jobModel.Job{
		Id:       "job-5",
		FolderId: "docs",
		JobPayload: jobModel.JobPayload{
			IngestFileName: "image.png",
			IngestURL:      "/tmp/whatever",
		},
	}
	result := ProcessDocumentIngestion(context.Background(), job, &mockIndexService{}, store.InitInMemorySettingsStore())
	if result.Status != jobModel.JobStatusError {
		t.Errorf("expected error for unsupported format, got %s", result.Status)
	}
}
