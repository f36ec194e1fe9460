package document

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFillForm_MissingFile(t *testing.T) {
	filled, err := FillForm("/non/existent/file.pdf", "/tmp/out.pdf", map[string]string{"a": "1"})
	if err == nil {
		t.Error("expected error for missing file")
	}
	if filled != 0 {
		t.Errorf("expected 0 filled fields on failure but got %d", filled)
	}
}

func TestFillForm_CorruptFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "formfill_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	fakePath := filepath.Join(tempDir, "fake.pdf")
	if err := os.WriteFile(fakePath, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("failed to create fake PDF: %v", err)
	}

	outPath := filepath.Join(tempDir, "out.pdf")
	if _, err := FillForm(fakePath, outPath, map[string]string{"a": "1"}); err == nil {
		t.Error("expected error for corrupt file")
	}
	if _, err := os.Stat(outPath); err == nil {
		t.Error("expected no output file on failure")
	}
}
