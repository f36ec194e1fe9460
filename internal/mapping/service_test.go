package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a3tai/pdf-field-mapper/internal/align"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "mapping_service_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	svc, err := NewService(1024*1024, tempDir, align.DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, tempDir
}

func TestNewService(t *testing.T) {
	svc, tempDir := newTestService(t)

	if svc.DocumentDirectory() != tempDir {
		t.Errorf("expected document directory %s but got %s", tempDir, svc.DocumentDirectory())
	}

	if _, err := NewService(1024, "", align.DefaultConfig()); err == nil {
		t.Error("expected error for empty document directory")
	}
}

func TestService_MapFields_Errors(t *testing.T) {
	svc, tempDir := newTestService(t)

	tests := []struct {
		name string
		req  MapFieldsRequest
		msg  string
	}{
		{
			name: "source outside document directory",
			req: MapFieldsRequest{
				SourcePath: "/etc/passwd",
				TargetPath: filepath.Join(tempDir, "form.pdf"),
			},
			msg: "security validation failed",
		},
		{
			name: "missing source",
			req: MapFieldsRequest{
				SourcePath: filepath.Join(tempDir, "missing.pdf"),
				TargetPath: filepath.Join(tempDir, "form.pdf"),
			},
			msg: "failed to load source document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.MapFields(tt.req)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if result != nil {
				t.Errorf("expected nil result on failure but got %+v", result)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected error containing %q but got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestService_FillForm_Errors(t *testing.T) {
	svc, tempDir := newTestService(t)

	tests := []struct {
		name string
		req  FillFormRequest
		msg  string
	}{
		{
			name: "empty output path",
			req: FillFormRequest{
				SourcePath: filepath.Join(tempDir, "filled.pdf"),
				TargetPath: filepath.Join(tempDir, "form.pdf"),
			},
			msg: "output path cannot be empty",
		},
		{
			name: "output outside document directory",
			req: FillFormRequest{
				SourcePath: filepath.Join(tempDir, "filled.pdf"),
				TargetPath: filepath.Join(tempDir, "form.pdf"),
				OutputPath: "/tmp/escape.pdf",
			},
			msg: "security validation failed",
		},
		{
			name: "missing source document",
			req: FillFormRequest{
				SourcePath: filepath.Join(tempDir, "missing.pdf"),
				TargetPath: filepath.Join(tempDir, "form.pdf"),
				OutputPath: filepath.Join(tempDir, "out.pdf"),
			},
			msg: "failed to load source document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.FillForm(tt.req)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if result != nil {
				t.Errorf("expected nil result on failure but got %+v", result)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected error containing %q but got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestService_ListFormFields_MissingFile(t *testing.T) {
	svc, tempDir := newTestService(t)

	_, err := svc.ListFormFields(ListFormFieldsRequest{
		Path: filepath.Join(tempDir, "missing.pdf"),
	})
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if !strings.Contains(err.Error(), "failed to load document") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_ValidateFile(t *testing.T) {
	svc, tempDir := newTestService(t)

	missing := filepath.Join(tempDir, "missing.pdf")
	result, err := svc.ValidateFile(ValidateFileRequest{Path: missing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Error("expected invalid result for missing file")
	}
	if result.Message == "" {
		t.Error("expected validation message for missing file")
	}

	if _, err := svc.ValidateFile(ValidateFileRequest{Path: "/etc/passwd"}); err == nil {
		t.Error("expected security validation error for path outside directory")
	}
}

func TestService_Info(t *testing.T) {
	svc, tempDir := newTestService(t)

	// Only PDF files are listed, sorted by name.
	for _, name := range []string{"zeta.pdf", "alpha.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}

	info := svc.Info("pdf-field-mapper", "1.0.0")
	if info.ServerName != "pdf-field-mapper" {
		t.Errorf("expected server name 'pdf-field-mapper' but got %s", info.ServerName)
	}
	if info.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0' but got %s", info.Version)
	}
	if info.DocumentDirectory != tempDir {
		t.Errorf("expected directory %s but got %s", tempDir, info.DocumentDirectory)
	}
	if len(info.DirectoryContents) != 2 {
		t.Fatalf("expected 2 PDFs but got %v", info.DirectoryContents)
	}
	if info.DirectoryContents[0] != "alpha.pdf" || info.DirectoryContents[1] != "zeta.pdf" {
		t.Errorf("expected sorted PDF list but got %v", info.DirectoryContents)
	}
}

func TestService_ResolvePath(t *testing.T) {
	svc, tempDir := newTestService(t)

	tests := []struct {
		name        string
		path        string
		expected    string
		expectError bool
	}{
		{
			name:     "relative path joins the document directory",
			path:     "report.pdf",
			expected: filepath.Join(tempDir, "report.pdf"),
		},
		{
			name:     "absolute path inside the directory",
			path:     filepath.Join(tempDir, "report.pdf"),
			expected: filepath.Join(tempDir, "report.pdf"),
		},
		{
			name:        "empty path",
			path:        "",
			expectError: true,
		},
		{
			name:        "absolute path outside the directory",
			path:        "/etc/passwd",
			expectError: true,
		},
		{
			name:        "relative path escaping the directory",
			path:        "../escape.pdf",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolvePath(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s but got %s", tt.expected, got)
			}
		})
	}
}
