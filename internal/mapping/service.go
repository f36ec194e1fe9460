package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3tai/pdf-field-mapper/internal/align"
	"github.com/a3tai/pdf-field-mapper/internal/document"
)

// Service orchestrates document loading, validation and the alignment
// engine behind the tool and CLI surfaces.
type Service struct {
	maxFileSize   int64
	alignCfg      align.Config
	loader        *document.Loader
	validator     *document.Validator
	pathValidator *document.PathValidator
}

// NewService creates a mapping service rooted at the configured
// document directory.
func NewService(maxFileSize int64, documentDirectory string, alignCfg align.Config) (*Service, error) {
	pathValidator, err := document.NewPathValidator(documentDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		alignCfg:      alignCfg,
		loader:        document.NewLoader(maxFileSize),
		validator:     document.NewValidator(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// MapFields loads both documents and runs one alignment pass. Load
// failures are fatal; per-field misses are reported in the result.
func (s *Service) MapFields(req MapFieldsRequest) (*MapFieldsResult, error) {
	if err := s.pathValidator.ValidatePath(req.SourcePath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidatePath(req.TargetPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	src, err := s.loader.Load(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source document: %w", err)
	}
	tgt, err := s.loader.Load(req.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load target document: %w", err)
	}

	result, err := align.NewMapper(s.alignCfg).Map(src, tgt)
	if err != nil {
		return nil, err
	}

	return &MapFieldsResult{
		SourcePath:  req.SourcePath,
		TargetPath:  req.TargetPath,
		SourcePages: src.PageCount(),
		TargetPages: tgt.PageCount(),
		Mapping:     result,
	}, nil
}

// FillForm runs one alignment pass and writes the mapped values into
// the target form's fields, saving the filled document at the output
// path. Only fields whose names mapped to a value are written; the
// rest keep their current state.
func (s *Service) FillForm(req FillFormRequest) (*FillFormResult, error) {
	if req.OutputPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if err := s.pathValidator.ValidatePath(req.OutputPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	mapped, err := s.MapFields(MapFieldsRequest{
		SourcePath: req.SourcePath,
		TargetPath: req.TargetPath,
	})
	if err != nil {
		return nil, err
	}

	filled, err := document.FillForm(req.TargetPath, req.OutputPath, mapped.Mapping.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}

	return &FillFormResult{
		SourcePath:   req.SourcePath,
		TargetPath:   req.TargetPath,
		OutputPath:   req.OutputPath,
		FilledFields: filled,
		Mapping:      mapped.Mapping,
	}, nil
}

// ListFormFields returns the field inventory of a form PDF: the
// AcroForm metadata joined with widget geometry from the page
// annotations.
func (s *Service) ListFormFields(req ListFormFieldsRequest) (*ListFormFieldsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	doc, err := s.loader.Load(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	inventory, err := document.FieldInventory(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form fields: %w", err)
	}

	// Index widget geometry by field name. On name collisions across
	// pages the later widget wins, matching the mapper's behavior.
	widgets := make(map[string]document.Field)
	for i := range doc.Pages {
		for _, f := range doc.Pages[i].Fields {
			if f.Name != "" {
				widgets[f.Name] = f
			}
		}
	}

	entries := make([]FormFieldEntry, 0, len(inventory))
	for _, info := range inventory {
		entry := FormFieldEntry{
			Name:     info.Name,
			Type:     info.Type,
			Value:    info.Value,
			Required: info.Required,
			ReadOnly: info.ReadOnly,
			Page:     -1,
		}
		if w, ok := widgets[info.Name]; ok {
			entry.Page = w.Page
			entry.Rect = w.Rect
		}
		entries = append(entries, entry)
	}

	return &ListFormFieldsResult{
		Path:       req.Path,
		Pages:      doc.PageCount(),
		FieldCount: len(entries),
		Fields:     entries,
	}, nil
}

// CheckAlignment reports which anchors were found on the first pages
// of both documents and the transform they calibrate to.
func (s *Service) CheckAlignment(req CheckAlignmentRequest) (*CheckAlignmentResult, error) {
	if err := s.pathValidator.ValidatePath(req.SourcePath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.pathValidator.ValidatePath(req.TargetPath); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	src, err := s.loader.Load(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source document: %w", err)
	}
	tgt, err := s.loader.Load(req.TargetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load target document: %w", err)
	}
	if src.PageCount() == 0 || tgt.PageCount() == 0 {
		return nil, fmt.Errorf("both documents need at least one page")
	}

	calibrator := align.NewCalibrator(s.alignCfg)
	transform, warnings := calibrator.Calibrate(src.Page(0), tgt.Page(0))

	return &CheckAlignmentResult{
		SourcePath: req.SourcePath,
		TargetPath: req.TargetPath,
		Anchors:    calibrator.Matches(src.Page(0), tgt.Page(0)),
		Transform:  transform,
		Warnings:   warnings,
	}, nil
}

// ValidateFile checks whether a file is a readable PDF.
func (s *Service) ValidateFile(req ValidateFileRequest) (*document.ValidationResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.Validate(req.Path)
}

// Info returns server information including the PDF files currently
// present in the document directory.
func (s *Service) Info(serverName, version string) *ServerInfo {
	info := &ServerInfo{
		ServerName:        serverName,
		Version:           version,
		DocumentDirectory: s.pathValidator.BaseDirectory(),
		MaxFileSize:       s.maxFileSize,
	}

	entries, err := os.ReadDir(info.DocumentDirectory)
	if err != nil {
		return info
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			info.DirectoryContents = append(info.DirectoryContents, entry.Name())
		}
	}
	sort.Strings(info.DirectoryContents)

	return info
}

// DocumentDirectory returns the configured document directory.
func (s *Service) DocumentDirectory() string {
	return s.pathValidator.BaseDirectory()
}

// ResolvePath makes a relative path absolute against the document
// directory and validates it.
func (s *Service) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.pathValidator.BaseDirectory(), path)
	}
	if err := s.pathValidator.ValidatePath(path); err != nil {
		return "", err
	}
	return path, nil
}
