package mapping

import (
	"github.com/a3tai/pdf-field-mapper/internal/align"
	"github.com/a3tai/pdf-field-mapper/internal/document"
)

// MapFieldsRequest asks for a full alignment run between a filled
// source PDF and a blank target form PDF.
type MapFieldsRequest struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

// MapFieldsResult is the outcome of one alignment run.
type MapFieldsResult struct {
	SourcePath  string        `json:"source_path"`
	TargetPath  string        `json:"target_path"`
	SourcePages int           `json:"source_pages"`
	TargetPages int           `json:"target_pages"`
	Mapping     *align.Result `json:"mapping"`
}

// ListFormFieldsRequest asks for the field inventory of a form PDF.
type ListFormFieldsRequest struct {
	Path string `json:"path"`
}

// FormFieldEntry joins a form field's metadata with its widget
// geometry. Page is the 0-based page index of the widget, -1 when the
// field has no widget on any page.
type FormFieldEntry struct {
	Name     string             `json:"name"`
	Type     document.FieldType `json:"type"`
	Value    string             `json:"value,omitempty"`
	Required bool               `json:"required"`
	ReadOnly bool               `json:"read_only"`
	Page     int                `json:"page"`
	Rect     document.Rect      `json:"rect"`
}

// ListFormFieldsResult is the field inventory of a form PDF.
type ListFormFieldsResult struct {
	Path       string           `json:"path"`
	Pages      int              `json:"pages"`
	FieldCount int              `json:"field_count"`
	Fields     []FormFieldEntry `json:"fields"`
}

// CheckAlignmentRequest asks for a calibration diagnostic between two
// documents without running the full mapping.
type CheckAlignmentRequest struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

// CheckAlignmentResult reports the located anchors and the transform
// they produce.
type CheckAlignmentResult struct {
	SourcePath string              `json:"source_path"`
	TargetPath string              `json:"target_path"`
	Anchors    []align.AnchorMatch `json:"anchors"`
	Transform  align.Transform     `json:"transform"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// FillFormRequest asks for a full alignment run whose mapped values
// are then written into the target form's fields.
type FillFormRequest struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
	OutputPath string `json:"output_path"`
}

// FillFormResult reports the filled output document alongside the
// mapping that produced its values.
type FillFormResult struct {
	SourcePath   string        `json:"source_path"`
	TargetPath   string        `json:"target_path"`
	OutputPath   string        `json:"output_path"`
	FilledFields int           `json:"filled_fields"`
	Mapping      *align.Result `json:"mapping"`
}

// ValidateFileRequest asks whether a file is a readable PDF.
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ServerInfo describes the service and its working directory.
type ServerInfo struct {
	ServerName        string   `json:"server_name"`
	Version           string   `json:"version"`
	DocumentDirectory string   `json:"document_directory"`
	MaxFileSize       int64    `json:"max_file_size"`
	DirectoryContents []string `json:"directory_contents"`
}
