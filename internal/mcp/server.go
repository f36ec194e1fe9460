package mcp

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/a3tai/pdf-field-mapper/internal/config"
	"github.com/a3tai/pdf-field-mapper/internal/mapping"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	mapService *mapping.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, mapService *mapping.Service) (*Server, error) {
	if mapService == nil {
		return nil, fmt.Errorf("mapService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		mapService: mapService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	mapFormFieldsTool := mcp.NewTool(
		"map_form_fields",
		mcp.WithDescription("Align a filled narrative PDF with a blank form PDF and extract "+
			"the text belonging to every named form field"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path to the filled source PDF"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Path to the blank target form PDF"),
		),
	)
	s.mcpServer.AddTool(mapFormFieldsTool, s.handleMapFormFields)

	fillFormTool := mcp.NewTool(
		"fill_form",
		mcp.WithDescription("Align a filled narrative PDF with a blank form PDF and write the "+
			"extracted values into the form's fields, saving a filled copy"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path to the filled source PDF"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Path to the blank target form PDF"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Path to write the filled form PDF to"),
		),
	)
	s.mcpServer.AddTool(fillFormTool, s.handleFillForm)

	listFormFieldsTool := mcp.NewTool(
		"list_form_fields",
		mcp.WithDescription("List the form fields of a PDF with their types, values, pages and rectangles"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the form PDF"),
		),
	)
	s.mcpServer.AddTool(listFormFieldsTool, s.handleListFormFields)

	checkAlignmentTool := mcp.NewTool(
		"check_alignment",
		mcp.WithDescription("Report which calibration anchors were found in both documents "+
			"and the coordinate transform they produce"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path to the filled source PDF"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Path to the blank target form PDF"),
		),
	)
	s.mcpServer.AddTool(checkAlignmentTool, s.handleCheckAlignment)

	validateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	serverInfoTool := mcp.NewTool(
		"server_info",
		mcp.WithDescription("Get server information, configured directory contents and usage guidance"),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleMapFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sourcePath, err := s.mapService.ResolvePath(source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetPath, err := s.mapService.ResolvePath(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.mapService.MapFields(mapping.MapFieldsRequest{
		SourcePath: sourcePath,
		TargetPath: targetPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatMapFieldsResult(result)), nil
}

func (s *Server) handleFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sourcePath, err := s.mapService.ResolvePath(source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetPath, err := s.mapService.ResolvePath(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := s.mapService.ResolvePath(output)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.mapService.FillForm(mapping.FillFormRequest{
		SourcePath: sourcePath,
		TargetPath: targetPath,
		OutputPath: outputPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatFillFormResult(result)), nil
}

func (s *Server) handleListFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.mapService.ResolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.mapService.ListFormFields(mapping.ListFormFieldsRequest{Path: resolved})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatListFormFieldsResult(result)), nil
}

func (s *Server) handleCheckAlignment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sourcePath, err := s.mapService.ResolvePath(source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetPath, err := s.mapService.ResolvePath(target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.mapService.CheckAlignment(mapping.CheckAlignmentRequest{
		SourcePath: sourcePath,
		TargetPath: targetPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatCheckAlignmentResult(result)), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.mapService.ResolvePath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.mapService.ValidateFile(mapping.ValidateFileRequest{Path: resolved})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.mapService.Info(s.config.ServerName, s.config.Version)

	text := fmt.Sprintf("%s v%s - Server Information\n", info.ServerName, info.Version)
	text += fmt.Sprintf("Document Directory: %s\n", info.DocumentDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n\n", info.MaxFileSize/(1024*1024))

	if len(info.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(info.DirectoryContents))
		for i, name := range info.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(info.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s\n", i+1, name)
		}
	} else {
		text += "Directory Contents: No PDF files found in document directory\n"
	}

	text += "\nAvailable Tools:\n"
	text += "• map_form_fields - align a filled PDF with a blank form and extract field values\n"
	text += "• fill_form - run the mapping and write the values into a filled copy of the form\n"
	text += "• list_form_fields - inventory a form's fields with geometry\n"
	text += "• check_alignment - diagnose anchor calibration between two documents\n"
	text += "• pdf_validate_file - validate a PDF file\n"
	text += "• server_info - this information\n"

	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatMapFieldsResult(result *mapping.MapFieldsResult) string {
	m := result.Mapping

	text := fmt.Sprintf("Mapped %d of %d fields from %s\n",
		m.MappedFields, m.TotalFields, result.SourcePath)
	text += fmt.Sprintf("Source: %d pages, Target: %d pages\n",
		result.SourcePages, result.TargetPages)
	text += fmt.Sprintf("Transform: sx=%.3f, sy=%.3f, dx=%.1f, dy=%.1f\n",
		m.Transform.Sx, m.Transform.Sy, m.Transform.Dx, m.Transform.Dy)

	for _, warning := range m.Warnings {
		text += fmt.Sprintf("Warning: %s\n", warning)
	}
	for _, page := range m.Pages {
		text += fmt.Sprintf("Page %d: mapped %d of %d fields\n", page.Page+1, page.Mapped, page.Fields)
	}

	if m.MissedFields > 0 {
		text += fmt.Sprintf("Missed: %d fields (no text found in source)\n", m.MissedFields)
	}

	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	text += "\nFields:\n"
	for _, name := range names {
		text += fmt.Sprintf("  %s: %s\n", name, m.Fields[name])
	}

	return text
}

func (s *Server) formatFillFormResult(result *mapping.FillFormResult) string {
	m := result.Mapping

	text := fmt.Sprintf("Filled %d field(s) in %s\n", result.FilledFields, result.OutputPath)
	text += fmt.Sprintf("Mapped %d of %d fields from %s\n",
		m.MappedFields, m.TotalFields, result.SourcePath)

	for _, warning := range m.Warnings {
		text += fmt.Sprintf("Warning: %s\n", warning)
	}
	if m.MissedFields > 0 {
		text += fmt.Sprintf("Missed: %d fields (no text found in source)\n", m.MissedFields)
	}
	if result.FilledFields < m.MappedFields {
		text += fmt.Sprintf("Note: %d mapped value(s) had no matching form field entry\n",
			m.MappedFields-result.FilledFields)
	}

	return text
}

func (s *Server) formatListFormFieldsResult(result *mapping.ListFormFieldsResult) string {
	text := fmt.Sprintf("Found %d form field(s) in %s (%d pages)\n\n",
		result.FieldCount, result.Path, result.Pages)

	for i, field := range result.Fields {
		text += fmt.Sprintf("%d. %s (type: %s)\n", i+1, field.Name, field.Type)
		if field.Value != "" {
			text += fmt.Sprintf("   Value: %s\n", field.Value)
		}
		if field.Page >= 0 {
			text += fmt.Sprintf("   Page %d, rect (%.1f, %.1f, %.1f, %.1f)\n",
				field.Page+1, field.Rect.X0, field.Rect.Y0, field.Rect.X1, field.Rect.Y1)
		}
	}

	return text
}

func (s *Server) formatCheckAlignmentResult(result *mapping.CheckAlignmentResult) string {
	text := fmt.Sprintf("Checking alignment between:\n  Source: %s\n  Target: %s\n\n",
		result.SourcePath, result.TargetPath)

	for _, anchor := range result.Anchors {
		text += fmt.Sprintf("Anchor %q:\n", anchor.Phrase)
		text += fmt.Sprintf("  Source: (%.1f, %.1f, %.1f, %.1f)\n",
			anchor.SourceRect.X0, anchor.SourceRect.Y0, anchor.SourceRect.X1, anchor.SourceRect.Y1)
		text += fmt.Sprintf("  Target: (%.1f, %.1f, %.1f, %.1f)\n",
			anchor.TargetRect.X0, anchor.TargetRect.Y0, anchor.TargetRect.X1, anchor.TargetRect.Y1)
		text += fmt.Sprintf("  Offset: dx=%.2f, dy=%.2f\n", anchor.Dx, anchor.Dy)
	}
	if len(result.Anchors) == 0 {
		text += "Could not find common anchors to align.\n"
	}

	for _, warning := range result.Warnings {
		text += fmt.Sprintf("Warning: %s\n", warning)
	}

	text += fmt.Sprintf("\nTransform: sx=%.3f, sy=%.3f, dx=%.1f, dy=%.1f\n",
		result.Transform.Sx, result.Transform.Sy, result.Transform.Dx, result.Transform.Dy)

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting field mapper MCP server in stdio mode")
		log.Printf("Document directory: %s", s.mapService.DocumentDirectory())
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	log.Printf("Starting field mapper MCP server on %s", s.config.Address())

	sse := server.NewSSEServer(s.mcpServer)
	if err := sse.Start(s.config.Address()); err != nil {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}
