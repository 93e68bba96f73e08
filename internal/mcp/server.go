// Package mcp exposes the extraction pipeline as an MCP stdio server so
// agent tooling can call it without the HTTP front.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/doktools/docmeta/internal/config"
	"github.com/doktools/docmeta/internal/extract"
	"github.com/doktools/docmeta/internal/fetch"
	"github.com/doktools/docmeta/internal/office"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	extractor *extract.Service
	fetcher   *fetch.Fetcher
	converter *office.Converter
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, extractor *extract.Service, fetcher *fetch.Fetcher, converter *office.Converter) (*Server, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		extractor: extractor,
		fetcher:   fetcher,
		converter: converter,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractFileTool := mcp.NewTool(
		"document_extract_file",
		mcp.WithDescription("Extract page texts, annotations and derived metadata from a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithBoolean("annotations",
			mcp.Description("Include the normalized annotation dump per page"),
		),
		mcp.WithBoolean("redaction_findings",
			mcp.Description("Include detailed sloppy-redaction findings per page"),
		),
	)
	s.mcpServer.AddTool(extractFileTool, s.handleExtractFile)

	extractURLTool := mcp.NewTool(
		"document_extract_url",
		mcp.WithDescription("Fetch a document from a URL and extract page texts and derived metadata"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Source URL of the document"),
		),
		mcp.WithString("extension",
			mcp.Description("Document format: pdf (default), doc, docx, odt, xls, xlsx, ppt or pptx"),
		),
	)
	s.mcpServer.AddTool(extractURLTool, s.handleExtractURL)

	validateFileTool := mcp.NewTool(
		"document_validate_file",
		mcp.WithDescription("Check whether a file is a loadable PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)
}

// Handler functions

func (s *Server) handleExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}

	opts := extract.Options{
		IncludeAnnotations: request.GetBool("annotations", false),
		DetailedRedactions: request.GetBool("redaction_findings", false),
	}
	result, err := s.extractor.Extract(ctx, data, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultToolResponse(result)
}

func (s *Server) handleExtractURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	extension := strings.ToLower(request.GetString("extension", "pdf"))
	if extension != "pdf" && !office.SupportedExtension(extension) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported extension %q", extension)), nil
	}

	data, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := extract.Options{}
	if extension != "pdf" {
		data, err = s.converter.ToPDF(ctx, data, extension)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.SkipPDFMetadata = true
	}

	result, err := s.extractor.Extract(ctx, data, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultToolResponse(result)
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", path, err)), nil
	}

	if _, err := s.extractor.Extract(ctx, data, extract.Options{SkipPDFMetadata: true}); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Invalid PDF: %v", err)), nil
	}
	return mcp.NewToolResultText("Valid PDF"), nil
}

func resultToolResponse(result *extract.Result) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// Run starts the MCP server on stdio.
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting document extraction MCP server in stdio mode")
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
