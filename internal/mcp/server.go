package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/examtools/revalida-extract/internal/config"
	"github.com/examtools/revalida-extract/internal/descriptions"
	"github.com/examtools/revalida-extract/internal/extract"
	"github.com/examtools/revalida-extract/internal/pdf"
	"github.com/examtools/revalida-extract/internal/store"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	runner     *store.Runner
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, runner *store.Runner) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		runner:     runner,
		mcpServer:  mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register exam extract file tool
	examExtractFileTool := mcp.NewTool(
		"exam_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("exam_extract_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the exam PDF file"),
		),
		mcp.WithString("gabarito_path",
			mcp.Description("Full path to a separate answer-key PDF (optional)"),
		),
	)
	s.mcpServer.AddTool(examExtractFileTool, s.handleExamExtractFile)

	// Register exam answer key tool
	examAnswerKeyTool := mcp.NewTool(
		"exam_answer_key",
		mcp.WithDescription(descriptions.GetToolDescription("exam_answer_key")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(examAnswerKeyTool, s.handleExamAnswerKey)

	// Register exam repair text tool
	examRepairTextTool := mcp.NewTool(
		"exam_repair_text",
		mcp.WithDescription(descriptions.GetToolDescription("exam_repair_text")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Question text whose options should be recovered"),
		),
	)
	s.mcpServer.AddTool(examRepairTextTool, s.handleExamRepairText)

	// Register PDF validate file tool
	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	// Register PDF stats file tool
	pdfStatsFileTool := mcp.NewTool(
		"pdf_stats_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_stats_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfStatsFileTool, s.handlePDFStatsFile)

	// Register exam server info tool
	examServerInfoTool := mcp.NewTool(
		"exam_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("exam_server_info")),
	)
	s.mcpServer.AddTool(examServerInfoTool, s.handleExamServerInfo)
}

// Handler functions
func (s *Server) handleExamExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gabaritoPath := ""
	if gp, ok := request.GetArguments()["gabarito_path"].(string); ok {
		gabaritoPath = gp
	}

	// Confine and validate the sources before copying them into a run
	if result := s.validateSource(path); result != nil {
		return result, nil
	}
	if gabaritoPath != "" {
		if result := s.validateSource(gabaritoPath); result != nil {
			return result, nil
		}
	}

	pdfFile, err := os.Open(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot open %s: %v", path, err)), nil
	}
	defer pdfFile.Close()

	req := store.RunRequest{
		PDFName: filepath.Base(path),
		PDF:     pdfFile,
	}

	if gabaritoPath != "" {
		gabaritoFile, err := os.Open(gabaritoPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot open %s: %v", gabaritoPath, err)), nil
		}
		defer gabaritoFile.Close()
		req.GabaritoName = filepath.Base(gabaritoPath)
		req.Gabarito = gabaritoFile
	}

	result, err := s.runner.Run(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatExtractionResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// validateSource runs the service validation on a source file and returns a
// ready error result when it cannot be processed, nil when it can
func (s *Server) validateSource(path string) *mcp.CallToolResult {
	validation, err := s.pdfService.ValidateFile(pdf.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if !validation.Valid {
		return mcp.NewToolResultError(fmt.Sprintf("PDF validation failed for %s: %s", path, validation.Message))
	}
	return nil
}

func (s *Server) handleExamAnswerKey(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	document, err := s.pdfService.ReadDocument(pdf.DocumentReadRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	texts := make([]string, 0, len(document.PageTexts))
	for _, page := range document.PageTexts {
		texts = append(texts, page.Text)
	}
	key := extract.ExtractAnswerKey(strings.Join(texts, "\n"))

	responseText := s.formatAnswerKeyResult(path, key)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExamRepairText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	repaired, found := extract.RepairOptions(text)

	responseText := s.formatRepairResult(repaired, found)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.ValidateFileRequest{Path: path}
	result, err := s.pdfService.ValidateFile(req)
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

func (s *Server) handlePDFStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FileStatsRequest{Path: path}
	result, err := s.pdfService.FileStats(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatFileStatsResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleExamServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version, s.config.DataDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatExtractionResult(result *store.RunResult) string {
	text := fmt.Sprintf("Extraction complete: %s\n", result.ID)
	text += fmt.Sprintf("Source: %s\n", result.Metadata.PDFFilename)
	if result.Metadata.GabaritoFilename != "" {
		text += fmt.Sprintf("Answer key: %s\n", result.Metadata.GabaritoFilename)
	}
	text += fmt.Sprintf("Questions: %d (%d with images)\n",
		result.Metadata.TotalQuestions, result.Metadata.QuestionsWithImages)
	text += fmt.Sprintf("Images: %d\n", result.Metadata.TotalImages)

	payload, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return text
	}
	text += "\nQuestions JSON:\n"
	text += string(payload)

	return text
}

func (s *Server) formatAnswerKeyResult(path string, key extract.AnswerKey) string {
	if len(key) == 0 {
		return fmt.Sprintf("No answer key found in %s", path)
	}

	numbers := make([]int, 0, len(key))
	for number := range key {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	text := fmt.Sprintf("Answer key for %s\n", path)
	text += fmt.Sprintf("Entries: %d\n\n", len(key))
	for _, number := range numbers {
		text += fmt.Sprintf("%d - %s\n", number, key[number])
	}

	return text
}

func (s *Server) formatRepairResult(repaired extract.Repaired, found bool) string {
	text := fmt.Sprintf("Option boundary found: %t\n", found)
	text += "\nStem:\n"
	text += repaired.Stem + "\n"
	text += "\nOptions:\n"
	for _, letter := range extract.OptionLetters {
		value := repaired.Options[letter]
		if value == "" {
			value = "(not recovered)"
		}
		text += fmt.Sprintf("%s: %s\n", letter, value)
	}

	return text
}

func (s *Server) formatFileStatsResult(result *pdf.FileStatsResult) string {
	text := "PDF File Statistics\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}
	if result.Subject != "" {
		text += fmt.Sprintf("Subject: %s\n", result.Subject)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		text += fmt.Sprintf("Created: %s\n", result.CreatedDate)
	}

	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Data Directory: %s\n", result.DataDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	// Directory contents
	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in data directory\n\n"
	}

	// Available tools
	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	// Supported formats
	if len(result.SupportedFormats) > 0 {
		text += "\n🖼️  Supported Image Formats:\n"
		for _, format := range result.SupportedFormats {
			text += fmt.Sprintf("  • %s\n", format)
		}
	}

	// Usage guidance
	text += "\n" + result.UsageGuidance

	return text
}

// Run serves the MCP protocol on standard I/O until the client disconnects
func (s *Server) Run(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting exam extraction MCP server in stdio mode")
		log.Printf("Data directory: %s", s.config.DataDir)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
