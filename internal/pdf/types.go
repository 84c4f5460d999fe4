package pdf

import "github.com/examtools/revalida-extract/internal/extract"

// FileInfo represents information about a PDF file on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// ImageInfo represents one image payload extracted from a PDF
type ImageInfo struct {
	PageNumber int    `json:"page_number"`
	FileName   string `json:"file_name"`
	Format     string `json:"format"`
	Size       int64  `json:"size"`
}

// Request Types

// DocumentReadRequest represents a request to read the page text of a PDF
type DocumentReadRequest struct {
	Path string `json:"path"`
}

// ImageExtractRequest represents a request to extract image payloads from a PDF
type ImageExtractRequest struct {
	Path      string `json:"path"`
	OutputDir string `json:"output_dir"`
}

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// FileStatsRequest represents a request to get stats about a PDF file
type FileStatsRequest struct {
	Path string `json:"path"`
}

// Response Types

// DocumentReadResult represents the per-page text recovered from a PDF
type DocumentReadResult struct {
	Path        string             `json:"path"`
	Pages       int                `json:"pages"`
	Size        int64              `json:"size"`
	ContentType string             `json:"content_type"` // "text", "scanned_images", "mixed", "no_content"
	HasImages   bool               `json:"has_images"`
	ImageCount  int                `json:"image_count"`
	PageTexts   []extract.PageText `json:"page_texts"`
}

// ImageExtractResult represents extracted image payloads, grouped by page
type ImageExtractResult struct {
	Path       string             `json:"path"`
	OutputDir  string             `json:"output_dir"`
	Images     []ImageInfo        `json:"images"`
	TotalCount int                `json:"total_count"`
	PageImages extract.PageImages `json:"page_images"`
}

// ValidateFileResult represents the result of a PDF validation operation
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// FileStatsResult represents file-level stats and document metadata
type FileStatsResult struct {
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Pages        int    `json:"pages"`
	CreatedDate  string `json:"created_date,omitempty"`
	ModifiedDate string `json:"modified_date"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Producer     string `json:"producer,omitempty"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DataDirectory     string     `json:"data_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
	SupportedFormats  []string   `json:"supported_formats"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
