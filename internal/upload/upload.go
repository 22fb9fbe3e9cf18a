// Package upload describes attachments for prompt assembly. The actual
// file storage and analysis live outside the core; this package only
// shapes their output into the annotation appended to a user message.
// File contents never reach the model or the thread store.
package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileInfo is the per-file metadata the upload collaborator reports.
type FileInfo struct {
	Name          string `json:"name"`
	SizeFormatted string `json:"sizeFormatted"`
	IsImage       bool   `json:"isImage"`
	IsDocument    bool   `json:"isDocument"`
	IsArchive     bool   `json:"isArchive"`
	IsText        bool   `json:"isText"`
	Lines         int    `json:"lines,omitempty"`
}

var (
	imageExts    = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".svg": true, ".bmp": true}
	documentExts = map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true, ".xls": true, ".xlsx": true}
	archiveExts  = map[string]bool{".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true}
	textExts     = map[string]bool{".txt": true, ".md": true, ".csv": true, ".json": true, ".log": true, ".xml": true, ".yaml": true, ".yml": true}
)

// Describe classifies a file by extension and formats its size.
// lines is meaningful for text files only; pass 0 otherwise.
func Describe(name string, size int64, lines int) FileInfo {
	ext := strings.ToLower(filepath.Ext(name))
	info := FileInfo{
		Name:          name,
		SizeFormatted: formatSize(size),
		IsImage:       imageExts[ext],
		IsDocument:    documentExts[ext],
		IsArchive:     archiveExts[ext],
		IsText:        textExts[ext],
	}
	if info.IsText {
		info.Lines = lines
	}
	return info
}

// Annotation renders the human-readable block appended to the next user
// message so the assistant knows what was attached.
func Annotation(files []FileInfo) string {
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("[Attached files]\n")
	for _, f := range files {
		b.WriteString("- ")
		b.WriteString(f.Name)
		b.WriteString(" (")
		b.WriteString(f.SizeFormatted)
		if kind := f.kind(); kind != "" {
			b.WriteString(", ")
			b.WriteString(kind)
		}
		if f.IsText && f.Lines > 0 {
			fmt.Fprintf(&b, ", %d lines", f.Lines)
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f FileInfo) kind() string {
	switch {
	case f.IsImage:
		return "image"
	case f.IsDocument:
		return "document"
	case f.IsArchive:
		return "archive"
	case f.IsText:
		return "text"
	}
	return ""
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
