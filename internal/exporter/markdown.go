package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MarkdownWriter writes Markdown artifacts under the artifacts directory.
type MarkdownWriter struct {
	artifactsDir string
	logger       *slog.Logger
}

// NewMarkdownWriter creates a Markdown writer rooted at the artifacts
// directory. A nil logger falls back to slog.Default.
func NewMarkdownWriter(artifactsDir string, logger *slog.Logger) *MarkdownWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownWriter{artifactsDir: artifactsDir, logger: logger}
}

// WriteDocument writes a complete Markdown document.
func (w *MarkdownWriter) WriteDocument(name, content string) error {
	fullPath := name
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.artifactsDir, name)
	}

	w.logger.Info("writing Markdown artifact",
		slog.String("path", fullPath),
		slog.Int("bytes", len(content)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Table renders a Markdown table from headers and rows. Pipes in cells are
// escaped; a ragged row is padded with empty cells.
func Table(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| " + strings.Join(escapeCells(headers), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")

	for _, row := range rows {
		cells := escapeCells(row)
		for len(cells) < len(headers) {
			cells = append(cells, "")
		}
		b.WriteString("| " + strings.Join(cells[:len(headers)], " | ") + " |\n")
	}
	return b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", "\\|")
	}
	return out
}
