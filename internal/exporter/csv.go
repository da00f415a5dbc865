package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CSVWriter writes analysis artifacts as CSV files under the artifacts
// directory. Exports carry a UTF-8 BOM by default so spreadsheet tools
// detect the encoding.
type CSVWriter struct {
	artifactsDir string
	logger       *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at the artifacts directory.
// A nil logger falls back to slog.Default.
func NewCSVWriter(artifactsDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{artifactsDir: artifactsDir, logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // UTF-8 BOM for Excel compatibility
}

// WriteCSV writes records to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := w.resolvePath(name)

	w.logger.Info("writing CSV artifact",
		slog.String("path", fullPath),
		slog.Int("records", len(options.Records)),
		slog.Bool("append", options.Append))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteSimpleCSV writes headers and records with a BOM, replacing any
// existing file.
func (w *CSVWriter) WriteSimpleCSV(name string, headers []string, records [][]string) error {
	return w.WriteCSV(name, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// AppendToCSV appends records to an existing CSV file.
func (w *CSVWriter) AppendToCSV(name string, records [][]string) error {
	return w.WriteCSV(name, WriteOptions{
		Records: records,
		Append:  true,
	})
}

// StreamWriter writes large exports row by row.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter opens a streaming CSV writer with a BOM and header row.
func (w *CSVWriter) CreateStreamWriter(name string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(name)

	w.logger.Info("creating CSV stream writer",
		slog.String("path", fullPath),
		slog.Int("columns", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream.
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.artifactsDir, name)
}
