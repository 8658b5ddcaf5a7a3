package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/logging"
	"github.com/quickpad-app/quickpad/internal/server/models"
)

// Supported export formats.
const (
	FormatTxt  = "txt"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const exportSheetName = "Notes"

type ExportService struct {
	logger logging.Logger
}

func NewExportService(logger logging.Logger) *ExportService {
	return &ExportService{logger: logger.With("module", "export_service")}
}

// formatLines renders one human-readable line per note:
//
//	"2024-03-01 12:30:45 - buy milk [Attachment: Report Final.PDF]"
//
// Notes whose timestamp fails to parse are skipped, mirroring the note
// store's own tolerance for corrupted records.
func formatLines(notes []models.Note) []string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		ts, err := models.ParseTimestamp(n.Timestamp)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%s - %s", ts.UTC().Format("2006-01-02 15:04:05"), n.Text)
		if n.Attachment != nil {
			line += fmt.Sprintf(" [Attachment: %s]", n.Attachment.OriginalName)
		}
		lines = append(lines, line)
	}
	return lines
}

// Export renders notes in the requested format. Unknown formats fail with
// common.ErrorInvalidFormat and produce no partial output.
func (s *ExportService) Export(ctx context.Context, notes []models.Note, format string) ([]byte, error) {
	lines := formatLines(notes)

	switch format {
	case FormatTxt:
		return []byte(strings.Join(lines, "\n\n")), nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"Note"}); err != nil {
			return nil, fmt.Errorf("writing csv header: %w", err)
		}
		for _, line := range lines {
			if err := w.Write([]string{line}); err != nil {
				return nil, fmt.Errorf("writing csv row: %w", err)
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flushing csv: %w", err)
		}
		return buf.Bytes(), nil

	case FormatXLSX:
		f := excelize.NewFile()
		defer f.Close()

		if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
			return nil, fmt.Errorf("naming worksheet: %w", err)
		}
		if err := f.SetCellValue(exportSheetName, "A1", "Note"); err != nil {
			return nil, fmt.Errorf("writing xlsx header: %w", err)
		}
		for i, line := range lines {
			cell := fmt.Sprintf("A%d", i+2)
			if err := f.SetCellValue(exportSheetName, cell, line); err != nil {
				return nil, fmt.Errorf("writing xlsx row: %w", err)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, fmt.Errorf("serializing workbook: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, common.ErrorInvalidFormat
	}
}

// ContentType returns the MIME type for a supported export format.
func ContentType(format string) string {
	switch format {
	case FormatTxt:
		return "text/plain; charset=utf-8"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
