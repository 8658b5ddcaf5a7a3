package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/quickpad-app/quickpad/internal/common"
	"github.com/quickpad-app/quickpad/internal/server/models"
)

func exportFixtureNotes() []models.Note {
	return []models.Note{
		{Text: "buy milk", Timestamp: "2024-03-01T08:00:00.000000Z"},
		{
			Text:      "send report",
			Timestamp: "2024-03-01T09:30:00.000000Z",
			Attachment: &models.Attachment{
				OriginalName: "Report Final.PDF",
				StoredName:   "deadbeef.PDF",
				Size:         10,
			},
		},
		{Text: "line with, comma and \"quotes\"", Timestamp: "2024-03-02T10:00:00.000000Z"},
	}
}

func TestExportService_Txt(t *testing.T) {
	s := NewExportService(testLogger())

	out, err := s.Export(context.Background(), exportFixtureNotes(), FormatTxt)
	require.NoError(t, err)

	entries := strings.Split(string(out), "\n\n")
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03-01 08:00:00 - buy milk", entries[0])
	assert.Equal(t, "2024-03-01 09:30:00 - send report [Attachment: Report Final.PDF]", entries[1])
}

func TestExportService_Txt_Empty(t *testing.T) {
	s := NewExportService(testLogger())

	out, err := s.Export(context.Background(), nil, FormatTxt)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExportService_CSV(t *testing.T) {
	s := NewExportService(testLogger())

	out, err := s.Export(context.Background(), exportFixtureNotes(), FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4, "header plus three data rows")
	assert.Equal(t, []string{"Note"}, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, 1, "each data row is a single field")
	}
	assert.Equal(t, `2024-03-02 10:00:00 - line with, comma and "quotes"`, rows[3][0])
}

func TestExportService_XLSX(t *testing.T) {
	s := NewExportService(testLogger())

	out, err := s.Export(context.Background(), exportFixtureNotes(), FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Notes"}, f.GetSheetList())

	header, err := f.GetCellValue("Notes", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Note", header)

	first, err := f.GetCellValue("Notes", "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 08:00:00 - buy milk", first)
}

func TestExportService_SkipsUnparseableTimestamps(t *testing.T) {
	s := NewExportService(testLogger())
	in := []models.Note{
		{Text: "ok", Timestamp: "2024-03-01T08:00:00.000000Z"},
		{Text: "broken", Timestamp: "not-a-timestamp"},
	}

	out, err := s.Export(context.Background(), in, FormatTxt)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 08:00:00 - ok", string(out))
}

func TestExportService_UnknownFormat(t *testing.T) {
	s := NewExportService(testLogger())

	out, err := s.Export(context.Background(), exportFixtureNotes(), "pdf")
	assert.ErrorIs(t, err, common.ErrorInvalidFormat)
	assert.Nil(t, out, "no partial output on unknown format")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/plain; charset=utf-8", ContentType(FormatTxt))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType(FormatXLSX))
}
