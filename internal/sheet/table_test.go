package sheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyncal/internal/sheet"
)

func TestReadCSV(t *testing.T) {
	src := strings.Join([]string{
		" Calendar ,Title,Start,End",
		"Team,Standup,2025-09-01 09:00,2025-09-01 09:15",
		"Team,Retro,2025-09-05 15:00,",
	}, "\n")

	table, err := sheet.ReadCSV(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Calendar", "Title", "Start", "End"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Standup", table.Rows[0]["Title"])
	assert.Equal(t, "", table.Rows[1]["End"])
}

func TestReadCSVRaggedRows(t *testing.T) {
	src := strings.Join([]string{
		"Calendar,Title,Start",
		"Team,Short",
		"Team,Long,2025-09-01,extra-cell",
	}, "\n")

	table, err := sheet.ReadCSV(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["Start"])
	assert.Equal(t, "2025-09-01", table.Rows[1]["Start"])
}

func TestReadCSVQuotedCells(t *testing.T) {
	src := strings.Join([]string{
		"Calendar,Title,Start",
		`Team,"Planning, H2",2025-09-01`,
	}, "\n")

	table, err := sheet.ReadCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "Planning, H2", table.Rows[0]["Title"])
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := sheet.ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}
