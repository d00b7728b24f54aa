package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXLSX(&buf,
		Table{
			Sheet:  "2025-08",
			Header: []string{"Code", "Name", "Net Pay"},
			Rows: [][]any{
				{"EMP-001", "Asha Rao", "26700.00"},
				{"EMP-002", "Ravi Kumar", "30000.00"},
			},
			Footer: []any{"Total", "", "56700.00"},
		},
		Table{
			Sheet:  "Summary",
			Header: []string{"Status", "Count"},
			Rows:   [][]any{{"Pending", 2}},
		},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"2025-08", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("2025-08")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, []string{"Code", "Name", "Net Pay"}, rows[0])
	assert.Equal(t, []string{"EMP-002", "Ravi Kumar", "30000.00"}, rows[2])

	total, err := f.GetCellValue("2025-08", "C5")
	require.NoError(t, err)
	assert.Equal(t, "56700.00", total)

	count, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)
}

func TestWriteXLSX_NoTables(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteXLSX(&buf))
	assert.Zero(t, buf.Len())
}
