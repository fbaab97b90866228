package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_Basic(t *testing.T) {
	rows := ParseCSV("a,b,c\n1,2,3\n4,5,6\n")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, rows[1])
	assert.Equal(t, []string{"4", "5", "6"}, rows[2])
}

func TestParseCSV_CRLFAndBlankLines(t *testing.T) {
	rows := ParseCSV("a,b\r\n\r\n1,2\r\n   \n3,4")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"1", "2"}, rows[1])
	assert.Equal(t, []string{"3", "4"}, rows[2])
}

func TestParseCSV_QuotedCommas(t *testing.T) {
	rows := ParseCSV(`Total QQs,"QQ Pre-Seco"` + "\n" + `"1,5","2,75"`)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Total QQs", "QQ Pre-Seco"}, rows[0])
	assert.Equal(t, []string{"1,5", "2,75"}, rows[1])
}

func TestParseCSV_Empty(t *testing.T) {
	assert.Empty(t, ParseCSV(""))
	assert.Empty(t, ParseCSV("\n\r\n  \n"))
}

func TestSplitCSVLine_TrailingEmptyCells(t *testing.T) {
	assert.Equal(t, []string{"a", "", ""}, SplitCSVLine("a,,"))
	assert.Equal(t, []string{""}, SplitCSVLine(""))
}

func TestSplitCSVLine_KeepsWhitespace(t *testing.T) {
	assert.Equal(t, []string{" a ", " b"}, SplitCSVLine(" a , b"))
}

func TestSplitCSVLine_UnbalancedQuote(t *testing.T) {
	// The open quote swallows the remaining commas instead of failing.
	assert.Equal(t, []string{"a", "b,c,d"}, SplitCSVLine(`a,"b,c,d`))
}

func TestSplitCSVLine_QuotesAreStripped(t *testing.T) {
	// "" inside a quoted field is not an escape: both quotes toggle and vanish.
	assert.Equal(t, []string{"say hi", "x"}, SplitCSVLine(`"say ""hi""",x`))
}

func TestParseCSV_RoundTrip(t *testing.T) {
	rows := [][]string{
		{"Fecha", "Total QQs", "Notas"},
		{"05/03/2024", "1,5", "secadora 2, parada"},
		{"06/03/2024", "2.25", ""},
	}

	var sb strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if strings.Contains(c, ",") {
				c = `"` + c + `"`
			}
			cells[i] = c
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteString("\n")
	}

	assert.Equal(t, rows, ParseCSV(sb.String()))
}
