package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
)

type fakeSource struct {
	feeds   []string
	options map[string][]feed.DateOption
	views   map[string]map[feed.Selector]dashboard.View
}

func (f *fakeSource) Feeds() []string { return f.feeds }

func (f *fakeSource) DateOptions(name string) ([]feed.DateOption, error) {
	opts, ok := f.options[name]
	if !ok {
		return nil, &feed.FetchError{Feed: name, Err: errors.New("unexpected status 500")}
	}
	return opts, nil
}

func (f *fakeSource) View(name string, sel feed.Selector) (dashboard.View, error) {
	v, ok := f.views[name][sel]
	if !ok {
		return dashboard.View{}, feed.ErrRowNotFound
	}
	return v, nil
}

func sheetRows(t *testing.T, sheet *xlsx.Sheet) [][]string {
	t.Helper()
	var out [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = c.String()
		}
		out = append(out, cells)
	}
	return out
}

func TestWriteWorkbook(t *testing.T) {
	src := &fakeSource{
		feeds: []string{feed.Main, feed.Metrics},
		options: map[string][]feed.DateOption{
			feed.Main: {
				{Value: "06/03/2024", Label: "6/3/2024"},
				{Value: "05/03/2024", Label: "5/3/2024"},
			},
			feed.Metrics: {{Value: "05/03/2024", Label: "5/3/2024"}},
		},
		views: map[string]map[feed.Selector]dashboard.View{
			feed.Main: {
				"06/03/2024": {Slots: map[string]string{dashboard.SlotFecha: "6/3/2024", dashboard.SlotTotalQss: "12.00"}},
				"05/03/2024": {Slots: map[string]string{dashboard.SlotFecha: "5/3/2024", dashboard.SlotTotalQss: "10.00"}},
			},
			feed.Metrics: {
				"05/03/2024": {Slots: map[string]string{dashboard.SlotKPIOEE: "82.00%"}},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, src))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, feed.Main, f.Sheets[0].Name)
	assert.Equal(t, feed.Metrics, f.Sheets[1].Name)

	main := sheetRows(t, f.Sheets[0])
	require.Len(t, main, 3)
	assert.Equal(t, append([]string{"date"}, dashboard.SlotOrder(feed.Main)...), main[0])
	assert.Equal(t, "06/03/2024", main[1][0])
	assert.Equal(t, "6/3/2024", main[1][1])
	assert.Equal(t, "12.00", main[1][2])
	assert.Equal(t, "10.00", main[2][2])

	metrics := sheetRows(t, f.Sheets[1])
	require.Len(t, metrics, 2)
	oee := len(dashboard.SlotOrder(feed.Metrics)) - 1
	assert.Equal(t, dashboard.SlotKPIOEE, metrics[0][oee])
	assert.Equal(t, "82.00%", metrics[1][oee])
}

func TestWriteWorkbook_SkipsUnloadedFeed(t *testing.T) {
	src := &fakeSource{
		feeds:   []string{feed.Main, feed.Metrics},
		options: map[string][]feed.DateOption{feed.Main: {}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, src))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Len(t, f.Sheets[0].Rows, 1)
}

func TestWriteWorkbook_NothingLoaded(t *testing.T) {
	src := &fakeSource{feeds: []string{feed.Main, feed.Metrics}}

	var buf bytes.Buffer
	err := WriteWorkbook(&buf, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrFetch))
	assert.Zero(t, buf.Len())
}
