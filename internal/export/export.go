// Package export writes dashboard views to an Excel workbook.
package export

import (
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/plant-dashboard/internal/dashboard"
	"github.com/sells-group/plant-dashboard/internal/feed"
)

// Source is the read side of the dashboard cache.
type Source interface {
	Feeds() []string
	DateOptions(name string) ([]feed.DateOption, error)
	View(name string, sel feed.Selector) (dashboard.View, error)
}

// WriteWorkbook writes one sheet per loaded feed. Each sheet has a header row
// of slot ids followed by one row per selectable date, newest first. Feeds
// that have not loaded are skipped; it fails only when none could be written.
func WriteWorkbook(w io.Writer, src Source) error {
	f := xlsx.NewFile()

	written := 0
	for _, name := range src.Feeds() {
		opts, err := src.DateOptions(name)
		if err != nil {
			zap.L().Warn("export: skipping feed", zap.String("feed", name), zap.Error(err))
			continue
		}
		if err := addSheet(f, name, opts, src); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		return eris.Wrap(feed.ErrFetch, "export: no feed data to write")
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

func addSheet(f *xlsx.File, name string, opts []feed.DateOption, src Source) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}

	slots := dashboard.SlotOrder(name)
	addRow(sheet, append([]string{"date"}, slots...))

	for _, opt := range opts {
		v, err := src.View(name, feed.Selector(opt.Value))
		if errors.Is(err, feed.ErrRowNotFound) {
			continue
		}
		if err != nil {
			return eris.Wrapf(err, "export: view %s %s", name, opt.Value)
		}

		cells := make([]string, 0, len(slots)+1)
		cells = append(cells, opt.Value)
		for _, id := range slots {
			cells = append(cells, v.Slot(id))
		}
		addRow(sheet, cells)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
