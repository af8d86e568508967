// Package xlsxtable writes assembled rows as a single styled table in an xlsx workbook.
package xlsxtable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
)

const defaultSheet = "Sheet1"

// column widths in header order
var columnWidths = []float64{12, 32, 90, 22, 22, 22}

type Writer struct {
	sheet string
	table string
	style string
}

func New(out domain.OutputSettings) *Writer {
	return &Writer{
		sheet: out.SheetName,
		table: out.TableName,
		style: out.TableStyle,
	}
}

var _ ports.TableWriter = (*Writer)(nil)

// WriteTable renders header + rows and registers a table over the full extent.
// The workbook is written next to path and renamed into place, so a failed write
// leaves any previous file untouched.
func (w *Writer) WriteTable(path string, rows []domain.OutputRow) error {
	f, err := w.build(rows)
	if err != nil {
		return &domain.OpError{
			Op:   "xlsxtable.build",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	return save(f, path)
}

func (w *Writer) build(rows []domain.OutputRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if w.sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, w.sheet); err != nil {
			f.Close()
			return nil, err
		}
	}

	header := make([]interface{}, len(domain.TableHeader))
	for i, h := range domain.TableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range rows {
		cells := r.Cells()
		values := make([]interface{}, len(cells))
		for j, c := range cells {
			values[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(w.sheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}

	ref, err := TableRange(len(rows))
	if err != nil {
		f.Close()
		return nil, err
	}

	show := true
	if err := f.AddTable(w.sheet, &excelize.Table{
		Range:             ref,
		Name:              w.table,
		StyleName:         w.style,
		ShowHeaderRow:     &show,
		ShowRowStripes:    &show,
		ShowColumnStripes: true,
		ShowFirstColumn:   false,
		ShowLastColumn:    false,
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("add table %q: %w", w.table, err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(w.sheet, col, col, width); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// TableRange returns the A1 reference spanning the header and n data rows.
// A table needs at least one data row, so an empty export still spans row 2.
func TableRange(n int) (string, error) {
	last := n + 1
	if last < 2 {
		last = 2
	}
	end, err := excelize.CoordinatesToCellName(len(domain.TableHeader), last)
	if err != nil {
		return "", err
	}
	return "A1:" + end, nil
}

func save(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.OpError{
			Op:   "xlsxtable.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	tmp, err := os.CreateTemp(dir, ".bianx-*.xlsx.tmp")
	if err != nil {
		return &domain.OpError{
			Op:   "xlsxtable.write",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}
	tmpPath := tmp.Name()
	_ = tmp.Chmod(0o644)

	if err := f.Write(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &domain.OpError{
			Op:   "xlsxtable.write",
			Kind: domain.KindExecution,
			Path: tmpPath,
			Err:  err,
		}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &domain.OpError{
			Op:   "xlsxtable.write",
			Kind: domain.KindExecution,
			Path: tmpPath,
			Err:  err,
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &domain.OpError{
			Op:   "xlsxtable.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	return nil
}
