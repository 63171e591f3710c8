package dataset

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// XLSXOptions selects the sheet to read.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	Options    []Option
}

// ReadXLSX reads a sheet whose first row holds the column names. Fully blank
// rows are skipped.
func ReadXLSX(path string, opts XLSXOptions) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, err := Sheet(f, opts.SheetName, opts.SheetIndex)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}

	header := RowStrings(sheet.Rows[0])
	t, err := New(headerNames(header), opts.Options...)
	if err != nil {
		return nil, err
	}
	for i, row := range sheet.Rows[1:] {
		cells := RowStrings(row)
		if blank(cells) {
			continue
		}
		if len(cells) > len(header) {
			cells = trimTrailingBlank(cells, len(header))
		}
		if err := t.AppendRecord(cells); err != nil {
			return nil, eris.Wrapf(err, "xlsx: row %d", i+2)
		}
	}

	zap.L().Debug("dataset: read xlsx",
		zap.String("path", path),
		zap.String("sheet", sheet.Name),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(header)),
	)
	return t, nil
}

// WriteXLSX saves the table, error columns included, as a single sheet.
// Numbers are written as numeric cells and absent cells are left empty.
func (t *Table) WriteXLSX(path, sheetName string) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range t.cols {
		header.AddCell().SetString(c.name)
	}
	for r := 0; r < t.rows; r++ {
		row := sheet.AddRow()
		for i := range t.cols {
			cell := row.AddCell()
			v := t.cell(r, i)
			switch v.Kind() {
			case KindNumber:
				cell.SetFloat(v.num)
			case KindText:
				cell.SetString(v.text)
			}
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "xlsx: create dir %s", dir)
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

// Sheet picks a sheet by name, or by index when name is empty.
func Sheet(f *xlsx.File, name string, index int) (*xlsx.Sheet, error) {
	if name != "" {
		sheet, ok := f.Sheet[name]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", name)
		}
		return sheet, nil
	}

	if index < 0 || index >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", index, len(f.Sheets))
	}

	return f.Sheets[index], nil
}

// RowStrings renders a row's cells as strings.
func RowStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func trimTrailingBlank(cells []string, n int) []string {
	end := len(cells)
	for end > n && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}
