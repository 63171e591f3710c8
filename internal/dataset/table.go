package dataset

import (
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultErrorPrefix marks error-tag columns.
const DefaultErrorPrefix = "Error_"

type column struct {
	name   string
	isErr  bool
	values []Value
	errs   []string
}

// Table is a column-oriented dataset. Data columns keep their source order;
// error columns are appended on first use and only ever extended.
type Table struct {
	cols   []*column
	index  map[string]int
	rows   int
	prefix string
}

// Option configures a Table.
type Option func(*Table)

// WithErrorPrefix overrides DefaultErrorPrefix.
func WithErrorPrefix(prefix string) Option {
	return func(t *Table) {
		if prefix != "" {
			t.prefix = prefix
		}
	}
}

// New creates an empty table. Columns whose name carries the error prefix
// are treated as existing error columns.
func New(columns []string, opts ...Option) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns)), prefix: DefaultErrorPrefix}
	for _, o := range opts {
		o(t)
	}
	for _, name := range columns {
		if _, dup := t.index[name]; dup {
			return nil, eris.Errorf("dataset: duplicate column %q", name)
		}
		t.index[name] = len(t.cols)
		t.cols = append(t.cols, &column{name: name, isErr: strings.HasPrefix(name, t.prefix)})
	}
	return t, nil
}

// ErrorPrefix returns the prefix that marks error columns.
func (t *Table) ErrorPrefix() string { return t.prefix }

// AppendRow adds a row of typed values, one per column. Short rows are
// padded with absent cells.
func (t *Table) AppendRow(vals []Value) error {
	if len(vals) > len(t.cols) {
		return eris.Errorf("dataset: row %d has %d values for %d columns", t.rows, len(vals), len(t.cols))
	}
	for i, c := range t.cols {
		var v Value
		if i < len(vals) {
			v = vals[i]
		}
		if c.isErr {
			c.errs = append(c.errs, v.String())
			continue
		}
		c.values = append(c.values, v)
	}
	t.rows++
	return nil
}

// AppendRecord parses raw strings and adds them as a row.
func (t *Table) AppendRecord(raw []string) error {
	vals := make([]Value, len(raw))
	for i, s := range raw {
		if i < len(t.cols) && t.cols[i].isErr {
			vals[i] = Text(strings.TrimSpace(s))
			continue
		}
		vals[i] = Parse(s)
	}
	return t.AppendRow(vals)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns every column name in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// DataColumns returns the non-error columns in source order.
func (t *Table) DataColumns() []string {
	var out []string
	for _, c := range t.cols {
		if !c.isErr {
			out = append(out, c.name)
		}
	}
	return out
}

// ErrorColumns returns the error columns in creation order.
func (t *Table) ErrorColumns() []string {
	var out []string
	for _, c := range t.cols {
		if c.isErr {
			out = append(out, c.name)
		}
	}
	return out
}

// HasColumn reports whether name is a column of any kind.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// IsErrorColumn reports whether name is an existing error column.
func (t *Table) IsErrorColumn(name string) bool {
	i, ok := t.index[name]
	return ok && t.cols[i].isErr
}

// Column returns a copy of a data column's cells.
func (t *Table) Column(name string) ([]Value, bool) {
	i, ok := t.index[name]
	if !ok || t.cols[i].isErr {
		return nil, false
	}
	return append([]Value(nil), t.cols[i].values...), true
}

// Value returns one data cell. Unknown columns and error columns read as
// absent.
func (t *Table) Value(row int, name string) Value {
	i, ok := t.index[name]
	if !ok || t.cols[i].isErr || row < 0 || row >= t.rows {
		return Null
	}
	return t.cols[i].values[row]
}

// ErrorColumn returns a copy of an error column's tags.
func (t *Table) ErrorColumn(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok || !t.cols[i].isErr {
		return nil, false
	}
	return append([]string(nil), t.cols[i].errs...), true
}

// EnsureErrorColumn creates the error column with empty tags if needed.
func (t *Table) EnsureErrorColumn(name string) error {
	if i, ok := t.index[name]; ok {
		if !t.cols[i].isErr {
			return eris.Errorf("dataset: %q is a data column", name)
		}
		return nil
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, &column{name: name, isErr: true, errs: make([]string, t.rows)})
	return nil
}

// AppendError appends tag to the error column errCol for every listed row.
// Existing tags are kept and joined with a comma.
func (t *Table) AppendError(rows []int, tag, errCol string) error {
	for _, r := range rows {
		if r < 0 || r >= t.rows {
			return eris.Errorf("dataset: row %d out of range", r)
		}
	}
	if err := t.EnsureErrorColumn(errCol); err != nil {
		return err
	}
	c := t.cols[t.index[errCol]]
	for _, r := range rows {
		if c.errs[r] == "" {
			c.errs[r] = tag
		} else {
			c.errs[r] += "," + tag
		}
	}
	return nil
}

// Record renders one row as strings in table order.
func (t *Table) Record(row int) []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		if c.isErr {
			out[i] = c.errs[row]
			continue
		}
		out[i] = c.values[row].String()
	}
	return out
}

// cell returns the typed cell at row for column index i. Error columns read
// as text.
func (t *Table) cell(row, i int) Value {
	c := t.cols[i]
	if c.isErr {
		if c.errs[row] == "" {
			return Null
		}
		return Text(c.errs[row])
	}
	return c.values[row]
}
