package rows

import (
	"fmt"
)

// Row is a single spreadsheet row. Trailing empty cells may be missing.
type Row []string

// RowSet is the ordered contents of a sheet, top to bottom.
type RowSet []Row

// Page is a window onto a RowSet. NextOffset is nil when the window reaches the end
// of the RowSet.
type Page struct {
	Rows       RowSet
	Offset     int
	PageSize   int
	NextOffset *int
	HasMore    bool
}

// FromValues converts the cell grid returned by the Sheets API into a RowSet. Cells
// are rendered as strings and kept as-is, including whitespace.
func FromValues(values [][]interface{}) RowSet {
	rs := make(RowSet, 0, len(values))

	for _, v := range values {
		row := make(Row, len(v))
		for i, cell := range v {
			switch c := cell.(type) {
			case string:
				row[i] = c
			case nil:
				row[i] = ""
			default:
				row[i] = fmt.Sprintf("%v", c)
			}
		}

		rs = append(rs, row)
	}

	return rs
}

// All returns the RowSet unmodified.
func All(rs RowSet) RowSet {
	return nonNil(rs)
}

// Latest returns the last n rows, or every row if there are fewer than n.
func Latest(rs RowSet, n int) RowSet {
	switch {
	case n <= 0:
		return RowSet{}

	case n >= len(rs):
		return nonNil(rs)

	default:
		return rs[len(rs)-n:]
	}
}

// Paginate returns the rows in [offset, offset+pageSize), clipped to the RowSet.
func Paginate(rs RowSet, offset, pageSize int) Page {
	if offset < 0 {
		offset = 0
	}

	if pageSize < 0 {
		pageSize = 0
	}

	page := Page{
		Rows:     RowSet{},
		Offset:   offset,
		PageSize: pageSize,
	}

	if offset < len(rs) {
		end := len(rs)
		if pageSize < end-offset {
			end = offset + pageSize
		}

		page.Rows = rs[offset:end]
	}

	if next := offset + pageSize; next < len(rs) {
		page.NextOffset = &next
		page.HasMore = true
	}

	return page
}

func nonNil(rs RowSet) RowSet {
	if rs == nil {
		return RowSet{}
	}

	return rs
}
