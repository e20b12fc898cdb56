package rows

import (
	"encoding/csv"
	"io"
)

// MakeTSV writes the rows as tab separated values. Short rows are padded with empty
// cells to the width of the widest row.
func MakeTSV(f io.Writer, rs RowSet) error {
	width := 0
	for _, row := range rs {
		if len(row) > width {
			width = len(row)
		}
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, row := range rs {
		record := make([]string, width)
		copy(record, row)

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
