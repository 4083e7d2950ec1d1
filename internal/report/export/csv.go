package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV serialises the table to CSV. Section headers occupy the first
// column of an otherwise empty record, preserving the row sequence the
// dashboard shows.
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Report", table.Title}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Date", table.Date}); err != nil {
		return err
	}
	if err := writer.Write(nil); err != nil {
		return err
	}
	if err := writer.Write(table.Headers); err != nil {
		return err
	}

	width := len(table.Headers)
	for _, row := range table.Rows {
		record := row.Cells
		if row.Header {
			record = make([]string, width)
			record[0] = row.Cells[0]
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
