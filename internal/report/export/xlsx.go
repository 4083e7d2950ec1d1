package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// WriteXLSX serialises the table to an XLSX workbook with one sheet.
// Section headers render as bold merged rows so the hierarchy reads the
// same way it does on the dashboard.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	width := len(table.Headers)
	rowNo := 1
	setRow := func(cells []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNo)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return err
		}
		rowNo++
		return nil
	}

	if err := setRow([]interface{}{table.Title}); err != nil {
		return err
	}
	if err := setRow([]interface{}{"Date", table.Date}); err != nil {
		return err
	}
	rowNo++ // spacer

	headerCells := make([]interface{}, width)
	for i, h := range table.Headers {
		headerCells[i] = h
	}
	headerRow := rowNo
	if err := setRow(headerCells); err != nil {
		return err
	}
	if err := styleRow(f, bold, headerRow, width); err != nil {
		return err
	}

	for _, row := range table.Rows {
		cells := make([]interface{}, 0, width)
		for _, c := range row.Cells {
			cells = append(cells, c)
		}
		lineNo := rowNo
		if err := setRow(cells); err != nil {
			return err
		}
		if row.Header {
			if err := mergeAcross(f, lineNo, width); err != nil {
				return err
			}
			if err := styleRow(f, bold, lineNo, width); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func styleRow(f *excelize.File, style, row, width int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, start, end, style)
}

func mergeAcross(f *excelize.File, row, width int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.MergeCell(sheetName, start, end)
}

// Filename builds the download name for one export.
func Filename(table Table, ext string) string {
	return fmt.Sprintf("honai-%s-%s.%s", table.Metric, table.Date, ext)
}
