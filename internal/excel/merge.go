package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// NoteHeader heads the total column appended after the session columns.
const NoteHeader = "Note"

// AttendanceSheet is what gets merged into a roster workbook: one column per
// header, one value list per matricule in header order, and a total per
// matricule.
type AttendanceSheet struct {
	Headers []string
	Values  map[string][]float64
	Totals  map[string]float64
}

// MergeAttendance appends the session columns and the Note column to the
// first sheet of the roster workbook in src and returns the new workbook.
// Students of the workbook missing from sheet get zeros.
func MergeAttendance(src io.Reader, sheet AttendanceSheet) ([]byte, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	roster, err := parseRoster(f)
	if err != nil {
		return nil, err
	}

	headerRow := roster.HeaderRow
	if headerRow == 0 {
		// No header: make room for one above the data.
		if err := f.InsertRows(roster.Sheet, 1, 1); err != nil {
			return nil, fmt.Errorf("insert header row: %w", err)
		}
		if err := f.SetCellValue(roster.Sheet, "A1", MatriculeHeader); err != nil {
			return nil, err
		}
		headerRow = 1
		for i := range roster.Rows {
			roster.Rows[i].Row++
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	first := roster.Width + 1
	headers := append(append([]string{}, sheet.Headers...), NoteHeader)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(first+i, headerRow)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(roster.Sheet, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(roster.Sheet, cell, cell, bold); err != nil {
			return nil, err
		}
	}

	for _, row := range roster.Rows {
		values := sheet.Values[row.Matricule]
		for i := range sheet.Headers {
			v := 0.0
			if i < len(values) {
				v = values[i]
			}
			cell, err := excelize.CoordinatesToCellName(first+i, row.Row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(roster.Sheet, cell, v); err != nil {
				return nil, err
			}
		}
		cell, err := excelize.CoordinatesToCellName(first+len(sheet.Headers), row.Row)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(roster.Sheet, cell, sheet.Totals[row.Matricule]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
