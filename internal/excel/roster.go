// Package excel reads group roster workbooks and writes attendance into them.
package excel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheet = errors.New("excel: workbook has no sheet")

// MatriculeHeader is the header of the student id column.
const MatriculeHeader = "Matricule"

var (
	lastNameHeaders  = []string{"nom", "last name", "lastname", "surname", "name"}
	firstNameHeaders = []string{"prénom", "prenom", "first name", "firstname"}
)

// RosterRow is one student line of a roster workbook. Row is the 1-based
// sheet row.
type RosterRow struct {
	Row       int
	Matricule string
	LastName  string
	FirstName string
}

// Roster is the parsed first sheet of a roster workbook. HeaderRow is 0 when
// the sheet has no "Matricule" header and column A is read as the id.
type Roster struct {
	Sheet     string
	HeaderRow int
	Width     int
	Rows      []RosterRow
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func indexOf(row []string, names []string) int {
	for i, cell := range row {
		c := normalize(cell)
		for _, n := range names {
			if c == n {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRoster(f *excelize.File) (*Roster, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	r := &Roster{Sheet: sheet}
	matCol, lastCol, firstCol := 0, 1, 2
	start := 0
	for i, row := range rows {
		if len(row) > r.Width {
			r.Width = len(row)
		}
		if r.HeaderRow != 0 {
			continue
		}
		if c := indexOf(row, []string{normalize(MatriculeHeader)}); c >= 0 {
			r.HeaderRow = i + 1
			start = i + 1
			matCol = c
			lastCol = indexOf(row, lastNameHeaders)
			firstCol = indexOf(row, firstNameHeaders)
		}
	}

	for i := start; i < len(rows); i++ {
		mat := cellAt(rows[i], matCol)
		if mat == "" {
			continue
		}
		r.Rows = append(r.Rows, RosterRow{
			Row:       i + 1,
			Matricule: mat,
			LastName:  cellAt(rows[i], lastCol),
			FirstName: cellAt(rows[i], firstCol),
		})
	}
	return r, nil
}

// ReadRoster parses the first sheet of the workbook in src.
func ReadRoster(src io.Reader) (*Roster, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return parseRoster(f)
}

// ReadRosterFile is ReadRoster for a workbook on disk.
func ReadRosterFile(path string) (*Roster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return parseRoster(f)
}
