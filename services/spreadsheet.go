package services

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"reservas/constants"
	"reservas/errors"

	"github.com/xuri/excelize/v2"
)

// SheetRow is one data row keyed by the header text found in the sheet.
// Number is the spreadsheet row number, the header being row 1.
type SheetRow struct {
	Number int
	Values map[string]string
}

type Sheet struct {
	Headers []string
	Rows    []SheetRow
}

// Workbook is the two-sheet batch handed to the importer
type Workbook struct {
	FileName string
	Rooms    Sheet
	Events   Sheet
	// Raw keeps the uploaded file for archiving; nil for JSON imports.
	Raw []byte
}

func isBlankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sheetFromRows(rows [][]string) Sheet {
	if len(rows) == 0 {
		return Sheet{}
	}
	s := Sheet{Headers: rows[0]}
	for i, cells := range rows[1:] {
		if isBlankRow(cells) {
			continue
		}
		row := SheetRow{Number: i + 2, Values: make(map[string]string, len(s.Headers))}
		for j, h := range s.Headers {
			if j < len(cells) {
				row.Values[h] = cells[j]
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// ReadWorkbook reads the Habitaciones and Eventos sheets of an xlsx file.
// Sheet names are matched ignoring accents and case; a missing sheet is empty.
// Cells are read raw so dates arrive as Excel serials whatever their display format.
func ReadWorkbook(r io.Reader, fileName string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeBadWorkbook, "El archivo no es un Excel válido", err)
	}
	defer f.Close()

	wb := &Workbook{FileName: fileName, Raw: data}
	found := false
	for _, name := range f.GetSheetList() {
		var target *Sheet
		switch normalizeHeader(name) {
		case normalizeHeader(constants.SheetRooms):
			target = &wb.Rooms
		case normalizeHeader(constants.SheetEvents):
			target = &wb.Events
		default:
			continue
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, errors.NewAppError(errors.ErrCodeBadWorkbook, "No se pudo leer la hoja "+name, err)
		}
		*target = sheetFromRows(rows)
		found = true
	}
	if !found {
		return nil, errors.NewAppError(errors.ErrCodeBadWorkbook,
			fmt.Sprintf("El archivo debe tener las hojas %s y/o %s", constants.SheetRooms, constants.SheetEvents), nil)
	}
	return wb, nil
}

// SheetFromRecords builds a sheet from JSON row objects. Row numbers follow the
// spreadsheet convention: the first record is row 2.
func SheetFromRecords(records []map[string]interface{}) Sheet {
	seen := make(map[string]bool)
	var s Sheet
	for i, rec := range records {
		row := SheetRow{Number: i + 2, Values: make(map[string]string, len(rec))}
		for k, v := range rec {
			if !seen[k] {
				seen[k] = true
				s.Headers = append(s.Headers, k)
			}
			row.Values[k] = cellString(v)
		}
		s.Rows = append(s.Rows, row)
	}
	sort.Strings(s.Headers)
	return s
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, cellString(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
