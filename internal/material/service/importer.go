package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/stockroom/internal/material/domain"
	"github.com/xuri/excelize/v2"
)

var codeHeaders = map[string]struct{}{
	"item#":     {},
	"item":      {},
	"item no":   {},
	"itemno":    {},
	"oracle":    {},
	"oracle#":   {},
	"oracle no": {},
}

const (
	templateCodeHeader = "Item#"
	templateDescHeader = "Description"
	templateSampleCode = "122292"
	templateSampleDesc = "5 AMINOLEVULINIC ACID HYDROCHLORIDE 1.5GM POWDER FOR ORAL SOLUTION"
)

type importRow struct {
	Description string
	Code        string
}

// parseImport reads a .csv or .xlsx (first sheet) file into catalog rows.
// Rows left without a code or description after trimming are dropped.
func parseImport(filename string, r io.Reader) ([]importRow, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		records, err = readCSV(r)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(r)
	default:
		return nil, &domain.ImportError{Err: fmt.Errorf("unsupported file type %q", filepath.Ext(filename))}
	}
	if err != nil {
		return nil, &domain.ImportError{Err: err}
	}
	if len(records) == 0 {
		return nil, &domain.ImportError{Err: errors.New("file is empty")}
	}

	codeCol, descCol := resolveColumns(records[0])
	var missing []string
	if codeCol < 0 {
		missing = append(missing, "oracle")
	}
	if descCol < 0 {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, &domain.ImportError{Missing: missing}
	}

	rows := make([]importRow, 0, len(records)-1)
	for _, record := range records[1:] {
		code := normalizeCode(cell(record, codeCol))
		desc := strings.TrimSpace(cell(record, descCol))
		if code == "" || desc == "" {
			continue
		}
		rows = append(rows, importRow{Description: desc, Code: code})
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		// spreadsheet exports often lead with a UTF-8 BOM
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheet)
}

// resolveColumns returns the first code-alias column and the first column
// whose header mentions "desc", or -1 when absent.
func resolveColumns(header []string) (int, int) {
	codeCol, descCol := -1, -1
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := codeHeaders[name]; ok {
			if codeCol < 0 {
				codeCol = i
			}
			continue
		}
		if strings.Contains(name, "desc") && descCol < 0 {
			descCol = i
		}
	}
	return codeCol, descCol
}

// normalizeCode undoes spreadsheets turning 122292 into 122292.0.
func normalizeCode(raw string) string {
	return strings.TrimSuffix(strings.TrimSpace(raw), ".0")
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func csvTemplate() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{templateCodeHeader, templateDescHeader})
	_ = w.Write([]string{templateSampleCode, templateSampleDesc})
	w.Flush()
	return buf.Bytes()
}

func xlsxTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]string{templateCodeHeader, templateDescHeader}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A2", &[]string{templateSampleCode, templateSampleDesc}); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "B", 70); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
