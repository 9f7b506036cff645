package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one parsed record before validation: column or key name to text.
type Row map[string]string

// Parser turns raw file content into rows. Failures are *ParseError.
type Parser func(content []byte) ([]Row, error)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultFormats maps lower-case file extensions to their parsers.
func DefaultFormats() map[string]Parser {
	return map[string]Parser{
		".csv":  ParseCSV,
		".json": ParseJSON,
		".xlsx": ParseXLSX,
	}
}

// ParserFor picks the parser for filename's extension.
func ParserFor(formats map[string]Parser, filename string) (Parser, error) {
	ext := (&File{Name: filename}).Ext()
	if parser, ok := formats[ext]; ok && parser != nil {
		return parser, nil
	}
	if ext == ".xlsx" {
		return nil, ErrFormatUnavailable
	}
	return nil, ErrUnsupportedFormat
}

// ParseCSV reads a header row followed by data rows. Quotes inside unquoted
// fields are kept literally.
func ParseCSV(content []byte) ([]Row, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &ParseError{Format: "CSV", Detail: err.Error(), Err: err}
	}
	keys := make([]string, len(header))
	for i, key := range header {
		keys[i] = strings.TrimSpace(key)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: "CSV", Detail: err.Error(), Err: err}
		}
		row := make(Row, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[key] = value
		}
		if row.empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseJSON accepts an array of objects or a single object.
func ParseJSON(content []byte) ([]Row, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, &ParseError{Format: "JSON", Detail: err.Error(), Err: err}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: "JSON", Detail: "unexpected data after top-level value"}
	}

	shapeErr := &ParseError{Format: "JSON", Detail: "JSON must be an array of objects or a single object"}
	switch value := data.(type) {
	case map[string]any:
		return []Row{objectRow(value)}, nil
	case []any:
		rows := make([]Row, 0, len(value))
		for _, item := range value {
			object, ok := item.(map[string]any)
			if !ok {
				return nil, shapeErr
			}
			rows = append(rows, objectRow(object))
		}
		return rows, nil
	default:
		return nil, shapeErr
	}
}

func objectRow(object map[string]any) Row {
	row := make(Row, len(object))
	for key, value := range object {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			row[key] = v
		case json.Number:
			row[key] = v.String()
		case bool:
			row[key] = strconv.FormatBool(v)
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				continue
			}
			row[key] = string(raw)
		}
	}
	return row
}

// ParseXLSX reads the first sheet, taking column names from its first row.
func ParseXLSX(content []byte) ([]Row, error) {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Format: "XLSX", Detail: err.Error(), Err: err}
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: "XLSX", Detail: "No headers found in XLSX file"}
	}
	grid, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: "XLSX", Detail: err.Error(), Err: err}
	}

	var header []string
	if len(grid) > 0 {
		header = make([]string, len(grid[0]))
		for i, cell := range grid[0] {
			header[i] = strings.TrimSpace(cell)
		}
	}
	hasHeader := false
	for _, key := range header {
		if key != "" {
			hasHeader = true
			break
		}
	}
	if !hasHeader {
		return nil, &ParseError{Format: "XLSX", Detail: "No headers found in XLSX file"}
	}

	var rows []Row
	for _, cells := range grid[1:] {
		row := make(Row, len(header))
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			row[header[i]] = value
		}
		if row.empty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r Row) empty() bool {
	for _, value := range r {
		if value != "" {
			return false
		}
	}
	return true
}
