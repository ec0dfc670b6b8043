package knowledge

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/acuellar/atiende/internal/domain"
)

// Table is the in-memory knowledge table loaded from an uploaded spreadsheet.
// It is read-only after load and replaced wholesale on re-upload.
type Table struct {
	Headers []string
	Rows    []domain.KnowledgeRow

	// Fingerprint identifies the uploaded content together with the selected
	// columns. Embedding activation is cached on it.
	Fingerprint string

	KeyCol   int
	ValueCol int
}

// LoadTable parses an uploaded spreadsheet into a knowledge table. The first
// record is taken as the header row. keyCol and valueCol select which columns
// hold the question and the answer (first two by default); every remaining
// column lands in the row's attributes keyed by header. Rows with an empty
// key or value are dropped.
func LoadTable(filename string, data []byte, keyCol, valueCol int) (*Table, error) {
	records, err := parseRecords(filename, data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("spreadsheet %s is empty", filename)
	}

	headers := records[0]
	if keyCol < 0 || keyCol >= len(headers) {
		return nil, fmt.Errorf("key column %d out of range (%d columns)", keyCol, len(headers))
	}
	if valueCol < 0 || valueCol >= len(headers) {
		return nil, fmt.Errorf("value column %d out of range (%d columns)", valueCol, len(headers))
	}

	table := &Table{
		Headers:     headers,
		Fingerprint: fingerprint(data, keyCol, valueCol),
		KeyCol:      keyCol,
		ValueCol:    valueCol,
	}

	for _, record := range records[1:] {
		if keyCol >= len(record) || valueCol >= len(record) {
			continue
		}
		key := strings.TrimSpace(record[keyCol])
		value := strings.TrimSpace(record[valueCol])
		if key == "" || value == "" {
			continue
		}

		row := domain.KnowledgeRow{Key: key, Value: value}
		for i, cell := range record {
			if i == keyCol || i == valueCol || i >= len(headers) {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if row.Attributes == nil {
				row.Attributes = make(map[string]string)
			}
			row.Attributes[headers[i]] = cell
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// LoadProducts parses the optional product spreadsheet: first column is the
// product name, the remaining columns are named attributes in header order.
func LoadProducts(filename string, data []byte) ([]domain.Product, error) {
	records, err := parseRecords(filename, data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("spreadsheet %s is empty", filename)
	}

	headers := records[0]
	var products []domain.Product
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}

		product := domain.Product{Name: name, Attributes: make(map[string]string)}
		for i := 1; i < len(record) && i < len(headers); i++ {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			product.Headers = append(product.Headers, headers[i])
			product.Attributes[headers[i]] = cell
		}
		products = append(products, product)
	}

	return products, nil
}

// MatchProduct finds the first product whose name contains the lowercased
// query or vice versa. Table order wins on ties.
func MatchProduct(products []domain.Product, loweredQuery string) (domain.Product, bool) {
	if loweredQuery == "" {
		return domain.Product{}, false
	}
	for _, p := range products {
		name := strings.ToLower(p.Name)
		if strings.Contains(name, loweredQuery) || strings.Contains(loweredQuery, name) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// FormatProduct renders a matched product as a bulleted key/value list.
func FormatProduct(p domain.Product) string {
	var b strings.Builder
	b.WriteString(p.Name)
	for _, h := range p.Headers {
		b.WriteString("\n• ")
		b.WriteString(h)
		b.WriteString(": ")
		b.WriteString(p.Attributes[h])
	}
	return b.String()
}

func parseRecords(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		return records, nil
	case ".xlsx", ".xls":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filename)
		}
		records, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet: %w", err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format: %s", filepath.Ext(filename))
	}
}

func fingerprint(data []byte, keyCol, valueCol int) string {
	h := sha256.New()
	h.Write(data)
	fmt.Fprintf(h, ":%d:%d", keyCol, valueCol)
	return hex.EncodeToString(h.Sum(nil))
}
