package inventory

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// columnAliases maps accepted CSV header spellings onto canonical columns.
// Matching is case-insensitive and ignores surrounding whitespace.
var columnAliases = map[string]string{
	"product_name": "product_name",
	"product":      "product_name",
	"name":         "product_name",
	"item":         "product_name",
	"quantity":     "quantity",
	"qty":          "quantity",
	"stock":        "quantity",
	"unit_price":   "unit_price",
	"price":        "unit_price",
	"cost":         "unit_price",
	"category":     "category",
	"type":         "category",
	"description":  "description",
	"desc":         "description",
	"details":      "description",
}

// exportColumns is the canonical column order for exported files.
var exportColumns = []string{"product_name", "quantity", "unit_price", "category", "description"}

// ParsedCSV is the outcome of reading an upload. Rows that failed
// validation are reported individually instead of aborting the file.
type ParsedCSV struct {
	Items     []models.InventoryItem
	RowErrors []RowError
	Header    []string
	Samples   [][]string
}

// maxSampleRows bounds how many raw rows are kept for schema analysis.
const maxSampleRows = 5

// ParseCSV reads an inventory upload. The first record is treated as a
// header and mapped through the known column aliases. A file whose header
// carries no product name column is rejected outright.
func ParseCSV(r io.Reader) (*ParsedCSV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make([]string, len(header))
	hasProductName := false
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		canonical, ok := columnAliases[key]
		if !ok {
			columns[i] = ""
			continue
		}
		columns[i] = canonical
		if canonical == "product_name" {
			hasProductName = true
		}
	}
	if !hasProductName {
		return nil, fmt.Errorf("no product name column found, accepted headers are product_name, product, name or item")
	}

	parsed := &ParsedCSV{Header: header}
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			parsed.RowErrors = append(parsed.RowErrors, RowError{Row: rowNum, Reason: fmt.Sprintf("malformed row: %v", err)})
			continue
		}
		if len(parsed.Samples) < maxSampleRows {
			parsed.Samples = append(parsed.Samples, record)
		}

		item, rowErr := buildItem(columns, record, rowNum)
		if rowErr != nil {
			parsed.RowErrors = append(parsed.RowErrors, *rowErr)
			continue
		}
		parsed.Items = append(parsed.Items, *item)
	}

	return parsed, nil
}

func buildItem(columns []string, record []string, rowNum int) (*models.InventoryItem, *RowError) {
	item := &models.InventoryItem{}
	for i, column := range columns {
		if column == "" || i >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[i])
		switch column {
		case "product_name":
			item.ProductName = value
		case "quantity":
			if value == "" {
				continue
			}
			qty, err := strconv.Atoi(value)
			if err != nil {
				return nil, &RowError{Row: rowNum, Reason: fmt.Sprintf("invalid quantity %q", value)}
			}
			if qty < 0 {
				return nil, &RowError{Row: rowNum, Reason: fmt.Sprintf("negative quantity %d", qty)}
			}
			item.Quantity = qty
		case "unit_price":
			if value == "" {
				continue
			}
			price, err := decimal.NewFromString(strings.TrimPrefix(value, "$"))
			if err != nil {
				return nil, &RowError{Row: rowNum, Reason: fmt.Sprintf("invalid unit price %q", value)}
			}
			if price.IsNegative() {
				return nil, &RowError{Row: rowNum, Reason: fmt.Sprintf("negative unit price %s", price)}
			}
			item.UnitPrice = price
		case "category":
			item.Category = value
		case "description":
			item.Description = value
		}
	}

	if item.ProductName == "" {
		return nil, &RowError{Row: rowNum, Reason: "product name is empty"}
	}
	return item, nil
}

// WriteCSV renders items into the canonical export layout. Row ids are
// deliberately omitted so an export can be re-imported as-is.
func WriteCSV(items []models.InventoryItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for _, item := range items {
		record := []string{
			item.ProductName,
			strconv.Itoa(item.Quantity),
			item.UnitPrice.StringFixed(2),
			item.Category,
			item.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("writing row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}
