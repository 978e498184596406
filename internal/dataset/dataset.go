// Package dataset loads expected products from a delimited data file with a
// header row followed by category,name,quantity,price,color rows.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/phuslu/log"

	"github.com/themizzi/cartverify/internal/models"
)

// Columns in a data row
const (
	colCategory = iota
	colName
	colQuantity
	colPrice
	colColor
	columnCount
)

// LoadError is a data file that cannot be turned into products
type LoadError struct {
	Source string
	// Line is the 1-based line in Source, or 0 when the file could not be read
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("load %s line %d: %v", e.Source, e.Line, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads products from the file at path
func Load(path string) ([]models.ExpectedProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse reads products from r. source names the input in errors. Blank lines
// and rows with fewer than five fields are skipped.
func Parse(r io.Reader, source string) ([]models.ExpectedProduct, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var products []models.ExpectedProduct
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &LoadError{Source: source, Line: line, Err: err}
		}
		line, _ := reader.FieldPos(0)

		if header {
			header = false
			continue
		}
		if len(record) < columnCount {
			log.Warn().Str("source", source).Int("line", line).Int("fields", len(record)).Msg("skipping short data row")
			continue
		}

		p, err := parseRow(record)
		if err != nil {
			return nil, &LoadError{Source: source, Line: line, Err: err}
		}
		products = append(products, p)
	}

	return products, nil
}

func parseRow(record []string) (models.ExpectedProduct, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	p := models.ExpectedProduct{
		Category: record[colCategory],
		Name:     record[colName],
		Color:    record[colColor],
	}

	qty, err := strconv.Atoi(record[colQuantity])
	if err != nil {
		return p, fmt.Errorf("invalid quantity %q: %w", record[colQuantity], err)
	}
	p.Quantity = qty

	price, err := strconv.ParseFloat(record[colPrice], 64)
	if err != nil {
		return p, fmt.Errorf("invalid price %q: %w", record[colPrice], err)
	}
	p.Price = price

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
