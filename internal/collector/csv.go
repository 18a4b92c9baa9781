package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"PriceForecast/internal/model"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// CSVSource reads a delimited file with at least Date, Close and Company
// columns. Column names are matched case-insensitively; other columns are ignored.
// When Company is set, rows of other companies are skipped before their date
// and close are parsed.
type CSVSource struct {
	Path      string
	Company   string
	Delimiter rune
}

// NewCSVSource creates a source for one company's rows of the file at path.
// An empty company loads every row.
func NewCSVSource(path, company string, delimiter rune) *CSVSource {
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVSource{Path: path, Company: company, Delimiter: delimiter}
}

func (s *CSVSource) Name() string { return "csv" }

// Load reads the file into a table keyed by company.
func (s *CSVSource) Load(ctx context.Context) (model.Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	return s.read(ctx, f)
}

func (s *CSVSource) read(ctx context.Context, r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = s.Delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header, "date", "close", "company")
	if err != nil {
		return nil, err
	}
	iDate, iClose, iCompany := cols[0], cols[1], cols[2]

	table := make(model.Table)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		company := field(rec, iCompany)
		raw := field(rec, iDate)
		if company == "" || raw == "" {
			// dropped with the rest of the incomplete rows
			continue
		}
		if s.Company != "" && company != s.Company {
			continue
		}
		date, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		closePrice, err := parseClose(field(rec, iClose))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		table[company] = append(table[company], model.Observation{
			Date:    date,
			Close:   closePrice,
			Company: company,
		})
	}
	return table, nil
}

func columnIndex(header []string, names ...string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := pos[n]
		if !ok {
			return nil, fmt.Errorf("missing column %q", n)
		}
		out[i] = idx
	}
	return out, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// parseClose returns NaN for an empty or explicitly missing value.
func parseClose(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "na", "n/a":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid close %q", s)
	}
	return v, nil
}
