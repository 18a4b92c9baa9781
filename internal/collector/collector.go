package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"PriceForecast/internal/logger"
	"PriceForecast/internal/model"
)

var (
	// ErrDataNotFound is returned when the table has no rows for the company.
	ErrDataNotFound = errors.New("data not found")
	// ErrAllValuesMissing is returned when every close for the company is missing.
	ErrAllValuesMissing = errors.New("all values missing")
)

// Collector loads the raw table and prepares one company's observations.
type Collector struct {
	Source  Source
	Company string
	log     *logger.Logger
}

// NewCollector creates a new Collector.
func NewCollector(source Source, company string, log *logger.Logger) *Collector {
	if log == nil {
		log = logger.Nop()
	}
	return &Collector{Source: source, Company: company, log: log}
}

// Collect loads the source and returns the company's cleaned observations.
func (c *Collector) Collect(ctx context.Context) ([]model.Observation, error) {
	table, err := c.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s source: %w", c.Source.Name(), err)
	}
	obs, err := Prepare(table, c.Company)
	if err != nil {
		return nil, err
	}
	c.log.Info("collected observations",
		logger.String("source", c.Source.Name()),
		logger.String("company", c.Company),
		logger.Int("rows", len(table[c.Company])),
		logger.Int("kept", len(obs)),
	)
	return obs, nil
}

// Prepare filters the table to one company, drops rows with a missing close
// and sorts the rest by ascending date. The table is not modified.
func Prepare(table model.Table, company string) ([]model.Observation, error) {
	rows := table[company]
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows for company %q", ErrDataNotFound, company)
	}
	obs := make([]model.Observation, 0, len(rows))
	for _, o := range rows {
		if math.IsNaN(o.Close) || math.IsInf(o.Close, 0) || o.Date.IsZero() {
			continue
		}
		obs = append(obs, o)
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: every close for company %q is missing", ErrAllValuesMissing, company)
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
	return obs, nil
}
