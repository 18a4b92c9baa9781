package model

import "time"

// Observation is a single daily closing price for one company.
type Observation struct {
	Date    time.Time
	Close   float64
	Company string
}

// Table holds raw observations keyed by company identifier, in source order.
type Table map[string][]Observation

// Point is one entry of a prepared series; Close is normalized.
type Point struct {
	Date  time.Time
	Close float64
}

// PreparedSeries is the cleaned, date-ascending series of a single company.
type PreparedSeries struct {
	Company string
	Points  []Point
}

// Len returns the number of points.
func (s PreparedSeries) Len() int { return len(s.Points) }

// Closes returns the close values in order.
func (s PreparedSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Dates returns the dates in order.
func (s PreparedSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}
