package models

import "time"

// Candle is one raw daily quote row from the currency feed, keyed by
// (Date, Symbol). AdjClose and Volume are carried out of the feed but
// dropped by the transform.
type Candle struct {
	Date     time.Time
	Symbol   string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// Observation is one raw daily station reading from the weather service.
// Station already carries the mapped airport code ("UNKNOWN" when the
// raw station id is not in the catalog). Temp is in Fahrenheit.
type Observation struct {
	Station string
	Name    string
	Date    time.Time
	Temp    float64
}

// Sheet is one year's balance-of-payments spreadsheet after preamble
// stripping: a header row plus data rows, all cells as raw strings.
// The first header cell has already been renamed to "Parameter".
type Sheet struct {
	Columns []string
	Rows    [][]string
}
