// Package weather pulls daily station temperatures from the
// global-summary-of-the-day service and normalizes them into the tidy
// temperature table in Celsius, optionally bucketed by ISO week.
package weather

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/macropulse/internal/aggregate"
	"github.com/guttosm/macropulse/internal/domain/errs"
	"github.com/guttosm/macropulse/internal/domain/models"
	"github.com/guttosm/macropulse/internal/fetch"
)

const (
	dateLayout = "2006-01-02"

	// unknownStation is the sentinel for station ids missing from the
	// catalog. Such readings are kept, never dropped.
	unknownStation = "UNKNOWN"
)

var weeklySpec = aggregate.Spec{
	Columns: []string{"Temp"},
	Funcs:   map[string]aggregate.Func{"Temp": aggregate.Mean},
}

// Adapter fetches observations for a curated station catalog mapping
// raw station ids to airport codes.
type Adapter struct {
	client   *fetch.Client
	baseURL  string
	stations map[string]string
	rng      models.DateRange
	byDay    bool
}

// New builds the adapter. stations maps raw station ids to airport
// codes; the catalog is injected so tests can substitute fixtures.
func New(client *fetch.Client, baseURL string, stations map[string]string, rng models.DateRange, byDay bool) *Adapter {
	return &Adapter{
		client:   client,
		baseURL:  baseURL,
		stations: stations,
		rng:      rng,
		byDay:    byDay,
	}
}

func (a *Adapter) Name() string { return "weather" }

// Extract issues one CSV request covering every cataloged station and
// decodes the rows it needs: station, name, date, temperature.
func (a *Adapter) Extract(ctx context.Context) ([]models.Observation, error) {
	ids := make([]string, 0, len(a.stations))
	for id := range a.stations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	q := url.Values{}
	q.Set("dataset", "global-summary-of-the-day")
	q.Set("dataTypes", "TEMP")
	q.Set("stations", strings.Join(ids, ","))
	q.Set("options", "includeStationName:true")
	q.Set("startDate", a.rng.Start.Format(dateLayout))
	q.Set("endDate", a.rng.End.Format(dateLayout))

	body, err := a.client.Get(ctx, a.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return a.parseCSV(body)
}

// parseCSV decodes the service payload. Columns are located by header
// name rather than position; a payload missing any required column is a
// schema violation.
func (a *Adapter) parseCSV(body []byte) ([]models.Observation, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Schema(fmt.Sprintf("observation header: %v", err))
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	maxIdx := 0
	for _, required := range []string{"STATION", "DATE", "NAME", "TEMP"} {
		i, ok := idx[required]
		if !ok {
			return nil, errs.Schema(fmt.Sprintf("observation payload missing column %s", required))
		}
		if i > maxIdx {
			maxIdx = i
		}
	}

	var out []models.Observation
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Schema(fmt.Sprintf("observation line %d: %v", line+1, err))
		}
		line++

		if len(rec) <= maxIdx {
			return nil, errs.Schema(fmt.Sprintf("observation line %d: %d columns, need %d", line, len(rec), maxIdx+1))
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(rec[idx["DATE"]]))
		if err != nil {
			return nil, errs.Schema(fmt.Sprintf("observation line %d: invalid DATE: %v", line, err))
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(rec[idx["TEMP"]]), 64)
		if err != nil {
			return nil, errs.Schema(fmt.Sprintf("observation line %d: invalid TEMP: %v", line, err))
		}

		station := unknownStation
		if code, ok := a.stations[strings.TrimSpace(rec[idx["STATION"]])]; ok {
			station = code
		}
		out = append(out, models.Observation{
			Station: station,
			Name:    strings.TrimSpace(rec[idx["NAME"]]),
			Date:    date,
			Temp:    temp,
		})
	}
	return out, nil
}

// Transform converts temperatures to Celsius and emits either the daily
// table or the weekly mean aggregation. Empty input yields an empty
// table that still carries the full column set.
func (a *Adapter) Transform(raw []models.Observation) (*models.Table, error) {
	if a.byDay {
		return a.daily(raw), nil
	}
	return a.weekly(raw), nil
}

func (a *Adapter) daily(raw []models.Observation) *models.Table {
	t := models.NewTable("Station", "Name", "Date", "Temp")
	for _, o := range raw {
		t.Append(o.Station, o.Name, o.Date, celsius(o.Temp))
	}
	return t
}

func (a *Adapter) weekly(raw []models.Observation) *models.Table {
	t := models.NewTable("Station", "Name", "Start_Week", "End_Week", "Temp")
	if len(raw) == 0 {
		return t
	}

	rows := make([]aggregate.Row, 0, len(raw))
	for _, o := range raw {
		rows = append(rows, aggregate.Row{
			Key:    []string{o.Station, o.Name},
			Date:   o.Date,
			Values: map[string]float64{"Temp": celsius(o.Temp)},
		})
	}
	for _, b := range aggregate.Weekly(rows, weeklySpec) {
		t.Append(b.Key[0], b.Key[1], b.Start, b.End, b.Values["Temp"])
	}
	return t
}

func celsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
