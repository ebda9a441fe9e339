// Package balance pulls quarterly balance-of-payments spreadsheets from
// the central-bank archive and reshapes their wide, non-tidy layout into
// the normalized long-format table.
//
// The archive publishes one workbook per year under dynamically listed
// names (57-bop_<YY>.xlsx), with 1992 and 1993 sharing a combined
// 57-bop_92-93.xlsx. Years with no published workbook are an expected
// gap and are skipped silently; a download or parse failure for a
// published workbook is a hard error.
package balance

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/macropulse/internal/domain/errs"
	"github.com/guttosm/macropulse/internal/domain/models"
	"github.com/guttosm/macropulse/internal/fetch"
	"github.com/guttosm/macropulse/internal/logger"
)

const (
	// preambleRows is the fixed metadata block at the top of every
	// published workbook, above the header row.
	preambleRows = 3

	defaultParallel = 4
)

var workbookPattern = regexp.MustCompile(`57-bop_.*\.xlsx$`)

// Adapter fetches and parses one workbook per requested year.
type Adapter struct {
	client    *fetch.Client
	baseURL   string
	startYear int
	endYear   int
	parallel  int
}

// New builds the adapter for the inclusive year range. parallel bounds
// the concurrent workbook downloads; values < 1 fall back to the
// default.
func New(client *fetch.Client, baseURL string, startYear, endYear, parallel int) *Adapter {
	if parallel < 1 {
		parallel = defaultParallel
	}
	return &Adapter{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/") + "/",
		startYear: startYear,
		endYear:   endYear,
		parallel:  parallel,
	}
}

func (a *Adapter) Name() string { return "balance" }

// Extract scans the archive index for published workbook names, then
// downloads and parses the workbook of every requested year that has
// one. Absent years are logged and skipped; they are not errors.
func (a *Adapter) Extract(ctx context.Context) (map[int]models.Sheet, error) {
	published, err := a.listPublished(ctx)
	if err != nil {
		return nil, err
	}

	type target struct {
		year     int
		filename string
	}
	var targets []target
	var skipped []int
	for year := a.startYear; year <= a.endYear; year++ {
		name := filenameForYear(year)
		if _, ok := published[name]; !ok {
			skipped = append(skipped, year)
			continue
		}
		targets = append(targets, target{year: year, filename: name})
	}
	if len(skipped) > 0 {
		logger.L().Info().Ints("years", skipped).Msg("no workbook published, skipping")
	}

	frames := make(map[int]models.Sheet, len(targets))
	sheets := make([]models.Sheet, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, a.parallel)
	for i, tg := range targets {
		i, tg := i, tg
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			body, err := a.client.Get(gctx, a.baseURL+tg.filename)
			if err != nil {
				return fmt.Errorf("year %d (%s): %w", tg.year, tg.filename, err)
			}
			sheet, err := parseWorkbook(body)
			if err != nil {
				return fmt.Errorf("year %d (%s): %w", tg.year, tg.filename, err)
			}
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, tg := range targets {
		frames[tg.year] = sheets[i]
	}
	return frames, nil
}

// listPublished fetches the archive index page and collects the
// workbook filenames its anchors point at.
func (a *Adapter) listPublished(ctx context.Context) (map[string]struct{}, error) {
	body, err := a.client.Get(ctx, a.baseURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errs.Schema(fmt.Sprintf("archive index: %v", err))
	}

	published := make(map[string]struct{})
	doc.Find("a").Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		if m := workbookPattern.FindString(href); m != "" {
			published[m] = struct{}{}
		}
	})
	return published, nil
}

// filenameForYear resolves the workbook name for a year. 1992 and 1993
// share the combined two-year file.
func filenameForYear(year int) string {
	if year == 1992 || year == 1993 {
		return "57-bop_92-93.xlsx"
	}
	return fmt.Sprintf("57-bop_%02d.xlsx", year%100)
}

// parseWorkbook decodes the first sheet of an xlsx workbook, strips the
// fixed preamble, and renames the unlabeled first column to "Parameter".
// A workbook too short to hold a header yields an empty sheet.
func parseWorkbook(data []byte) (models.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return models.Sheet{}, errs.Schema(fmt.Sprintf("open workbook: %v", err))
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if name == "" {
		return models.Sheet{}, errs.Schema("workbook has no sheets")
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return models.Sheet{}, errs.Schema(fmt.Sprintf("read sheet %q: %v", name, err))
	}
	if len(rows) <= preambleRows {
		return models.Sheet{}, nil
	}

	header := rows[preambleRows]
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	if len(columns) > 0 && columns[0] == "" {
		columns[0] = "Parameter"
	}

	sheet := models.Sheet{Columns: columns}
	for _, row := range rows[preambleRows+1:] {
		// xlsx readers drop trailing empty cells; pad to the header width.
		padded := make([]string, len(columns))
		for i := 0; i < len(columns) && i < len(row); i++ {
			padded[i] = strings.TrimSpace(row[i])
		}
		sheet.Rows = append(sheet.Rows, padded)
	}
	return sheet, nil
}

// years returns the frame keys in ascending order.
func years(frames map[int]models.Sheet) []int {
	out := make([]int, 0, len(frames))
	for y := range frames {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
