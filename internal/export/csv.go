// Package export renders sampled timelines as CSV. Each track becomes one
// column; column names are sanitized and de-duplicated so spreadsheets and
// downstream tooling never see two identical headers.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/GT-karny/GUI-TimelineTool/internal/interp"
	"github.com/GT-karny/GUI-TimelineTool/internal/sampler"
	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// Table is a fully rendered CSV document: a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t *Table) ColumnCount() int { return len(t.Header) }
func (t *Table) RowCount() int    { return len(t.Rows) }

// BuildTable samples every track at rateHz and formats the result. Tracks
// are evaluated concurrently; evaluation is pure, so the only shared write
// is each goroutine's own column slot.
func BuildTable(tl *timeline.Timeline, rateHz float64) *Table {
	ts := sampler.Times(tl.DurationS, rateHz)
	columns := make([][]float64, len(tl.Tracks))

	var g errgroup.Group
	for i, tr := range tl.Tracks {
		i, tr := i, tr
		g.Go(func() error {
			columns[i] = interp.Evaluate(tr, ts)
			return nil
		})
	}
	// Evaluate never fails; the group is used purely for the join.
	_ = g.Wait()

	table := &Table{Header: headerFor(tl)}
	for row, t := range ts {
		record := make([]string, 0, len(tl.Tracks)+1)
		record = append(record, fmt.Sprintf("%.6f", t))
		for _, col := range columns {
			record = append(record, fmt.Sprintf("%.6f", col[row]))
		}
		table.Rows = append(table.Rows, record)
	}
	return table
}

// headerFor builds unique column names: "time_s" plus "track_<name>" per
// track. Non-alphanumeric runes become underscores, blank names fall back
// to the 1-based track position, and collisions get _2, _3, ... suffixes.
func headerFor(tl *timeline.Timeline) []string {
	header := []string{"time_s"}
	used := map[string]bool{}
	for i, tr := range tl.Tracks {
		base := sanitizeName(tr.Name)
		if base == "" {
			base = strconv.Itoa(i + 1)
		}
		col := "track_" + base
		for n := 2; used[col]; n++ {
			col = fmt.Sprintf("track_%s_%d", base, n)
		}
		used[col] = true
		header = append(header, col)
	}
	return header
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	seen := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
			seen = true
		default:
			out = append(out, '_')
		}
	}
	if !seen {
		return ""
	}
	return string(out)
}

// WriteCSV writes a rendered table to path.
func WriteCSV(path string, table *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// CSV samples the timeline and writes it to path in one call.
func CSV(path string, tl *timeline.Timeline, rateHz float64) error {
	return WriteCSV(path, BuildTable(tl, rateHz))
}
