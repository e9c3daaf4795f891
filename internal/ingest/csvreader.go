package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mansurdincer/loomsched/internal/domain"
	"github.com/mansurdincer/loomsched/internal/infra/observability"
	"github.com/mansurdincer/loomsched/internal/setup"
)

// requiredColumns are the CSV headers the reader must find (§6, §9
// "input schema"). Column order in the file is irrelevant; names are
// matched case-insensitively after trimming.
var requiredColumns = []string{
	"siparisId", "siparisDetayId", "hamMiktar", "hamTermin",
	"atkiSikligi", "tipAd", "varyantKodu", "UlakKodu",
}

// CSVReader implements domain.OrderReader against the loom's flat-file
// export format.
type CSVReader struct {
	// TimeLayout parses the hamTermin column. Defaults to RFC3339 if empty.
	TimeLayout string
}

// NewCSVReader returns a CSVReader with the default timestamp layout.
func NewCSVReader() *CSVReader {
	return &CSVReader{TimeLayout: time.RFC3339}
}

// ReadOrders reads and filters orders from path (§4.1, §9 "recency
// filter"): only rows whose hamTermin falls within the two most recent
// calendar months relative to the maximum hamTermin in the file are kept,
// matching the source export's intent of scheduling only current work.
func (r *CSVReader) ReadOrders(ctx context.Context, path string) ([]domain.RawOrder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	layout := r.TimeLayout
	if layout == "" {
		layout = time.RFC3339
	}

	var orders []domain.RawOrder
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		order, err := parseRow(row, idx, layout)
		if err != nil {
			return nil, fmt.Errorf("parse row: %w", err)
		}
		orders = append(orders, order)
	}
	return filterRecentMonths(orders), nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := idx[strings.ToLower(want)]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, want)
		}
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int, layout string) (domain.RawOrder, error) {
	get := func(col string) string {
		i, ok := idx[strings.ToLower(col)]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(get("hamMiktar")), 64)
	if err != nil {
		return domain.RawOrder{}, fmt.Errorf("hamMiktar: %w", err)
	}
	density, _ := strconv.ParseFloat(strings.TrimSpace(get("atkiSikligi")), 64)

	due, err := time.Parse(layout, strings.TrimSpace(get("hamTermin")))
	if err != nil {
		return domain.RawOrder{}, fmt.Errorf("%w: %v", domain.ErrBadTimestamp, err)
	}

	return domain.RawOrder{
		OrderID:        strings.TrimSpace(get("siparisId")),
		LineID:         strings.TrimSpace(get("siparisDetayId")),
		QuantityMeters: qty,
		DueAt:          due,
		PickDensity:    density,
		TypeName:       strings.TrimSpace(get("tipAd")),
		VariantCode:    setup.NormalizeCode(get("varyantKodu")),
		UlakCode:       setup.NormalizeCode(get("UlakKodu")),
	}, nil
}

// filterRecentMonths keeps only orders whose due date falls in the same
// calendar month as the file's latest due date, or the month before it.
func filterRecentMonths(orders []domain.RawOrder) []domain.RawOrder {
	if len(orders) == 0 {
		return orders
	}
	maxDue := orders[0].DueAt
	for _, o := range orders[1:] {
		if o.DueAt.After(maxDue) {
			maxDue = o.DueAt
		}
	}
	latestMonth := monthKey(maxDue)
	prevMonth := latestMonth - 1

	kept := make([]domain.RawOrder, 0, len(orders))
	for _, o := range orders {
		mk := monthKey(o.DueAt)
		if mk == latestMonth || mk == prevMonth {
			kept = append(kept, o)
		}
	}
	observability.OrdersFilteredTotal.Add(float64(len(orders) - len(kept)))
	return kept
}

func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month())
}
