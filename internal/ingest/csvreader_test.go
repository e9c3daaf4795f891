package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mansurdincer/loomsched/internal/domain"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const header = "siparisId,siparisDetayId,hamMiktar,hamTermin,atkiSikligi,tipAd,varyantKodu,UlakKodu\n"

func TestCSVReader_ReadOrders(t *testing.T) {
	body := header +
		"O1,L1,1000,2026-03-15T00:00:00Z,15,bez,VAR1,U1\n" +
		"O2,L1,500,2026-03-20T00:00:00Z,0,bez,nan,0\n" +
		"O3,L1,800,2026-01-01T00:00:00Z,10,bez,VAR2,U2\n"
	path := writeCSV(t, body)

	r := NewCSVReader()
	orders, err := r.ReadOrders(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	// O3's due date (January) is outside the two most recent months
	// relative to the file's max due date (March), so it is filtered out.
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].VariantCode == nil || *orders[0].VariantCode != "VAR1" {
		t.Fatalf("variant code not parsed: %+v", orders[0])
	}
	if orders[1].VariantCode != nil {
		t.Fatalf("blank variant token should normalize to nil, got %v", *orders[1].VariantCode)
	}
	if orders[1].UlakCode != nil {
		t.Fatalf("blank ulak token should normalize to nil, got %v", *orders[1].UlakCode)
	}
}

func TestCSVReader_MissingColumn(t *testing.T) {
	body := "siparisId,hamMiktar\nO1,100\n"
	path := writeCSV(t, body)

	r := NewCSVReader()
	_, err := r.ReadOrders(context.Background(), path)
	if !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("got %v, want ErrMissingColumn", err)
	}
}

func TestCSVReader_BadTimestamp(t *testing.T) {
	body := header + "O1,L1,1000,not-a-date,15,bez,VAR1,U1\n"
	path := writeCSV(t, body)

	r := NewCSVReader()
	_, err := r.ReadOrders(context.Background(), path)
	if !errors.Is(err, domain.ErrBadTimestamp) {
		t.Fatalf("got %v, want ErrBadTimestamp", err)
	}
}

func TestCSVReader_NoRowsReturnsEmptyNotError(t *testing.T) {
	path := writeCSV(t, header)

	r := NewCSVReader()
	orders, err := r.ReadOrders(context.Background(), path)
	if err != nil {
		t.Fatalf("got error %v, want nil", err)
	}
	if len(orders) != 0 {
		t.Fatalf("got %d orders, want 0", len(orders))
	}
}
