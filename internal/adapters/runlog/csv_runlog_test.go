package runlog

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/plantops/hygrowatch/internal/domain"
)

func TestCSVLogWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	l, err := New(dir, now)
	if err != nil {
		t.Fatalf("new runlog: %v", err)
	}

	samples := []*domain.Sample{
		{Seq: 1, Timestamp: now, Raw: 18231, Humidity: 0.6907, Status: domain.StatusNormal},
		{Seq: 2, Timestamp: now.Add(time.Second), Raw: 7000, Humidity: 0.2651, Status: domain.StatusLow},
	}
	if err := l.WriteBatch(samples); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(l.Path())
	if err != nil {
		t.Fatalf("open %s: %v", l.Path(), err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "seq" || rows[0][4] != "status" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[2][0] != "2" || rows[2][3] != "0.2651" || rows[2][4] != "Low" {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
}

func TestCSVLogEmptyBatch(t *testing.T) {
	l, err := New(t.TempDir(), time.Now())
	if err != nil {
		t.Fatalf("new runlog: %v", err)
	}
	defer l.Close()

	if err := l.WriteBatch(nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}
