package sink

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/plantops/hygrowatch/internal/domain"
)

func TestHistorySinkWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewHistorySink(db, "humidity_samples")
	ts := time.Now()

	samples := []*domain.Sample{
		{
			Seq:       1,
			Timestamp: ts,
			Raw:       18231,
			Humidity:  0.6907,
			Status:    domain.StatusNormal,
		},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO humidity_samples (seq, ts, raw, humidity, status) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (ts, seq) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs(1, ts, 18231, 0.6907, "Normal").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.WriteBatch(samples); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHistorySinkWriteBatchNoSamples(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	s := NewHistorySink(db, "humidity_samples")
	if err := s.WriteBatch(nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHistorySinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	s := NewHistorySink(db, "humidity_samples")
	if s.Name() != "postgres" {
		t.Fatalf("expected sink name postgres, got %s", s.Name())
	}
}
