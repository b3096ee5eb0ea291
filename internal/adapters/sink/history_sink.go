package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

// HistorySink persists run samples to Postgres/Timescale for later analysis.
type HistorySink struct {
	db        *sql.DB
	tableName string
}

func NewHistorySink(db *sql.DB, table string) *HistorySink {
	return &HistorySink{db: db, tableName: table}
}

func (h *HistorySink) Name() string { return "postgres" }

func (h *HistorySink) WriteBatch(samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	// Idempotent via the (ts, seq) unique key so a re-run over the same
	// window never duplicates rows.
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(h.tableName)
	b.WriteString(" (seq, ts, raw, humidity, status) VALUES ")

	args := make([]any, 0, len(samples)*5)
	for i, s := range samples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5))
		args = append(args,
			s.Seq,
			s.Timestamp,
			s.Raw,
			s.Humidity,
			string(s.Status),
		)
	}

	b.WriteString(" ON CONFLICT (ts, seq) DO NOTHING")

	_, err := h.db.Exec(b.String(), args...)
	return err
}

var _ ports.Sink = (*HistorySink)(nil)
