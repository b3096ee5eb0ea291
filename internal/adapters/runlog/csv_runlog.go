// Package runlog writes each run's sample sequence to a timestamped CSV file
// so a run leaves an on-disk record even without a database configured.
package runlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/plantops/hygrowatch/internal/domain"
	"github.com/plantops/hygrowatch/internal/ports"
)

var header = []string{"seq", "timestamp", "raw", "humidity", "status"}

type CSVLog struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	writer *csv.Writer
}

// New creates <dir>/humidity_<stamp>.csv and writes the header row.
func New(dir string, now time.Time) (*CSVLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("humidity_%s.csv", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVLog{path: path, file: f, writer: w}, nil
}

func (l *CSVLog) Name() string { return "runlog" }

// Path reports where this run's CSV lives.
func (l *CSVLog) Path() string { return l.path }

func (l *CSVLog) WriteBatch(samples []*domain.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range samples {
		rec := []string{
			strconv.Itoa(s.Seq),
			s.Timestamp.Format(time.RFC3339),
			strconv.Itoa(s.Raw),
			strconv.FormatFloat(s.Humidity, 'f', 4, 64),
			string(s.Status),
		}
		if err := l.writer.Write(rec); err != nil {
			return fmt.Errorf("runlog write: %w", err)
		}
	}
	l.writer.Flush()
	return l.writer.Error()
}

func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

var _ ports.Sink = (*CSVLog)(nil)
