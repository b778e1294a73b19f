package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/florex-io/florex/pkg/core"
	"github.com/florex-io/florex/pkg/logging"
)

// Source streams order intents from a CSV input, one record per line:
// clientOrderId,instrument,side,quantity,price (side 1=Buy, 2=Sell).
// Field values are not interpreted here; validation is the engine's job.
type Source struct {
	reader *csv.Reader
	closer io.Closer
}

// Open opens the order intent file. A missing or unreadable file is a
// startup failure, reported before any intent is submitted.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening order input: %w", err)
	}

	src := FromReader(f)
	src.closer = f
	return src, nil
}

// FromReader creates a Source reading from r.
func FromReader(r io.Reader) *Source {
	reader := csv.NewReader(r)
	// Short or long records become intents with missing fields and are
	// rejected downstream rather than aborting the run.
	reader.FieldsPerRecord = -1
	return &Source{reader: reader}
}

// Next returns the next order intent, or io.EOF when the input is exhausted.
func (s *Source) Next() (core.OrderIntent, error) {
	record, err := s.reader.Read()
	if err != nil {
		return core.OrderIntent{}, err
	}

	return core.OrderIntent{
		ClientOrderID: field(record, 0),
		Instrument:    field(record, 1),
		Side:          field(record, 2),
		Quantity:      field(record, 3),
		Price:         field(record, 4),
	}, nil
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// Stats summarizes one ingestion run.
type Stats struct {
	Intents  int
	Accepted int
	Rejected int
	Trades   int
}

// ProcessAll submits every intent from the source to the engine, in arrival
// order, to completion. A malformed CSV line is logged and skipped; only a
// read failure of the underlying input aborts the run.
func ProcessAll(ctx context.Context, src *Source, engine *core.MatchingEngine) (Stats, error) {
	logger := logging.FromContext(ctx)

	var stats Stats
	for {
		intent, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn().Err(err).Msg("Skipping unparsable input line")
				continue
			}
			return stats, fmt.Errorf("reading order input: %w", err)
		}

		stats.Intents++
		result, err := engine.Submit(ctx, intent)
		if err != nil {
			return stats, err
		}

		if result.Accepted {
			stats.Accepted++
			stats.Trades += result.Trades
		} else {
			stats.Rejected++
		}
	}
}
