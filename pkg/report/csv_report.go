package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/florex-io/florex/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

// CSVReporter implements core.ExecutionSink by appending one CSV row per
// execution event: orderId,clientOrderId,instrument,side,status,quantity,price.
// Each row is flushed as it is written so a crash loses at most the event in
// flight.
type CSVReporter struct {
	writer *csv.Writer
	closer io.Closer
}

// Create creates (truncating) the execution report file at path.
func Create(path string) (*CSVReporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating execution report: %w", err)
	}

	r := NewCSVReporter(f)
	r.closer = f
	return r, nil
}

// NewCSVReporter creates a reporter writing to w.
func NewCSVReporter(w io.Writer) *CSVReporter {
	return &CSVReporter{writer: csv.NewWriter(w)}
}

// Publish writes one event row.
func (r *CSVReporter) Publish(ctx context.Context, event core.ExecutionEvent) error {
	row := []string{
		event.OrderID,
		event.ClientOrderID,
		event.Instrument,
		strconv.Itoa(event.SideCode),
		string(event.Status),
		strconv.FormatInt(event.Quantity, 10),
		FormatDecimal(event.Price),
	}

	if err := r.writer.Write(row); err != nil {
		return fmt.Errorf("writing report row: %w", err)
	}
	r.writer.Flush()
	return r.writer.Error()
}

// Close flushes pending rows and closes the underlying file, if any.
func (r *CSVReporter) Close() error {
	r.writer.Flush()
	if err := r.writer.Error(); err != nil {
		return err
	}
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// FormatDecimal renders a price with exactly three decimal places, the
// engine's price resolution.
func FormatDecimal(d fpdecimal.Decimal) string {
	val := d.String()
	parts := strings.Split(val, ".")
	if len(parts) == 1 {
		return val + ".000"
	}
	if len(parts[1]) < 3 {
		return val + strings.Repeat("0", 3-len(parts[1]))
	}
	return val
}

// Ensure CSVReporter implements core.ExecutionSink
var _ core.ExecutionSink = (*CSVReporter)(nil)
