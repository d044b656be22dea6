// Package influx writes acquired samples to an InfluxDB v2 bucket.
package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// DefaultMeasurement is used when Config.Measurement is empty.
const DefaultMeasurement = "shiftreg"

// Config holds the connection and naming details for a Writer.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
	Device      string
}

// Writer writes one point per sample. Writes are blocking so a failure is
// reported to the caller for the acquisition that produced it.
type Writer struct {
	client influxdb2.Client
	api    api.WriteAPIBlocking
	cfg    Config
}

// NewWriter creates a Writer. No connection is made until the first write.
func NewWriter(cfg Config) *Writer {
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultMeasurement
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Writer{
		client: client,
		api:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		cfg:    cfg,
	}
}

// Point builds the point for one sample: tag device, unsigned field value
// and one boolean field per input (in1 is bit 0). A 64-bit chain uses the
// full uint64 range, so value is never written as a signed integer.
func Point(measurement, device string, value uint64, bits int, at time.Time) *write.Point {
	fields := make(map[string]interface{}, bits+1)
	fields["value"] = value
	for i := 0; i < bits; i++ {
		fields[fmt.Sprintf("in%d", i+1)] = value>>uint(i)&1 == 1
	}
	tags := map[string]string{}
	if device != "" {
		tags["device"] = device
	}
	return influxdb2.NewPoint(measurement, tags, fields, at)
}

// WriteSample writes a single sample.
func (w *Writer) WriteSample(ctx context.Context, value uint64, bits int, at time.Time) error {
	p := Point(w.cfg.Measurement, w.cfg.Device, value, bits, at)
	if err := w.api.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (w *Writer) Close() {
	w.client.Close()
}
