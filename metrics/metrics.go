package metrics

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	registry *prometheus.Registry

	ProcessedBytes      *prometheus.CounterVec
	ProcessedBlocks     *prometheus.CounterVec
	Durations           *prometheus.HistogramVec
	Failures            *prometheus.CounterVec
	KeyUsage            *prometheus.GaugeVec
	KeyUsageWarnings    prometheus.Counter
	KeyUsageRejections  prometheus.Counter
	PaddingUnrecognized prometheus.Counter
	Corruptions         *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		ProcessedBytes: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "cipher_processed_bytes_total",
			Help: "The total amount of input bytes processed by the cipher",
		}, []string{"op"}),
		ProcessedBlocks: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "cipher_blocks_total",
			Help: "The total number of 64-bit blocks produced by the cipher",
		}, []string{"op"}),
		Durations: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name: "cipher_duration_seconds",
			Help: "Duration of cipher operations",
		}, []string{"op"}),
		Failures: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "cipher_failures_total",
			Help: "The total number of failed cipher operations",
		}, []string{"op"}),
		KeyUsage: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "key_usage_bytes",
			Help: "The amount of bytes encrypted under a key",
		}, []string{"key"}),
		KeyUsageWarnings: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "key_usage_warnings_total",
			Help: "The total number of encryptions that passed the key lifetime warning threshold",
		}),
		KeyUsageRejections: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "key_usage_rejections_total",
			Help: "The total number of encryptions refused because the key was exhausted",
		}),
		PaddingUnrecognized: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "padding_unrecognized_total",
			Help: "The total number of decryptions whose padding could not be removed",
		}),
		Corruptions: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "corruptions_total",
			Help: "The total number of ciphertext corruptions applied",
		}, []string{"op"}),
	}

	return c
}

func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// KeyLabel turns a key file path into a stable label value.
func KeyLabel(keyID string) string {
	return slug.Make(keyID)
}

func (c *Collector) ObserveKeyUsage(keyID string, used int) {
	c.KeyUsage.WithLabelValues(KeyLabel(keyID)).Set(float64(used))
}

// WriteTextfile dumps the registry in the text exposition format,
// suitable for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
