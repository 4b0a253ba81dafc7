package metrics

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/common/expfmt"
)

// WriteSnapshot gathers the registry and writes it in Prometheus text
// exposition format. Used for the -metrics-snapshot file persisted at the
// end of a run.
func (c *Collector) WriteSnapshot(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteSnapshotFile writes the snapshot to path, truncating any previous
// snapshot.
func (c *Collector) WriteSnapshotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	if err := c.WriteSnapshot(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot %s: %w", path, err)
	}
	return nil
}

// Value returns the current value of a counter or gauge by metric name.
// Labeled families sum across label sets. Returns false when the family
// does not exist or carries no samples.
func (c *Collector) Value(name string) (float64, bool) {
	families, err := c.registry.Gather()
	if err != nil {
		return 0, false
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		var seen bool
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
				seen = true
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
				seen = true
			}
		}
		return sum, seen
	}
	return 0, false
}
