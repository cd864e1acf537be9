// v0
// internal/telemetry/export.go
package telemetry

import "context"

// Exporter returns full historical series without any fallback or
// synthesis.
type Exporter struct {
	store Store
}

func NewExporter(store Store) *Exporter {
	return &Exporter{store: store}
}

// ExportSeries returns the stored rows of ch, newest first. An empty
// table yields an empty, non-nil slice.
func (e *Exporter) ExportSeries(ctx context.Context, ch Channel) ([]Record, error) {
	rows, err := e.store.Series(ctx, ch)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Record{}
	}
	return rows, nil
}
