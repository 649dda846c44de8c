package etl

import (
	"context"
	"fmt"
	"time"
)

// ── Export ─────────────────────────────────────────────────
// Writes every record set of an asset to a destination, one table each.

// ExportResult is the outcome of exporting one asset.
type ExportResult struct {
	Asset       string        `json:"asset"`
	Tables      int           `json:"tables"`
	RowsWritten int           `json:"rowsWritten"`
	Duration    time.Duration `json:"duration"`
}

// Export writes sets to dest under names derived from asset. It stops at
// the first failing table; the result counts what was written before it.
func (e *Engine) Export(ctx context.Context, dest Destination, asset string, sets []RecordSet, mode SyncMode) (*ExportResult, error) {
	start := time.Now()
	result := &ExportResult{Asset: asset}

	for _, rs := range sets {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		target := TargetName(asset, rs.RecordPath)
		written, err := dest.Write(ctx, target, rs.Data.Schema(), rs.Data, mode)
		result.RowsWritten += written
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("write %s: %w", target, err)
		}
		result.Tables++
		e.Logger.Debug("etl: export table", "asset", asset, "target", target, "rows", written)
	}

	result.Duration = time.Since(start)
	return result, nil
}
