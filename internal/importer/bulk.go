package importer

import (
	"context"
	"fmt"
)

// chunkSafetyMargin shaves a few rows off each chunk so driver-added binds
// never push a statement over the parameter ceiling.
const chunkSafetyMargin = 5

// maxRowsPerChunk returns how many rows fit in one INSERT without exceeding
// maxParams bind parameters. Always at least one row.
func maxRowsPerChunk(maxParams, columnsPerRow int) int {
	if columnsPerRow < 1 {
		columnsPerRow = 1
	}
	rows := maxParams / columnsPerRow
	if rows < 1 {
		rows = 1
	}
	rows -= chunkSafetyMargin
	if rows < 1 {
		rows = 1
	}
	return rows
}

// chunkedInsert splits rows across as many INSERT statements as the bind
// parameter ceiling requires and counts each statement issued.
func (im *Importer) chunkedInsert(ctx context.Context, store Store, table string, cols []string, rows [][]any, stats *Stats) error {
	if len(rows) == 0 {
		return nil
	}
	size := maxRowsPerChunk(im.maxBindParams, len(cols))
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		if err := store.InsertBatch(ctx, table, cols, rows[start:end]); err != nil {
			return fmt.Errorf("bulk insert into %s: %w", table, err)
		}
		stats.InsertChunksUsed++
	}
	im.logger.Debug("bulk insert complete",
		"table", table,
		"rows", len(rows),
		"columns", len(cols),
		"chunk_size", size)
	return nil
}
