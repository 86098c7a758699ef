package importer

import "testing"

func TestMaxRowsPerChunk(t *testing.T) {
	tests := []struct {
		name      string
		maxParams int
		cols      int
		want      int
	}{
		{"typical contact shape", 2100, 45, 41},       // floor(2100/45)=46, minus margin
		{"small shape", 2100, 6, 345},                 // floor(2100/6)=350, minus margin
		{"wide shape still at least one", 2100, 3000, 1},
		{"margin never pushes below one", 12, 6, 1},
		{"zero columns guarded", 2100, 0, 2095},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maxRowsPerChunk(tt.maxParams, tt.cols); got != tt.want {
				t.Fatalf("maxRowsPerChunk(%d, %d) = %d, want %d", tt.maxParams, tt.cols, got, tt.want)
			}
		})
	}
}

func TestChunkInvariant(t *testing.T) {
	// No chunk may ever carry more binds than the ceiling allows.
	for _, cols := range []int{1, 2, 7, 45, 100, 2100, 5000} {
		rows := maxRowsPerChunk(2100, cols)
		if rows > 1 && rows*cols > 2100 {
			t.Errorf("cols=%d rows=%d exceeds ceiling", cols, rows)
		}
		if rows < 1 {
			t.Errorf("cols=%d rows=%d below one", cols, rows)
		}
	}
}
