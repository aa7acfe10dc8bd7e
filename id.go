package lectern

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChunkID builds the deterministic ID for the index-th chunk of a source
// file: "{stem}_{file_type}_c{index}". Re-ingesting the same document with
// the same settings reproduces identical IDs, which is what makes upserts
// idempotent.
func ChunkID(source string, ft FileType, index int) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return fmt.Sprintf("%s_%s_c%d", stem, ft, index)
}

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
// Used for request-scoped identifiers, never for chunks.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix returns current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
