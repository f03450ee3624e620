package transport

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultRequestIDHeader carries the per-request trace identifier.
const DefaultRequestIDHeader = "X-Request-ID"

// newRequestID builds a unique trace identifier: a millisecond timestamp
// plus a random suffix, so backend logs sort chronologically while staying
// collision-free.
func newRequestID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()
}
