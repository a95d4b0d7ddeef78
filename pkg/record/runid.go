package record

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// runIDPrefix distinguishes this system's run ids from other artifact ids in
// shared storage.
const runIDPrefix = "gh"

const runIDTimeLayout = "20060102T150405Z"

var runIDPattern = regexp.MustCompile(`^gh_\d{8}T\d{6}Z_[0-9a-f]{8}$`)

// NewRunID returns a fresh run id, e.g. gh_20250602T143005Z_8f2c1a9b. The
// timestamp component keeps ids sortable by submission time; the random
// suffix keeps concurrent runs within the same second distinct.
func NewRunID() string {
	ts := time.Now().UTC().Format(runIDTimeLayout)
	u := uuid.New()
	return fmt.Sprintf("%s_%s_%s", runIDPrefix, ts, hex.EncodeToString(u[:4]))
}

// ValidRunID reports whether s has the run id shape. Replay verification uses
// it to reject directory names that were never produced by this system.
func ValidRunID(s string) bool {
	return runIDPattern.MatchString(s)
}
