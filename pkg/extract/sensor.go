package extract

import "context"

// Sensor is the capability interface for the untrusted extraction component.
// Implementations may call remote models; the pipeline treats whatever they
// return as unverified claims and applies its own evidence checks.
type Sensor interface {
	// Extract proposes candidates for the tracked fields of rawText. The
	// model identifier selects the upstream model where that applies.
	// Implementations should return an error only for transport-level
	// failures; malformed model output should degrade to AbsentResult.
	Extract(ctx context.Context, rawText, model string) (*Result, error)
}
