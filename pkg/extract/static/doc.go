// Package static provides deterministic sensors that never call a model.
//
// StubSensor proposes nothing for any submission and is the default for
// offline runs. FixtureSensor replays canned extraction results keyed by
// exact submission text; the eval harness uses it to keep runs hermetic.
package static
