package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatehouse-hq/keystone/pkg/extract"
	"gatehouse-hq/keystone/pkg/extract/static"
	"gatehouse-hq/keystone/pkg/intake"
	"gatehouse-hq/keystone/pkg/normalize"
	"gatehouse-hq/keystone/pkg/policy"
	"gatehouse-hq/keystone/pkg/policy/engine"
	"gatehouse-hq/keystone/pkg/record"
	"gatehouse-hq/keystone/pkg/telemetry/metrics"
)

// Stage label values for the stage duration histogram.
const (
	stageExtract   = "extract"
	stageNormalize = "normalize"
	stageDecide    = "decide"
	stageRecord    = "record"
)

// Recorder persists finished Decision Records. *recorder.Recorder satisfies
// it. Persistence failures are logged, never propagated: a record that could
// not be persisted was still decided.
type Recorder interface {
	Record(ctx context.Context, rec *record.DecisionRecord, doc *policy.Document) error
}

// Options configures a Gatekeeper. Document is required; everything else has
// a working default (stub sensor, no persistence, no metrics).
type Options struct {
	// Sensor produces extraction claims. Defaults to the stub sensor, which
	// proposes nothing.
	Sensor extract.Sensor

	// Document is the policy the gatekeeper decides under. Required.
	Document *policy.Document

	// Recorder persists Decision Records. Nil disables persistence.
	Recorder Recorder

	// Metrics records pipeline telemetry. Nil disables it.
	Metrics *metrics.Collector

	// Logger is the parent logger. Defaults to slog.Default.
	Logger *slog.Logger

	// Model identifies the sensor model, and is what a recovered absent
	// extraction reports as its model. Defaults to the stub model.
	Model string

	// Version is the build version stamped into every record.
	Version string
}

// Gatekeeper runs submissions through the triage pipeline: sensor extraction,
// normalization, policy evaluation, record assembly, persistence. It holds no
// per-submission state, so one gatekeeper serves any number of concurrent
// Process calls over its immutable policy document.
type Gatekeeper struct {
	sensor   extract.Sensor
	doc      *policy.Document
	engine   *engine.Engine
	recorder Recorder
	metrics  *metrics.Collector
	logger   *slog.Logger
	model    string
	version  string
}

// NewGatekeeper creates a gatekeeper. A nil policy document is a
// configuration error; a misconfigured pipeline must refuse to start rather
// than decide without policy.
func NewGatekeeper(opts Options) (*Gatekeeper, error) {
	if opts.Document == nil {
		return nil, errors.New("policy document is required")
	}
	if opts.Sensor == nil {
		opts.Sensor = static.NewStubSensor()
	}
	if opts.Model == "" {
		opts.Model = static.StubModel
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Gatekeeper{
		sensor:   opts.Sensor,
		doc:      opts.Document,
		engine:   engine.NewEngine(opts.Logger),
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With("component", "pipeline"),
		model:    opts.Model,
		version:  opts.Version,
	}, nil
}

// Document returns the policy document the gatekeeper decides under.
func (g *Gatekeeper) Document() *policy.Document {
	return g.doc
}

// Process runs one submission end to end and returns its Decision Record.
// Sensor misbehavior of any kind degrades to the all-absent extraction and
// the run continues; after construction the pipeline has no error path that
// loses a submission, so an error here means a nil envelope, nothing else.
func (g *Gatekeeper) Process(ctx context.Context, env *intake.Envelope) (*record.DecisionRecord, error) {
	if env == nil {
		return nil, errors.New("nil submission envelope")
	}

	watch := record.NewStopwatch()
	runID := record.NewRunID()
	g.metrics.RecordSubmission()

	logger := g.logger.With("run_id", runID)
	logger.Info("processing submission",
		"source", env.Metadata.Source,
		"raw_bytes", len(env.RawText),
	)

	stageStart := time.Now()
	extraction := g.callSensor(ctx, env.RawText, logger)
	g.metrics.RecordStageDuration(stageExtract, time.Since(stageStart))

	stageStart = time.Now()
	bundle := normalize.Normalize(env.RawText, extraction)
	g.metrics.RecordStageDuration(stageNormalize, time.Since(stageStart))
	for _, flag := range bundle.Report.Flags {
		g.metrics.RecordQualityFlag(string(flag))
	}

	stageStart = time.Now()
	outcome := g.engine.Decide(g.doc, env.RawText, bundle)
	g.metrics.RecordStageDuration(stageDecide, time.Since(stageStart))

	g.metrics.RecordDecision(string(outcome.Decision))
	for _, id := range outcome.RuleIDsFired {
		if id == engine.NoRuleMatchID {
			g.metrics.RecordNoRuleMatch()
			continue
		}
		g.metrics.RecordRuleHit(id)
	}

	rec := &record.DecisionRecord{
		RunID:         runID,
		Decision:      outcome.Decision,
		PolicyVersion: g.doc.Version,
		Model:         extraction.Model,
		ReceivedAt:    env.Metadata.ReceivedAt,
		DecidedAt:     time.Now().UTC(),
		DurationMS:    watch.ElapsedMS(),
		Input:         *env,
		Extraction:    *extraction,
		Normalized:    *bundle,
		Policy:        *outcome,
		Build: record.BuildInfo{
			System:        record.SystemName,
			Version:       g.version,
			PolicyVersion: g.doc.Version,
			PolicyHash:    g.doc.Hash,
		},
	}

	if g.recorder != nil {
		stageStart = time.Now()
		if err := g.recorder.Record(ctx, rec, g.doc); err != nil {
			logger.Error("failed to enqueue decision record",
				"error", err,
			)
		}
		g.metrics.RecordStageDuration(stageRecord, time.Since(stageStart))
	}

	g.metrics.RecordPipelineDuration(watch.Elapsed())

	logger.Info("submission decided",
		"decision", rec.Decision,
		"rule_ids_fired", outcome.RuleIDsFired,
		"confidence_bound", outcome.ConfidenceBound,
		"duration_ms", rec.DurationMS,
	)

	return rec, nil
}

// callSensor obtains the sensor's claims for the raw text. A transport error,
// a nil result and a panic all degrade to the all-absent result, so a
// misbehaving sensor can never abort a run and never push one toward
// acceptance.
func (g *Gatekeeper) callSensor(ctx context.Context, rawText string, logger *slog.Logger) (result *extract.Result) {
	defer func() {
		if r := recover(); r != nil {
			g.metrics.RecordSensorFailure()
			logger.Error("sensor panicked; continuing with absent extraction",
				"panic", r,
			)
			result = extract.AbsentResult(g.model, fmt.Sprintf("sensor panic: %v", r))
		}
	}()

	res, err := g.sensor.Extract(ctx, rawText, g.model)
	if err != nil {
		g.metrics.RecordSensorFailure()
		logger.Warn("sensor failed; continuing with absent extraction",
			"error", err,
		)
		return extract.AbsentResult(g.model, fmt.Sprintf("sensor failure: %v", err))
	}
	if res == nil {
		g.metrics.RecordSensorFailure()
		logger.Warn("sensor returned no result; continuing with absent extraction")
		return extract.AbsentResult(g.model, "sensor returned no result")
	}
	return res
}
