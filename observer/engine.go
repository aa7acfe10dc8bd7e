package observer

import (
	"context"
	"time"

	"github.com/lectern-ai/lectern"

	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
)

// Asker answers questions. *lectern.Engine satisfies it.
type Asker interface {
	Ask(ctx context.Context, question string) (lectern.Answer, error)
}

// ObservedEngine wraps an Asker with per-query OTEL instrumentation:
// a span per query plus counters keyed by grounding mode and reason.
type ObservedEngine struct {
	inner Asker
	inst  *Instruments
}

// WrapEngine returns an instrumented engine.
func WrapEngine(inner Asker, inst *Instruments) *ObservedEngine {
	return &ObservedEngine{inner: inner, inst: inst}
}

func (o *ObservedEngine) Ask(ctx context.Context, question string) (lectern.Answer, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "lectern.ask")
	defer span.End()
	start := time.Now()

	answer, err := o.inner.Ask(ctx, question)

	durationMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.inst.QueryDuration.Record(ctx, durationMs)
		return answer, err
	}

	mode := answer.Decision.Mode.String()
	reason := answer.Decision.Reason.String()
	span.SetAttributes(
		AttrQueryMode.String(mode),
		AttrQueryReason.String(reason),
		AttrQueryChunks.Int(len(answer.Sources)),
		AttrQueryMaxScore.Float64(float64(answer.Decision.MaxScore)),
	)

	attrs := metric.WithAttributes(
		AttrQueryMode.String(mode),
		AttrQueryReason.String(reason),
	)
	o.inst.Queries.Add(ctx, 1, attrs)
	o.inst.QueryDuration.Record(ctx, durationMs, attrs)
	o.inst.MaxScore.Record(ctx, float64(answer.Decision.MaxScore), attrs)

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("query answered"))
	rec.AddAttributes(
		otellog.String("lectern.mode", mode),
		otellog.String("lectern.reason", reason),
		otellog.Int("lectern.chunks", len(answer.Sources)),
		otellog.Float64("lectern.max_score", float64(answer.Decision.MaxScore)),
		otellog.Float64("lectern.duration_ms", durationMs),
	)
	o.inst.Logger.Emit(ctx, rec)

	return answer, nil
}
