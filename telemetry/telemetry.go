// Copyright 2026 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package telemetry records compiler spans and metrics with OpenTelemetry.
//
// A nil provider in Options selects the no-op implementation, so a Recorder
// is always safe to use.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ScopeName is the instrumentation scope of every tracer and meter.
const ScopeName = "github.com/gogpu/variants"

// Options selects the providers. Nil fields fall back to no-op providers.
type Options struct {
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Recorder owns the instruments used by sessions and builds.
type Recorder struct {
	tracer trace.Tracer

	compiles   metric.Int64Counter
	links      metric.Int64Counter
	collisions metric.Int64Counter
	cache      metric.Int64Counter
	duration   metric.Float64Histogram
}

// New creates the instruments.
func New(opts Options) (*Recorder, error) {
	mp := opts.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	meter := mp.Meter(ScopeName)
	r := &Recorder{tracer: tp.Tracer(ScopeName)}

	var err error
	if r.compiles, err = meter.Int64Counter("variants.compile.count",
		metric.WithDescription("Shader units compiled"),
		metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create compile counter: %w", err)
	}
	if r.links, err = meter.Int64Counter("variants.link.count",
		metric.WithDescription("Programs linked"),
		metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create link counter: %w", err)
	}
	if r.collisions, err = meter.Int64Counter("variants.collision.count",
		metric.WithDescription("Keyword and combination fingerprint collisions"),
		metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create collision counter: %w", err)
	}
	if r.cache, err = meter.Int64Counter("variants.artifact.lookup",
		metric.WithDescription("Artifact cache lookups"),
		metric.WithUnit("1")); err != nil {
		return nil, fmt.Errorf("create cache counter: %w", err)
	}
	if r.duration, err = meter.Float64Histogram("variants.duration",
		metric.WithDescription("Compile and link duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return r, nil
}

// Noop returns a Recorder backed by no-op providers.
func Noop() *Recorder {
	r, err := New(Options{})
	if err != nil {
		panic(err) // no-op instruments cannot fail
	}
	return r
}

// Start opens a span.
func (r *Recorder) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, marking it failed when err is non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

// Compile records one compile of stage.
func (r *Recorder) Compile(ctx context.Context, stage string, d time.Duration, err error) {
	opts := metric.WithAttributes(attribute.String("stage", stage), outcome(err))
	r.compiles.Add(ctx, 1, opts)
	r.duration.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attribute.String("op", "compile")))
}

// Link records one program link.
func (r *Recorder) Link(ctx context.Context, d time.Duration, err error) {
	r.links.Add(ctx, 1, metric.WithAttributes(outcome(err)))
	r.duration.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attribute.String("op", "link")))
}

// Collision records a fingerprint collision of kind "keyword" or "combo".
func (r *Recorder) Collision(ctx context.Context, kind string) {
	r.collisions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Lookup records an artifact cache lookup.
func (r *Recorder) Lookup(ctx context.Context, hit bool) {
	r.cache.Add(ctx, 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}
