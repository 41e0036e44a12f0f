package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

func TestClassifyStoreErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "other_pg", err: &pgconn.PgError{Code: "22P02"}, want: "pg_22P02"},
		{name: "redis_nil", err: redis.Nil, want: "redis_nil"},
		{name: "redis_closed", err: redis.ErrClosed, want: "redis_closed"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "wrapped_deadline", err: fmt.Errorf("list registrations: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "conn", err: errors.New("dial tcp: connection refused"), want: "connection"},
		{name: "unknown", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStoreErr(tt.err); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestObserveStore_CountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveStore("registrations.create", func() error { return nil })
	err := p.ObserveStore("registrations.create", func() error { return errors.New("connection reset") })

	if err == nil {
		t.Fatalf("expected the wrapped error to be returned")
	}

	got := testutil.ToFloat64(p.StoreErrorsTotal.WithLabelValues("registrations.create", "connection"))
	if got != 1 {
		t.Fatalf("got %v errors counted, want 1", got)
	}
}

func TestSweepMetrics_Snapshot(t *testing.T) {
	m := NewSweepMetrics()

	m.IncRuns()
	m.AddDeleted(3)
	m.AddSkipped(1)
	m.ObserveDuration(10 * time.Millisecond)
	m.ObserveDuration(30 * time.Millisecond)

	snap := m.Snapshot()

	if snap.Runs != 1 || snap.Deleted != 3 || snap.Skipped != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.AverageDuration != 20*time.Millisecond {
		t.Fatalf("got avg %v, want 20ms", snap.AverageDuration)
	}
	if snap.MaxDuration != 30*time.Millisecond {
		t.Fatalf("got max %v, want 30ms", snap.MaxDuration)
	}
	if snap.LastRun == nil {
		t.Fatalf("expected last run to be recorded")
	}
}

func TestNewLogger_LevelByEnv(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug records should be dropped outside dev, got %s", buf.String())
	}

	newLogger(&buf, "dev").Debug("shown", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON record: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestContextHandler_AddsRequestAndTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-42")

	log.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON record: %v (%s)", err, buf.String())
	}

	if rec["request_id"] != "req-42" {
		t.Fatalf("missing request_id: %v", rec)
	}
	if rec["trace_id"] != traceID.String() || rec["span_id"] != spanID.String() {
		t.Fatalf("missing trace ids: %v", rec)
	}
	if rec["component"] != "test" {
		t.Fatalf("WithAttrs should be preserved: %v", rec)
	}
}

func TestContextHandler_PlainContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	log.InfoContext(context.Background(), "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected a JSON record: %v", err)
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("no span, no trace_id: %v", rec)
	}
	if _, ok := rec["request_id"]; ok {
		t.Fatalf("no request id expected: %v", rec)
	}
}

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "scouthub-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown failed: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 0.25, want: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		desc := samplerFor(tt.ratio).Description()
		if !strings.Contains(desc, tt.want) {
			t.Fatalf("ratio %v: got %q, want it to mention %q", tt.ratio, desc, tt.want)
		}
	}
}
