// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// testTracer returns an in-memory export buffer and a provider exporting to
// it synchronously, so finished spans can be read back immediately.
func testTracer(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

// resetGlobals restores the global configuration after tests that exercise
// SetConfig, SetTracerProvider or Enable.
func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		Disable()
		settings.Store(defaultSettings())
	})
}

// attrMap flattens a recorded span's attributes for assertions.
func attrMap(s tracetest.SpanStub) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(s.Attributes))
	for _, kv := range s.Attributes {
		m[kv.Key] = kv.Value
	}
	return m
}

// fixtureTransport is a wire fixture standing in for the network: it records
// the outgoing request and answers with a canned response.
type fixtureTransport struct {
	status  int
	header  http.Header
	body    string
	lastReq *http.Request
}

func (f *fixtureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	header := f.header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Request:    req,
	}, nil
}

// dummyHeader is the fixed header key used by dummyPropagator.
const dummyHeader = "x-dummy-trace"

// dummyPropagator carries only the trace ID, under a non-standard header, to
// prove the propagator is pluggable end to end.
type dummyPropagator struct{}

var _ propagation.TextMapPropagator = dummyPropagator{}

func (dummyPropagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		carrier.Set(dummyHeader, sc.TraceID().String())
	}
}

func (dummyPropagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	v := carrier.Get(dummyHeader)
	if v == "" {
		return ctx
	}
	traceID, err := trace.TraceIDFromHex(v)
	if err != nil {
		return ctx
	}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	return trace.ContextWithRemoteSpanContext(ctx, sc)
}

func (dummyPropagator) Fields() []string { return []string{dummyHeader} }
