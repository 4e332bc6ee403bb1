// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

// Package httptrace transparently traces HTTP clients and servers built on
// net/http. Outbound requests are intercepted at the http.RoundTripper layer
// and inbound requests at the http.Handler layer, so any library layered on
// the standard primitives is traced without changing a call site. Every
// intercepted request produces exactly one span, carrying propagated trace
// context in its headers and the standardized HTTP attribute set.
package httptrace

import (
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracepipe/httptrace-go/ext"
)

// ServeConfig specifies the tracing configuration when using TraceAndServe.
type ServeConfig struct {
	// Operation optionally overrides the span name. It defaults to the
	// request method.
	Operation string
	// Route is the matched route pattern, recorded as the http.route
	// attribute when set.
	Route string
	// SpanOpts specifies any additional options applied to the request span.
	SpanOpts []trace.SpanStartOption
	// IsStatusError customizes which response status codes flag the span as
	// an error. Defaults to 5xx.
	IsStatusError func(statusCode int) bool
}

// TraceAndServe serves the handler h using the given ResponseWriter and
// Request, applying tracing according to the specified config. The request
// span is parented to the trace context extracted from the incoming headers,
// made active on the request context for the duration of the handler, and
// ended exactly once after the handler returns, panicking or not.
func TraceAndServe(h http.Handler, w http.ResponseWriter, r *http.Request, cfg *ServeConfig) {
	traceAndServe(h, w, r, newConfig(), cfg)
}

func traceAndServe(h http.Handler, w http.ResponseWriter, r *http.Request, c *config, sc *ServeConfig) {
	if sc == nil {
		sc = new(ServeConfig)
	}
	g := globalConfig()
	if c.skip(g, r) {
		h.ServeHTTP(w, r)
		return
	}
	ctx := c.textMapPropagator(g).Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	opts := make([]trace.SpanStartOption, 0, len(c.spanOpts)+len(sc.SpanOpts)+3)
	opts = append(opts,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(serverRequestAttributes(r, c.collectQuery(g))...),
	)
	if sc.Route != "" {
		opts = append(opts, trace.WithAttributes(ext.HTTPRoute(sc.Route)))
	}
	opts = append(opts, c.spanOpts...)
	opts = append(opts, sc.SpanOpts...)
	name := sc.Operation
	if name == "" {
		name = requestMethod(r)
	}
	ctx, span := c.tracer(g).Start(ctx, name, opts...)
	rw := newResponseWriter(w)
	defer func() {
		isStatusError := sc.IsStatusError
		if isStatusError == nil {
			isStatusError = c.statusError(g, true)
		}
		finishServerSpan(span, c.enricher(g), r, rw.Status(), isStatusError)
	}()
	h.ServeHTTP(rw, r.WithContext(ctx))
}

// finishServerSpan records the response status on the span, runs the
// enricher and ends the span.
func finishServerSpan(span trace.Span, enrich SpanEnricher, r *http.Request, status int, isStatusError func(int) bool) {
	defer span.End()
	if status == 0 {
		// The handler wrote nothing; net/http responds 200 in that case.
		status = http.StatusOK
	}
	span.SetAttributes(ext.HTTPStatusCode(status))
	if isStatusError(status) {
		span.SetStatus(codes.Error, strconv.Itoa(status)+": "+http.StatusText(status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	applyEnricher(enrich, span, r, nil)
}

// WrapHandler wraps an http.Handler with tracing using the given operation
// as the span name.
func WrapHandler(h http.Handler, operation string, opts ...Option) http.Handler {
	cfg := newConfig(opts...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceAndServe(h, w, r, cfg, &ServeConfig{
			Operation: operationName(cfg, operation, r),
		})
	})
}

// ServeMux is an HTTP request multiplexer that traces all incoming requests,
// naming each span after the method and the matched route pattern.
type ServeMux struct {
	*http.ServeMux
	cfg *config
}

// NewServeMux allocates and returns a traced http.ServeMux.
func NewServeMux(opts ...Option) *ServeMux {
	return &ServeMux{
		ServeMux: http.NewServeMux(),
		cfg:      newConfig(opts...),
	}
}

// ServeHTTP dispatches the request to the handler whose pattern most closely
// matches the request URL. It is rewritten here only to trace the incoming
// requests to the underlying multiplexer.
func (mux *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, route := mux.Handler(r)
	traceAndServe(mux.ServeMux, w, r, mux.cfg, &ServeConfig{
		Operation: operationName(mux.cfg, requestMethod(r)+" "+route, r),
		Route:     route,
	})
}

func operationName(cfg *config, fallback string, r *http.Request) string {
	if cfg.spanNamer != nil {
		return cfg.spanNamer(r)
	}
	return fallback
}
