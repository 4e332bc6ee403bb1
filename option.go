// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the client and server interceptors created by
// WrapRoundTripper, WrapClient, WrapHandler, NewServeMux and Enable.
type Option func(*config)

// WithTracerProvider sets the provider spans are created against, overriding
// the globally configured one for this wrap only.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.provider = tp
	}
}

// WithPropagator sets the propagator used to inject and extract trace
// context headers, overriding the globally configured one for this wrap only.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagator = p
	}
}

// WithApplyCustomAttributes registers a callback invoked with the in-flight
// span before it ends. A panic inside the callback is recovered and never
// reaches the application's request flow.
func WithApplyCustomAttributes(fn SpanEnricher) Option {
	return func(cfg *config) {
		cfg.enrich = fn
	}
}

// WithIgnoreRequest holds the function to use for determining if a request
// should not be traced. Ignored requests pass through unmodified: no span is
// created and no headers are injected.
func WithIgnoreRequest(fn func(*http.Request) bool) Option {
	return func(cfg *config) {
		cfg.ignoreRequest = fn
	}
}

// WithStatusCheck sets a span to be an error if the passed function returns
// true for a given response status code.
func WithStatusCheck(fn func(statusCode int) bool) Option {
	return func(cfg *config) {
		cfg.isStatusError = fn
	}
}

// WithSpanNamer specifies a function used to obtain the span name for a given
// request. The default names client spans after the request method.
func WithSpanNamer(namer func(req *http.Request) string) Option {
	return func(cfg *config) {
		cfg.spanNamer = namer
	}
}

// WithSpanOptions defines a set of additional span start options to be added
// to spans started by the instrumentation.
func WithSpanOptions(opts ...trace.SpanStartOption) Option {
	return func(cfg *config) {
		cfg.spanOpts = append(cfg.spanOpts, opts...)
	}
}

// WithPropagation enables or disables trace context header injection on
// outgoing requests. Disabling propagation disconnects this trace from any
// downstream traces.
func WithPropagation(enabled bool) Option {
	return func(cfg *config) {
		cfg.propagation = enabled
	}
}

// WithQueryString controls whether the URL query string is collected into the
// http.path and http.url span attributes. Collected query strings have
// credential-looking values redacted.
func WithQueryString(enabled bool) Option {
	return func(cfg *config) {
		cfg.queryString = enabled
	}
}
