// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"fmt"
	"net/http"
	"net/textproto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracepipe/httptrace-go/internal/log"
)

type roundTripper struct {
	base http.RoundTripper
	cfg  *config

	// global marks the wrapper installed by Enable on http.DefaultTransport.
	// It honors the enabled flag so that Disable also neutralizes clients
	// that captured the wrapper before the uninstall.
	global bool
}

func (rt *roundTripper) RoundTrip(req *http.Request) (res *http.Response, err error) {
	g := globalConfig()
	if rt.global && !enabled.Load() {
		return rt.base.RoundTrip(req)
	}
	if rt.cfg.skip(g, req) {
		return rt.base.RoundTrip(req)
	}
	opts := make([]trace.SpanStartOption, 0, len(rt.cfg.spanOpts)+2)
	opts = append(opts,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(requestAttributes(req, rt.cfg.collectQuery(g))...),
	)
	opts = append(opts, rt.cfg.spanOpts...)
	ctx, span := rt.cfg.tracer(g).Start(req.Context(), rt.spanName(req), opts...)
	defer func() {
		rt.finish(span, g, req, res, err)
	}()
	// The caller's request is never mutated: headers are injected into a
	// clone carrying the span context.
	r2 := req.Clone(ctx)
	if rt.cfg.propagation {
		rt.cfg.textMapPropagator(g).Inject(ctx, preservingCarrier{r2.Header})
	}
	return rt.base.RoundTrip(r2)
}

// finish records the terminal state on the span and ends it. It runs exactly
// once per attempt, strictly after the terminal event of the round trip.
func (rt *roundTripper) finish(span trace.Span, g *globalSettings, req *http.Request, res *http.Response, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if res != nil {
		span.SetAttributes(responseAttributes(res)...)
		if rt.cfg.statusError(g, false)(res.StatusCode) {
			span.SetStatus(codes.Error, fmt.Sprintf("%d: %s", res.StatusCode, http.StatusText(res.StatusCode)))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	applyEnricher(rt.cfg.enricher(g), span, req, res)
}

func (rt *roundTripper) spanName(req *http.Request) string {
	if rt.cfg.spanNamer != nil {
		return rt.cfg.spanNamer(req)
	}
	return requestMethod(req)
}

// Unwrap returns the original http.RoundTripper.
func (rt *roundTripper) Unwrap() http.RoundTripper {
	return rt.base
}

// WrapRoundTripper returns an http.RoundTripper that traces every request
// sent over the given transport. Wrapping an already wrapped transport
// rewraps its base instead of stacking.
func WrapRoundTripper(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if wrapped, ok := base.(*roundTripper); ok {
		base = wrapped.base
	}
	return &roundTripper{
		base: base,
		cfg:  newConfig(opts...),
	}
}

// WrapClient modifies the given client's transport to augment it with tracing
// and returns it.
func WrapClient(c *http.Client, opts ...Option) *http.Client {
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = WrapRoundTripper(c.Transport, opts...)
	return c
}

// applyEnricher runs the user-supplied attribute callback. A panic inside the
// callback is an instrumentation fault: it is recovered, reported, and the
// request flow proceeds unaffected.
func applyEnricher(fn SpanEnricher, span trace.Span, req *http.Request, res *http.Response) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("httptrace: ApplyCustomAttributesOnSpan panicked: %v", r)
			otel.Handle(err)
			log.Error("httptrace: span enricher panicked", "error", err)
		}
	}()
	fn(span, req, res)
}

// preservingCarrier injects headers without overwriting keys the caller has
// already set explicitly.
type preservingCarrier struct {
	header http.Header
}

var _ propagation.TextMapCarrier = preservingCarrier{}

func (c preservingCarrier) Get(key string) string {
	return c.header.Get(key)
}

func (c preservingCarrier) Set(key, value string) {
	if _, ok := c.header[textproto.CanonicalMIMEHeaderKey(key)]; ok {
		return
	}
	c.header.Set(key, value)
}

func (c preservingCarrier) Keys() []string {
	keys := make([]string, 0, len(c.header))
	for k := range c.header {
		keys = append(keys, k)
	}
	return keys
}
