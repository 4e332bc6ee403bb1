// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracepipe/httptrace-go/internal/log"
)

// Config is the process-wide instrumentation configuration, replaced
// wholesale by SetConfig and read on every intercepted request. Zero-valued
// fields keep their defaults.
type Config struct {
	// TracerProvider is the pipeline spans are created against. Defaults to
	// the otel global provider.
	TracerProvider trace.TracerProvider
	// Propagator serializes trace context to and from request headers.
	// Defaults to the otel global propagator.
	Propagator propagation.TextMapPropagator
	// ApplyCustomAttributesOnSpan is invoked with every in-flight span before
	// it ends. Panics are recovered and never reach the application.
	ApplyCustomAttributesOnSpan SpanEnricher
	// RequestFilter decides whether a request is traced. Returning false
	// passes the request through untouched.
	RequestFilter func(*http.Request) bool
	// ClientErrorStatuses selects the response status codes that flag client
	// spans as errors, e.g. "400-403,429,500-599". Empty keeps the current
	// policy.
	ClientErrorStatuses string
	// ServerErrorStatuses is the server-side equivalent of
	// ClientErrorStatuses.
	ServerErrorStatuses string
	// DisableQueryString drops URL query strings from span attributes.
	DisableQueryString bool
}

// globalSettings is the resolved form of Config consumed by the
// interceptors.
type globalSettings struct {
	provider          trace.TracerProvider
	propagator        propagation.TextMapPropagator
	enrich            SpanEnricher
	requestFilter     func(*http.Request) bool
	clientStatusError func(int) bool
	serverStatusError func(int) bool
	queryString       bool
}

func (g *globalSettings) tracerProvider() trace.TracerProvider {
	if g.provider != nil {
		return g.provider
	}
	return otel.GetTracerProvider()
}

func (g *globalSettings) textMapPropagator() propagation.TextMapPropagator {
	if g.propagator != nil {
		return g.propagator
	}
	return otel.GetTextMapPropagator()
}

var (
	settings atomic.Pointer[globalSettings]

	// patchMu guards installs and uninstalls of the DefaultTransport wrapper.
	patchMu sync.Mutex
	enabled atomic.Bool
)

func init() {
	settings.Store(defaultSettings())
}

func defaultSettings() *globalSettings {
	g := &globalSettings{
		clientStatusError: isClientError,
		serverStatusError: isServerError,
		queryString:       true,
	}
	if fn, err := statusCodeChecker(os.Getenv(envClientErrorStatuses)); err != nil {
		log.Warn("httptrace: ignoring invalid status codes", "env", envClientErrorStatuses, "error", err)
	} else if fn != nil {
		g.clientStatusError = fn
	}
	if fn, err := statusCodeChecker(os.Getenv(envServerErrorStatuses)); err != nil {
		log.Warn("httptrace: ignoring invalid status codes", "env", envServerErrorStatuses, "error", err)
	} else if fn != nil {
		g.serverStatusError = fn
	}
	if v, _ := strconv.ParseBool(os.Getenv(envQueryStringDisabled)); v {
		g.queryString = false
	}
	return g
}

func globalConfig() *globalSettings { return settings.Load() }

// SetConfig replaces the global instrumentation configuration. Requests
// intercepted after the call observe the new configuration; a malformed
// configuration is rejected and the previous one stays active.
func SetConfig(cfg Config) error {
	g := defaultSettings()
	g.provider = cfg.TracerProvider
	g.propagator = cfg.Propagator
	g.enrich = cfg.ApplyCustomAttributesOnSpan
	g.requestFilter = cfg.RequestFilter
	if fn, err := statusCodeChecker(cfg.ClientErrorStatuses); err != nil {
		return fmt.Errorf("httptrace: client error statuses: %w", err)
	} else if fn != nil {
		g.clientStatusError = fn
	}
	if fn, err := statusCodeChecker(cfg.ServerErrorStatuses); err != nil {
		return fmt.Errorf("httptrace: server error statuses: %w", err)
	} else if fn != nil {
		g.serverStatusError = fn
	}
	if cfg.DisableQueryString {
		g.queryString = false
	}
	settings.Store(g)
	return nil
}

// SetTracerProvider rebinds the pipeline new spans are created against.
// Spans already in flight keep the tracer they were started with.
func SetTracerProvider(tp trace.TracerProvider) {
	cur := settings.Load()
	next := *cur
	next.provider = tp
	settings.Store(&next)
}

// Enable installs the instrumentation on http.DefaultTransport, so every
// request issued through the default transport, by any library, is traced.
// Calling Enable twice is a no-op.
func Enable(opts ...Option) {
	patchMu.Lock()
	defer patchMu.Unlock()
	if enabled.Load() {
		return
	}
	rt := &roundTripper{
		base:   http.DefaultTransport,
		cfg:    newConfig(opts...),
		global: true,
	}
	http.DefaultTransport = rt
	enabled.Store(true)
	log.Debug("httptrace: instrumentation enabled on http.DefaultTransport")
}

// Disable restores http.DefaultTransport to the value it had before Enable
// and turns off any still-referenced global wrapper. Requests issued after
// Disable produce no spans and carry no injected headers.
func Disable() {
	patchMu.Lock()
	defer patchMu.Unlock()
	if !enabled.Load() {
		return
	}
	enabled.Store(false)
	if rt, ok := http.DefaultTransport.(*roundTripper); ok && rt.global {
		http.DefaultTransport = rt.base
	}
	log.Debug("httptrace: instrumentation disabled")
}

// Enabled reports whether the global instrumentation is currently installed.
func Enabled() bool { return enabled.Load() }
