// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// The env vars described below provide process-wide defaults for the
// instrumentation. Explicit options and SetConfig take precedence.
const (
	// envClientErrorStatuses overrides which response status codes mark
	// client spans as errors, e.g. "400-403,429,500-599".
	envClientErrorStatuses = "TRACE_HTTP_CLIENT_ERROR_STATUSES"
	// envServerErrorStatuses overrides which response status codes mark
	// server spans as errors.
	envServerErrorStatuses = "TRACE_HTTP_SERVER_ERROR_STATUSES"
	// envQueryStringDisabled disables collection of the URL query string
	// in span attributes.
	envQueryStringDisabled = "TRACE_HTTP_URL_QUERY_STRING_DISABLED"
)

// tracerName is the instrumentation scope name under which all spans are
// created.
const tracerName = "github.com/tracepipe/httptrace-go"

// SpanEnricher is a user-supplied callback invoked with the in-flight span
// just before it ends, so domain-specific attributes can be added. res is nil
// on server spans and on client spans that ended with a network error.
type SpanEnricher func(span trace.Span, req *http.Request, res *http.Response)

// config holds the per-wrap instrumentation settings shared by client and
// server interceptors. Zero-valued fields fall back to the global
// configuration (see SetConfig) and then to the otel globals.
type config struct {
	provider      trace.TracerProvider
	propagator    propagation.TextMapPropagator
	enrich        SpanEnricher
	ignoreRequest func(*http.Request) bool
	isStatusError func(statusCode int) bool
	spanNamer     func(*http.Request) string
	spanOpts      []trace.SpanStartOption
	propagation   bool
	queryString   bool
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		propagation: true,
		queryString: true,
	}
	for _, fn := range opts {
		fn(cfg)
	}
	return cfg
}

func (c *config) tracer(g *globalSettings) trace.Tracer {
	provider := c.provider
	if provider == nil {
		provider = g.tracerProvider()
	}
	return provider.Tracer(tracerName, trace.WithInstrumentationVersion(Version))
}

func (c *config) textMapPropagator(g *globalSettings) propagation.TextMapPropagator {
	if c.propagator != nil {
		return c.propagator
	}
	return g.textMapPropagator()
}

func (c *config) enricher(g *globalSettings) SpanEnricher {
	if c.enrich != nil {
		return c.enrich
	}
	return g.enrich
}

// skip reports whether the request should bypass tracing entirely, consulting
// the global request filter first and then the per-wrap ignore function.
func (c *config) skip(g *globalSettings, req *http.Request) bool {
	if g.requestFilter != nil && !g.requestFilter(req) {
		return true
	}
	return c.ignoreRequest != nil && c.ignoreRequest(req)
}

func (c *config) statusError(g *globalSettings, server bool) func(int) bool {
	if c.isStatusError != nil {
		return c.isStatusError
	}
	if server {
		return g.serverStatusError
	}
	return g.clientStatusError
}

func (c *config) collectQuery(g *globalSettings) bool {
	return c.queryString && g.queryString
}

func isClientError(statusCode int) bool {
	return statusCode >= 400
}

func isServerError(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}

// statusCodeChecker parses a comma-separated list of status codes and ranges
// ("400,403,500-503") into a predicate. An empty input yields a nil predicate
// and no error; a malformed input is rejected so the caller can keep its
// previous policy.
func statusCodeChecker(s string) (func(statusCode int) bool, error) {
	if s == "" {
		return nil, nil
	}
	var codes []int
	var ranges [][2]int
	for _, val := range strings.Split(s, ",") {
		val = strings.TrimSpace(val)
		if before, after, found := strings.Cut(val, "-"); found {
			lo, err := strconv.Atoi(before)
			if err != nil {
				return nil, fmt.Errorf("invalid status code range %q", val)
			}
			hi, err := strconv.Atoi(after)
			if err != nil {
				return nil, fmt.Errorf("invalid status code range %q", val)
			}
			if lo > hi {
				return nil, fmt.Errorf("invalid status code range %q", val)
			}
			ranges = append(ranges, [2]int{lo, hi})
			continue
		}
		code, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q", val)
		}
		codes = append(codes, code)
	}
	return func(statusCode int) bool {
		for _, c := range codes {
			if c == statusCode {
				return true
			}
		}
		for _, r := range ranges {
			if statusCode >= r[0] && statusCode <= r[1] {
				return true
			}
		}
		return false
	}, nil
}

// defaultQueryRegexp redacts credential-looking values from collected query
// strings.
var defaultQueryRegexp = regexp.MustCompile(`(?i)(?:p(?:ass)?w(?:or)?d|pass(?:_?phrase)?|secret|(?:api_?|private_?|access_?)key|token|auth(?:entication|orization)?)=[^&]*`)

func obfuscateQuery(query string) string {
	return defaultQueryRegexp.ReplaceAllStringFunc(query, func(m string) string {
		name, _, _ := strings.Cut(m, "=")
		return name + "=<redacted>"
	})
}
