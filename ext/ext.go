// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

// Package ext contains the span attribute keys set by the httptrace
// instrumentation, together with typed constructors for their values.
package ext

import "go.opentelemetry.io/otel/attribute"

const (
	// ComponentKey identifies the transport scheme handling the request,
	// e.g. "http" or "https".
	ComponentKey = attribute.Key("component")

	// HTTPMethodKey is the HTTP method of the request.
	HTTPMethodKey = attribute.Key("http.method")

	// HTTPURLKey is the full request URL, without userinfo.
	HTTPURLKey = attribute.Key("http.url")

	// HTTPHostnameKey is the host the request is addressed to, without port.
	HTTPHostnameKey = attribute.Key("http.hostname")

	// HTTPPathKey is the request path including the query string, if any.
	HTTPPathKey = attribute.Key("http.path")

	// HTTPPathnameKey is the request path without the query string.
	HTTPPathnameKey = attribute.Key("http.pathname")

	// HTTPStatusCodeKey is the HTTP response status code.
	HTTPStatusCodeKey = attribute.Key("http.status_code")

	// HTTPUserAgentKey is the value of the User-Agent request header.
	HTTPUserAgentKey = attribute.Key("http.user_agent")

	// HTTPRouteKey is the matched route pattern on server spans.
	HTTPRouteKey = attribute.Key("http.route")
)

// Component returns a component attribute for the given transport scheme.
func Component(scheme string) attribute.KeyValue { return ComponentKey.String(scheme) }

// HTTPMethod returns an http.method attribute.
func HTTPMethod(method string) attribute.KeyValue { return HTTPMethodKey.String(method) }

// HTTPURL returns an http.url attribute.
func HTTPURL(url string) attribute.KeyValue { return HTTPURLKey.String(url) }

// HTTPHostname returns an http.hostname attribute.
func HTTPHostname(host string) attribute.KeyValue { return HTTPHostnameKey.String(host) }

// HTTPPath returns an http.path attribute.
func HTTPPath(path string) attribute.KeyValue { return HTTPPathKey.String(path) }

// HTTPPathname returns an http.pathname attribute.
func HTTPPathname(path string) attribute.KeyValue { return HTTPPathnameKey.String(path) }

// HTTPStatusCode returns an http.status_code attribute.
func HTTPStatusCode(code int) attribute.KeyValue { return HTTPStatusCodeKey.Int(code) }

// HTTPUserAgent returns an http.user_agent attribute.
func HTTPUserAgent(ua string) attribute.KeyValue { return HTTPUserAgentKey.String(ua) }

// HTTPRoute returns an http.route attribute.
func HTTPRoute(route string) attribute.KeyValue { return HTTPRouteKey.String(route) }
