// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

import (
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tracepipe/httptrace-go/ext"
)

// The functions in this file translate request and response metadata into the
// standardized span attribute set. They are pure and tolerate missing fields
// by omitting the corresponding attribute rather than guessing a value.

// requestAttributes returns the attributes derived from an outgoing request.
func requestAttributes(req *http.Request, collectQuery bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 7)
	attrs = append(attrs, ext.HTTPMethod(requestMethod(req)))
	u := req.URL
	if u == nil {
		return attrs
	}
	if u.Scheme != "" {
		attrs = append(attrs, ext.Component(u.Scheme))
	}
	if host := u.Hostname(); host != "" {
		attrs = append(attrs, ext.HTTPHostname(host))
	}
	pathname := u.EscapedPath()
	if pathname != "" {
		attrs = append(attrs, ext.HTTPPathname(pathname))
	}
	if path := pathWithQuery(pathname, u.RawQuery, collectQuery); path != "" {
		attrs = append(attrs, ext.HTTPPath(path))
	}
	if url := requestURL(req, collectQuery); url != "" {
		attrs = append(attrs, ext.HTTPURL(url))
	}
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, ext.HTTPUserAgent(ua))
	}
	return attrs
}

// serverRequestAttributes returns the attributes derived from an incoming
// request. Unlike the client side, the URL of a server request usually only
// carries a path and query, so scheme and host come from the connection
// state and the Host header.
func serverRequestAttributes(r *http.Request, collectQuery bool) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 7)
	attrs = append(attrs, ext.HTTPMethod(requestMethod(r)))
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs = append(attrs, ext.Component(scheme))
	if host := hostname(r.Host); host != "" {
		attrs = append(attrs, ext.HTTPHostname(host))
	}
	pathname := r.URL.EscapedPath()
	if pathname != "" {
		attrs = append(attrs, ext.HTTPPathname(pathname))
	}
	if path := pathWithQuery(pathname, r.URL.RawQuery, collectQuery); path != "" {
		attrs = append(attrs, ext.HTTPPath(path))
	}
	if r.Host != "" {
		url := scheme + "://" + r.Host + pathWithQuery(pathname, r.URL.RawQuery, collectQuery)
		attrs = append(attrs, ext.HTTPURL(url))
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, ext.HTTPUserAgent(ua))
	}
	return attrs
}

// responseAttributes returns the attributes derived from a response. A nil
// response (network error) yields no attributes.
func responseAttributes(res *http.Response) []attribute.KeyValue {
	if res == nil {
		return nil
	}
	return []attribute.KeyValue{ext.HTTPStatusCode(res.StatusCode)}
}

func requestMethod(r *http.Request) string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// pathWithQuery joins the escaped path and the query string, redacting
// credential-looking query values. The query is dropped entirely when
// collection is disabled.
func pathWithQuery(pathname, rawQuery string, collectQuery bool) string {
	if !collectQuery || rawQuery == "" {
		return pathname
	}
	return pathname + "?" + obfuscateQuery(rawQuery)
}

// requestURL rebuilds the full URL of an outgoing request without userinfo.
func requestURL(req *http.Request, collectQuery bool) string {
	u := req.URL
	if u.Scheme == "" || u.Host == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Host)
	b.WriteString(pathWithQuery(u.EscapedPath(), u.RawQuery, collectQuery))
	return b.String()
}

// hostname strips the port from a host header value, if present.
func hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
