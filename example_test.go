// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace_test

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	httptrace "github.com/tracepipe/httptrace-go"
)

func ExampleWrapClient() {
	client := httptrace.WrapClient(&http.Client{})
	// All requests made with the client are now traced.
	resp, err := client.Get("https://example.com/")
	if err != nil {
		return
	}
	resp.Body.Close()
}

func ExampleEnable() {
	// Trace every request issued through http.DefaultTransport, including
	// those made by third-party libraries, until Disable is called.
	httptrace.Enable()
	defer httptrace.Disable()

	resp, err := http.Get("https://example.com/")
	if err != nil {
		return
	}
	resp.Body.Close()
}

func ExampleNewServeMux() {
	mux := httptrace.NewServeMux()
	mux.HandleFunc("/user/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})
	http.ListenAndServe(":8080", mux)
}

func ExampleWithApplyCustomAttributes() {
	client := httptrace.WrapClient(&http.Client{},
		httptrace.WithApplyCustomAttributes(func(span trace.Span, req *http.Request, res *http.Response) {
			span.SetAttributes(attribute.String("peer.service", "billing"))
		}))
	resp, err := client.Get("https://billing.internal/invoices")
	if err != nil {
		return
	}
	resp.Body.Close()
}
