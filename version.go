// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Tracepipe (https://www.tracepipe.dev/).
// Copyright 2023 Tracepipe, Inc.

package httptrace

// Version is the semantic version of the instrumentation, reported as the
// instrumentation scope version on every span.
const Version = "0.4.1"
