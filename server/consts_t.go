//go:build test
// +build test

package server

import (
	"time"
)

const (
	serverIP             = "127.0.0.1"
	httpPort             = 0
	defaultLogLevel      = DEBUG
	httpServerCtxTimeout = 20 * time.Second // concurrency tests can hold connections open for a while

	defaultMaxRequestBytes = 64 << 10
	defaultSignRateLimit   = 0
	defaultSignRateWindow  = 100 * time.Millisecond
)
