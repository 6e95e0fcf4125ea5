//go:build !test
// +build !test

package server

import (
	"time"
)

const (
	serverIP             = "0.0.0.0"
	httpPort             = 8008
	defaultLogLevel      = WARN
	httpServerCtxTimeout = 5 * time.Second

	defaultMaxRequestBytes = 1 << 20
	defaultSignRateLimit   = 120
	defaultSignRateWindow  = time.Minute
)
