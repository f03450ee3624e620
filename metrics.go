package sessionkit

import (
	internalmetrics "github.com/visadesk/sessionkit/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess                = internalmetrics.MetricLoginSuccess
	MetricLoginFailure                = internalmetrics.MetricLoginFailure
	MetricRegisterSuccess             = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure             = internalmetrics.MetricRegisterFailure
	MetricBootstrapDeduplicated       = internalmetrics.MetricBootstrapDeduplicated
	MetricBootstrapSkippedNoToken     = internalmetrics.MetricBootstrapSkippedNoToken
	MetricBootstrapTokenRejected      = internalmetrics.MetricBootstrapTokenRejected
	MetricBootstrapConfirmed          = internalmetrics.MetricBootstrapConfirmed
	MetricBootstrapCleared            = internalmetrics.MetricBootstrapCleared
	MetricBootstrapRateLimited        = internalmetrics.MetricBootstrapRateLimited
	MetricBootstrapInconclusive       = internalmetrics.MetricBootstrapInconclusive
	MetricRefreshSuccess              = internalmetrics.MetricRefreshSuccess
	MetricRefreshFailure              = internalmetrics.MetricRefreshFailure
	MetricRetryAfterRefresh           = internalmetrics.MetricRetryAfterRefresh
	MetricLogout                      = internalmetrics.MetricLogout
	MetricTeardown                    = internalmetrics.MetricTeardown
	MetricProfileUpdateSuccess        = internalmetrics.MetricProfileUpdateSuccess
	MetricProfileUpdateFailure        = internalmetrics.MetricProfileUpdateFailure
	MetricPasswordChangeSuccess       = internalmetrics.MetricPasswordChangeSuccess
	MetricPasswordChangeFailure       = internalmetrics.MetricPasswordChangeFailure
	MetricPasswordResetRequest        = internalmetrics.MetricPasswordResetRequest
	MetricPasswordResetConfirmSuccess = internalmetrics.MetricPasswordResetConfirmSuccess
	MetricPasswordResetConfirmFailure = internalmetrics.MetricPasswordResetConfirmFailure
	MetricBootstrapLatency            = internalmetrics.MetricBootstrapLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by cfg. When Enabled
// is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
