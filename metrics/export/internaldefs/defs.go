// Package internaldefs holds the shared metric name/help table consumed by
// the Prometheus and OTel exporters, so the two stay in lockstep.
package internaldefs

import (
	sessionkit "github.com/visadesk/sessionkit"
)

// CounterDef ties a metric ID to its exported name and help text.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef ties a histogram metric ID to its exported name and help text.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in emission order.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricLoginSuccess, Name: "sessionkit_login_success_total", Help: "Successful login operations."},
	{ID: sessionkit.MetricLoginFailure, Name: "sessionkit_login_failure_total", Help: "Failed login operations."},
	{ID: sessionkit.MetricRegisterSuccess, Name: "sessionkit_register_success_total", Help: "Successful register operations."},
	{ID: sessionkit.MetricRegisterFailure, Name: "sessionkit_register_failure_total", Help: "Failed register operations."},
	{ID: sessionkit.MetricBootstrapDeduplicated, Name: "sessionkit_bootstrap_deduplicated_total", Help: "Bootstrap checks collapsed into an in-flight one."},
	{ID: sessionkit.MetricBootstrapSkippedNoToken, Name: "sessionkit_bootstrap_skipped_no_token_total", Help: "Bootstrap checks concluded locally with no stored token."},
	{ID: sessionkit.MetricBootstrapTokenRejected, Name: "sessionkit_bootstrap_token_rejected_total", Help: "Stored tokens rejected by the local plausibility check."},
	{ID: sessionkit.MetricBootstrapConfirmed, Name: "sessionkit_bootstrap_confirmed_total", Help: "Bootstrap checks confirmed by the identity service."},
	{ID: sessionkit.MetricBootstrapCleared, Name: "sessionkit_bootstrap_cleared_total", Help: "Bootstrap checks that cleared stored credentials."},
	{ID: sessionkit.MetricBootstrapRateLimited, Name: "sessionkit_bootstrap_rate_limited_total", Help: "Bootstrap checks answered with 429; state kept."},
	{ID: sessionkit.MetricBootstrapInconclusive, Name: "sessionkit_bootstrap_inconclusive_total", Help: "Bootstrap checks with transient failures; state kept."},
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: sessionkit.MetricRefreshFailure, Name: "sessionkit_refresh_failure_total", Help: "Failed token refresh operations ending in teardown."},
	{ID: sessionkit.MetricRetryAfterRefresh, Name: "sessionkit_retry_after_refresh_total", Help: "Requests transparently replayed after a refresh."},
	{ID: sessionkit.MetricLogout, Name: "sessionkit_logout_total", Help: "Logout operations."},
	{ID: sessionkit.MetricTeardown, Name: "sessionkit_teardown_total", Help: "Unrecoverable credential failures tearing the session down."},
	{ID: sessionkit.MetricProfileUpdateSuccess, Name: "sessionkit_profile_update_success_total", Help: "Successful profile updates."},
	{ID: sessionkit.MetricProfileUpdateFailure, Name: "sessionkit_profile_update_failure_total", Help: "Failed profile updates."},
	{ID: sessionkit.MetricPasswordChangeSuccess, Name: "sessionkit_password_change_success_total", Help: "Successful password changes."},
	{ID: sessionkit.MetricPasswordChangeFailure, Name: "sessionkit_password_change_failure_total", Help: "Failed password changes."},
	{ID: sessionkit.MetricPasswordResetRequest, Name: "sessionkit_password_reset_request_total", Help: "Password reset requests."},
	{ID: sessionkit.MetricPasswordResetConfirmSuccess, Name: "sessionkit_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: sessionkit.MetricPasswordResetConfirmFailure, Name: "sessionkit_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricBootstrapLatency, Name: "sessionkit_bootstrap_latency_seconds", Help: "Bootstrap check latency histogram."},
}

// HistogramBounds are the bucket upper bounds rendered as Prometheus le labels.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix renders the same bounds as OTel-safe name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or trims a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
