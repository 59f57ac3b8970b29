// Package telemetry defines the service-level metrics for the code flows.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"security-code-service/internal/verdict"
)

// Flow labels for metric attributes.
const (
	FlowChallenge    = "challenge"
	FlowVerification = "verification"
)

// Metrics holds counters for issued codes and verify outcomes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	issued  metric.Int64Counter
	verify  metric.Int64Counter
	swept   metric.Int64Counter
}

// NewMetrics creates the counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	issued, err := meter.Int64Counter("security_codes.issued",
		metric.WithDescription("Codes generated and stored, by flow"))
	if err != nil {
		return nil, err
	}
	verify, err := meter.Int64Counter("security_codes.verify",
		metric.WithDescription("Verify calls, by flow and outcome kind"))
	if err != nil {
		return nil, err
	}
	swept, err := meter.Int64Counter("security_codes.swept",
		metric.WithDescription("Expired records removed by cleanup, by flow"))
	if err != nil {
		return nil, err
	}
	return &Metrics{issued: issued, verify: verify, swept: swept}, nil
}

// CodeIssued records one issued code for the flow.
func (m *Metrics) CodeIssued(ctx context.Context, flow string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}

// VerifyOutcome records one verify call and its outcome kind.
func (m *Metrics) VerifyOutcome(ctx context.Context, flow string, kind verdict.Kind) {
	if m == nil {
		return
	}
	m.verify.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("kind", kind.String()),
	))
}

// Swept records n expired records removed by cleanup.
func (m *Metrics) Swept(ctx context.Context, flow string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.swept.Add(ctx, n, metric.WithAttributes(attribute.String("flow", flow)))
}
