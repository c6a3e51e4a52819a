package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics agrupa os contadores de dominio. Um *Metrics nil e valido e nao registra nada.
type Metrics struct {
	driftCorrections   metric.Int64Counter
	jobRuns            metric.Int64Counter
	jobFailures        metric.Int64Counter
	jobDuration        metric.Float64Histogram
	milestonesUnlocked metric.Int64Counter
	recurringCampaigns metric.Int64Counter
	recurringDonations metric.Int64Counter
}

func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.driftCorrections, err = meter.Int64Counter("kindfund.ledger.drift_corrections",
		metric.WithDescription("Aggregates corrected because cached values diverged from donations"),
		metric.WithUnit("{correction}"),
	); err != nil {
		return nil, err
	}
	if m.jobRuns, err = meter.Int64Counter("kindfund.jobs.runs",
		metric.WithDescription("Scheduled job executions"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.jobFailures, err = meter.Int64Counter("kindfund.jobs.failures",
		metric.WithDescription("Scheduled job executions that returned an error"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.jobDuration, err = meter.Float64Histogram("kindfund.jobs.duration",
		metric.WithDescription("Scheduled job duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.milestonesUnlocked, err = meter.Int64Counter("kindfund.milestones.unlocked",
		metric.WithDescription("Donor milestones achieved"),
		metric.WithUnit("{milestone}"),
	); err != nil {
		return nil, err
	}
	if m.recurringCampaigns, err = meter.Int64Counter("kindfund.campaigns.occurrences_created",
		metric.WithDescription("Campaign occurrences generated from recurring campaigns"),
		metric.WithUnit("{campaign}"),
	); err != nil {
		return nil, err
	}
	if m.recurringDonations, err = meter.Int64Counter("kindfund.donations.installments_created",
		metric.WithDescription("Installments generated from recurring donations"),
		metric.WithUnit("{donation}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) DriftCorrected(ctx context.Context, kind string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.driftCorrections.Add(ctx, n, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *Metrics) JobFinished(ctx context.Context, job string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("job", job))
	m.jobRuns.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.jobFailures.Add(ctx, 1, attrs)
	}
}

func (m *Metrics) MilestonesUnlocked(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.milestonesUnlocked.Add(ctx, n)
}

func (m *Metrics) RecurringCampaignsCreated(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.recurringCampaigns.Add(ctx, n)
}

func (m *Metrics) RecurringDonationsCreated(ctx context.Context, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.recurringDonations.Add(ctx, n)
}
