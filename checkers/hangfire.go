package checkers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonwraymond/healthops/health"
)

// hangfireMetrics are requested from the dashboard's stats endpoint.
var hangfireMetrics = []string{"failed:count", "enqueued:count", "processing:count", "succeeded:count"}

// Hangfire reads job statistics from a Hangfire dashboard and fails once
// the failed job count reaches a threshold.
type Hangfire struct {
	name         string
	dashboardURL string
	maxFailed    int
	client       *http.Client
}

// NewHangfire creates a Hangfire checker. dashboardURL is the dashboard root,
// e.g. https://jobs.example.com/hangfire. A nil client uses a default one.
func NewHangfire(name, dashboardURL string, maxFailed int, client *http.Client) *Hangfire {
	if client == nil {
		client = &http.Client{}
	}
	return &Hangfire{
		name:         name,
		dashboardURL: strings.TrimRight(strings.TrimSpace(dashboardURL), "/"),
		maxFailed:    maxFailed,
		client:       client,
	}
}

// Name returns the check name.
func (c *Hangfire) Name() string {
	return c.name
}

type hangfireMetric struct {
	IntValue *int64 `json:"intValue"`
}

// Check posts to <dashboard>/stats and compares failed:count with the
// threshold.
func (c *Hangfire) Check(ctx context.Context) health.Result {
	form := url.Values{"metrics[]": hangfireMetrics}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dashboardURL+"/stats", strings.NewReader(form.Encode()))
	if err != nil {
		return health.Unhealthy("invalid dashboard url", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return health.Failure("stats request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		return health.Unhealthy(fmt.Sprintf("stats request returned %d", resp.StatusCode), err)
	}

	var stats map[string]hangfireMetric
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return health.Unhealthy("invalid stats response", err)
	}

	details := map[string]any{"maxFailedJobs": c.maxFailed}
	for _, m := range hangfireMetrics {
		if v := stats[m].IntValue; v != nil {
			details[m] = *v
		}
	}

	failed := stats["failed:count"].IntValue
	if failed == nil {
		return health.Unhealthy("stats response has no failed:count", fmt.Errorf("%w: missing failed:count", ErrUnexpectedStatus)).
			WithDetails(details)
	}
	if *failed >= int64(c.maxFailed) {
		return health.Unhealthy(
			fmt.Sprintf("Hangfire has %d failed jobs, threshold is %d.", *failed, c.maxFailed),
			fmt.Errorf("%w: %d failed jobs", ErrThresholdExceeded, *failed),
		).WithDetails(details)
	}
	return health.Healthy(fmt.Sprintf("Hangfire has %d failed jobs.", *failed)).WithDetails(details)
}
