package scheduler

import (
	"context"
	"time"

	"github.com/jleechris06/optimizeme/internal/modules/marketdata"
)

// MarketRefreshJob re-fetches cached price history so allocation runs
// start from fresh covariance inputs.
type MarketRefreshJob struct {
	market  *marketdata.Service
	timeout time.Duration
}

// NewMarketRefreshJob creates the refresh job.
func NewMarketRefreshJob(market *marketdata.Service) *MarketRefreshJob {
	return &MarketRefreshJob{
		market:  market,
		timeout: 10 * time.Minute,
	}
}

// Name implements Job.
func (j *MarketRefreshJob) Name() string {
	return "market_refresh"
}

// Run implements Job.
func (j *MarketRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	return j.market.Refresh(ctx)
}
