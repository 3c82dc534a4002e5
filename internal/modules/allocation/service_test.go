package allocation

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jleechris06/optimizeme/internal/modules/blacklitterman"
	"github.com/jleechris06/optimizeme/internal/modules/marketdata"
	"github.com/jleechris06/optimizeme/internal/modules/optimization"
	"github.com/jleechris06/optimizeme/internal/modules/signals"
	"github.com/jleechris06/optimizeme/internal/modules/views"
	"github.com/jleechris06/optimizeme/pkg/matrix"
)

type stubFundamentals struct {
	data map[string]signals.Fundamentals
	errs map[string]error
}

func (s *stubFundamentals) Fundamentals(_ context.Context, symbol string) (signals.Fundamentals, error) {
	if err := s.errs[symbol]; err != nil {
		return signals.Fundamentals{}, err
	}
	return s.data[symbol], nil
}

type stubSentiment struct {
	data map[string][]signals.Signal
}

func (s *stubSentiment) ArticleSentiments(_ context.Context, symbol string) ([]signals.Signal, error) {
	return s.data[symbol], nil
}

type stubMarket struct {
	err error
}

func (s *stubMarket) Snapshot(_ context.Context, symbols []string) (marketdata.Snapshot, error) {
	if s.err != nil {
		return marketdata.Snapshot{}, s.err
	}

	n := len(symbols)
	sigma := matrix.New(n, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		sigma[i][i] = 0.04 + 0.01*float64(i)
		for j := 0; j < n; j++ {
			if i != j {
				sigma[i][j] = 0.005
			}
		}
		weights[i] = 1.0 / float64(n)
	}

	return marketdata.Snapshot{Symbols: symbols, Sigma: sigma, Weights: weights}, nil
}

func ptr(f float64) *float64 { return &f }

func testService(f FundamentalsSource, s SentimentSource, m MarketSource) *Service {
	kernel := matrix.DefaultKernel(zerolog.Nop())
	return NewService(
		f, s, m,
		views.NewBuilder(0.01),
		blacklitterman.NewEngine(kernel, zerolog.Nop()),
		optimization.NewOptimizer(kernel, zerolog.Nop()),
		0.025,
		zerolog.Nop(),
	)
}

func TestAllocate(t *testing.T) {
	fundamentals := &stubFundamentals{
		data: map[string]signals.Fundamentals{
			"MSFT":  {GrowthRate: ptr(8.0), DebtEquity: ptr(1.2)},
			"TSLA":  {GrowthRate: ptr(-3.0), DebtEquity: ptr(2.5)},
			"GOOGL": {GrowthRate: ptr(0.3)},
		},
	}
	sentiment := &stubSentiment{
		data: map[string][]signals.Signal{
			"MSFT":  {{Bad: 0.1, Neutral: 0.2, Good: 0.7}},
			"TSLA":  {{Bad: 0.6, Neutral: 0.3, Good: 0.1}},
			"GOOGL": {{Bad: 0.3, Neutral: 0.4, Good: 0.3}},
		},
	}

	svc := testService(fundamentals, sentiment, &stubMarket{})

	result, err := svc.Allocate(context.Background(), []string{"MSFT", "TSLA", "GOOGL"})
	require.NoError(t, err)

	require.Len(t, result.Order, 3)
	require.Len(t, result.Weights, 3)
	require.Len(t, result.PosteriorReturns, 3)

	// TSLA has bad sentiment and bad fundamentals, so it ranks lowest.
	assert.Equal(t, "TSLA", result.Order[0])
	assert.Equal(t, "MSFT", result.Order[2])

	// Scalar signals are ascending along the order.
	for i := 1; i < len(result.Order); i++ {
		assert.LessOrEqual(t,
			result.ScalarSignals[result.Order[i-1]],
			result.ScalarSignals[result.Order[i]])
	}

	// Weights normalized.
	sum := 0.0
	for _, w := range result.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAllocateNoSymbols(t *testing.T) {
	svc := testService(&stubFundamentals{}, &stubSentiment{}, &stubMarket{})

	_, err := svc.Allocate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSymbols)
}

func TestAllocateFundamentalsErrorDegrades(t *testing.T) {
	// A fundamentals fetch failure must not drop the symbol: the two
	// zero-information vectors still aggregate with sentiment.
	fundamentals := &stubFundamentals{
		errs: map[string]error{"MSFT": fmt.Errorf("edgar down")},
	}
	sentiment := &stubSentiment{
		data: map[string][]signals.Signal{
			"MSFT": {{Bad: 0.1, Neutral: 0.2, Good: 0.7}},
			"TSLA": {{Bad: 0.5, Neutral: 0.4, Good: 0.1}},
		},
	}

	svc := testService(fundamentals, sentiment, &stubMarket{})

	result, err := svc.Allocate(context.Background(), []string{"MSFT", "TSLA"})
	require.NoError(t, err)
	assert.Len(t, result.Order, 2)
}

func TestAllocateMarketFailure(t *testing.T) {
	sentiment := &stubSentiment{
		data: map[string][]signals.Signal{
			"MSFT": {{Bad: 0.1, Neutral: 0.2, Good: 0.7}},
		},
	}
	svc := testService(&stubFundamentals{}, sentiment, &stubMarket{err: fmt.Errorf("yahoo down")})

	_, err := svc.Allocate(context.Background(), []string{"MSFT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market snapshot")
}
