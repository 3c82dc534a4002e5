package allocation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jleechris06/optimizeme/internal/clients/edgar"
	"github.com/jleechris06/optimizeme/internal/clients/finbert"
	"github.com/jleechris06/optimizeme/internal/clients/news"
	"github.com/jleechris06/optimizeme/internal/database/repositories"
	"github.com/jleechris06/optimizeme/internal/modules/signals"
)

// EdgarFundamentalsSource adapts the EDGAR client to the pipeline's
// FundamentalsSource interface.
type EdgarFundamentalsSource struct {
	client *edgar.Client
}

// NewEdgarFundamentalsSource wraps an EDGAR client.
func NewEdgarFundamentalsSource(client *edgar.Client) *EdgarFundamentalsSource {
	return &EdgarFundamentalsSource{client: client}
}

// Fundamentals implements FundamentalsSource.
func (e *EdgarFundamentalsSource) Fundamentals(ctx context.Context, symbol string) (signals.Fundamentals, error) {
	f, err := e.client.Fundamentals(ctx, symbol)
	if err != nil {
		return signals.Fundamentals{}, err
	}

	return signals.Fundamentals{
		GrowthRate: f.GrowthRate,
		DebtEquity: f.DebtEquity,
	}, nil
}

// NewsSentimentSource is the production SentimentSource: it scrapes
// recent articles for a ticker and scores each with FinBERT.
type NewsSentimentSource struct {
	scraper *news.Scraper
	scorer  *finbert.Client
	repo    *repositories.SnapshotRepository // optional audit trail
	log     zerolog.Logger
}

// NewNewsSentimentSource composes the news scraper and FinBERT client.
func NewNewsSentimentSource(
	scraper *news.Scraper,
	scorer *finbert.Client,
	repo *repositories.SnapshotRepository,
	log zerolog.Logger,
) *NewsSentimentSource {
	return &NewsSentimentSource{
		scraper: scraper,
		scorer:  scorer,
		repo:    repo,
		log:     log.With().Str("component", "news_sentiment").Logger(),
	}
}

// ArticleSentiments returns one signal per scraped article. A scoring
// failure contributes the zero signal so one bad article never sinks
// the symbol.
func (n *NewsSentimentSource) ArticleSentiments(ctx context.Context, symbol string) ([]signals.Signal, error) {
	texts, err := n.scraper.ArticleTexts(ctx, symbol)
	if err != nil {
		return nil, err
	}

	sigs := make([]signals.Signal, 0, len(texts))
	for _, text := range texts {
		scores, err := n.scorer.Score(ctx, text)
		if err != nil {
			n.log.Warn().Err(err).Str("symbol", symbol).Msg("Sentiment scoring failed")
			scores = [3]float64{}
		}

		sig := signals.Signal{Bad: scores[0], Neutral: scores[1], Good: scores[2]}
		sigs = append(sigs, sig)

		if n.repo != nil && !sig.IsZero() {
			if err := n.repo.SaveArticleSentiment(symbol, sig.Bad, sig.Neutral, sig.Good); err != nil {
				n.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to persist article sentiment")
			}
		}
	}

	return sigs, nil
}
