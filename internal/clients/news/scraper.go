// Package news scrapes recent news articles about a ticker from Google
// News search results.
package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// maxArticles caps how many article bodies are fetched per ticker.
const maxArticles = 5

var resultURLPattern = regexp.MustCompile(`/url\?q=(https://[^&]+)&`)

// Scraper fetches article texts for a ticker.
type Scraper struct {
	client *http.Client
	log    zerolog.Logger
}

// NewScraper creates a new news scraper.
func NewScraper(log zerolog.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "news").Logger(),
	}
}

// ArticleTexts searches Google News for the ticker and returns the
// extracted body text of up to maxArticles results. Articles that fail
// to fetch contribute an empty string; the batch never aborts on a
// single bad article.
func (s *Scraper) ArticleTexts(ctx context.Context, ticker string) ([]string, error) {
	urls, err := s.searchResultURLs(ctx, ticker)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(urls))
	for _, articleURL := range urls {
		text, err := s.articleText(ctx, articleURL)
		if err != nil {
			s.log.Warn().Err(err).Str("url", articleURL).Msg("Failed to scrape article")
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}

	s.log.Debug().
		Str("ticker", ticker).
		Int("articles", len(texts)).
		Msg("Scraped news articles")

	return texts, nil
}

// searchResultURLs collects up to maxArticles result links from a
// Google News search page.
func (s *Scraper) searchResultURLs(ctx context.Context, ticker string) ([]string, error) {
	searchURL := fmt.Sprintf("https://www.google.com/search?q=%s&tbm=nws",
		url.QueryEscape(ticker+" stock news"))

	doc, err := s.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("news search for %s: %w", ticker, err)
	}

	var urls []string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		if m := resultURLPattern.FindStringSubmatch(href); m != nil {
			urls = append(urls, m[1])
		}
		return len(urls) < maxArticles
	})

	return urls, nil
}

// articleText extracts an article body by joining its paragraph text.
func (s *Scraper) articleText(ctx context.Context, articleURL string) (string, error) {
	doc, err := s.fetchDocument(ctx, articleURL)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n"), nil
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
