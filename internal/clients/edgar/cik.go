package edgar

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// company_tickers.json is the SEC's ticker-to-CIK mapping
// (https://www.sec.gov/files/company_tickers.json). A trimmed copy is
// embedded so ticker resolution works offline.
//
//go:embed company_tickers.json
var companyTickersJSON []byte

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

var (
	cikIndexOnce sync.Once
	cikIndex     map[string]int64
	cikIndexErr  error
)

// LookupCIK maps a ticker symbol to its zero-padded 10-digit CIK.
func LookupCIK(ticker string) (string, error) {
	cikIndexOnce.Do(func() {
		var entries map[string]tickerEntry
		if err := json.Unmarshal(companyTickersJSON, &entries); err != nil {
			cikIndexErr = fmt.Errorf("failed to parse company tickers: %w", err)
			return
		}

		cikIndex = make(map[string]int64, len(entries))
		for _, e := range entries {
			cikIndex[strings.ToUpper(e.Ticker)] = e.CIK
		}
	})
	if cikIndexErr != nil {
		return "", cikIndexErr
	}

	cik, ok := cikIndex[strings.ToUpper(ticker)]
	if !ok {
		return "", fmt.Errorf("CIK not found for ticker: %s", ticker)
	}

	return fmt.Sprintf("%010d", cik), nil
}
