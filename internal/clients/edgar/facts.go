package edgar

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// XBRL concept names used for the fundamental reduction.
const (
	conceptRevenues     = "Revenues"
	conceptLongTermDebt = "LongTermDebtNoncurrent"
	conceptEquity       = "StockholdersEquity"
)

// minTrustedYear is the earliest acceptable period-end year of the
// latest annual report; older filings are considered stale and the
// growth rate is left undefined.
const minTrustedYear = 2022

// CompanyFacts mirrors the EDGAR companyfacts document, limited to the
// parts the reduction needs.
type CompanyFacts struct {
	CIK        int64                 `json:"cik"`
	EntityName string                `json:"entityName"`
	Facts      map[string]ConceptSet `json:"facts"`
}

// ConceptSet maps XBRL concept names (e.g. "Revenues") to their data.
type ConceptSet map[string]Concept

// Concept holds the reported values of one XBRL concept per unit.
type Concept struct {
	Label string            `json:"label"`
	Units map[string][]Fact `json:"units"`
}

// Fact is a single reported value.
type Fact struct {
	End   string  `json:"end"` // period end date, YYYY-MM-DD
	Value float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"` // "FY" for annual reports
	Form  string  `json:"form"`
}

// Fundamentals is the reduction of a facts document to the two ratios
// the signal encoder consumes. Nil means the filings were insufficient
// to trust the value.
type Fundamentals struct {
	GrowthRate *float64 // YoY revenue growth, percent
	DebtEquity *float64
}

// annualUSDFacts extracts the FY (annual) USD facts of a concept,
// most recent first.
func annualUSDFacts(facts *CompanyFacts, concept string) []Fact {
	gaap, ok := facts.Facts["us-gaap"]
	if !ok {
		return nil
	}
	c, ok := gaap[concept]
	if !ok {
		return nil
	}

	var annual []Fact
	for _, f := range c.Units["USD"] {
		if f.FP == "FY" {
			annual = append(annual, f)
		}
	}

	// Reports arrive in chronological order; sort defensively anyway
	// so "most recent first" holds for out-of-order documents.
	sort.SliceStable(annual, func(i, j int) bool {
		return annual[i].End > annual[j].End
	})

	return annual
}

// periodEndYear parses the year out of a YYYY-MM-DD period end.
func periodEndYear(end string) (int, bool) {
	parts := strings.SplitN(end, "-", 2)
	if len(parts) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ReduceFundamentals reduces a company-facts document to the growth
// rate and debt/equity ratio.
//
// The growth rate is only trusted when at least two annual revenue
// reports exist and the latest one ends in minTrustedYear or later.
// The debt/equity ratio is only computed when the most recent annual
// debt and equity reports share the same period end and equity is
// positive.
func ReduceFundamentals(facts *CompanyFacts, log zerolog.Logger) Fundamentals {
	var out Fundamentals

	revenues := annualUSDFacts(facts, conceptRevenues)
	if len(revenues) >= 2 {
		year, ok := periodEndYear(revenues[0].End)
		if ok && year >= minTrustedYear {
			last := revenues[0].Value
			prev := revenues[1].Value
			if last > 0 && prev > 0 {
				growth := ((last - prev) / prev) * 100.0
				out.GrowthRate = &growth
			}
		} else {
			log.Debug().Str("end", revenues[0].End).Msg("Latest annual report too old for growth rate")
		}
	} else {
		log.Debug().Int("annual_reports", len(revenues)).Msg("Not enough annual reports for growth rate")
	}

	debts := annualUSDFacts(facts, conceptLongTermDebt)
	equities := annualUSDFacts(facts, conceptEquity)
	if len(debts) > 0 && len(equities) > 0 {
		debt := debts[0]
		equity := equities[0]
		if debt.End == equity.End && equity.Value > 0 {
			ratio := debt.Value / equity.Value
			out.DebtEquity = &ratio
		} else {
			log.Debug().
				Str("debt_end", debt.End).
				Str("equity_end", equity.End).
				Msg("Debt and equity report periods do not match")
		}
	}

	return out
}
