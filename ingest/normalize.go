// ABOUTME: Canonical field normalization for loosely-typed external values
// ABOUTME: Converts cell/header values into typed amounts, probabilities, dates, and stages
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/harperreed/crmflow/models"
)

// Row is one spreadsheet row keyed by header text. Values are either string
// or float64; the sheet reader converts raw numeric cells before any
// normalizer sees them.
type Row map[string]any

// sheetEpoch is day zero of the conventional spreadsheet serial date system.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const msPerDay = 86400000

// NormalizeAmount accepts numeric values verbatim. Strings are stripped of
// currency formatting ("$", ",") and parsed as floating point. Anything else
// is absent.
func NormalizeAmount(v any) *float64 {
	switch val := v.(type) {
	case float64:
		if !isFinite(val) {
			return nil
		}
		return &val
	case int:
		f := float64(val)
		return &f
	case string:
		s := strings.TrimSpace(val)
		s = strings.ReplaceAll(s, "$", "")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !isFinite(f) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// NormalizeProbability handles input like NormalizeAmount (plus a trailing
// "%") and clamps the result into [0,100].
func NormalizeProbability(v any) *float64 {
	if s, ok := v.(string); ok {
		v = strings.ReplaceAll(s, "%", "")
	}

	p := NormalizeAmount(v)
	if p == nil {
		return nil
	}

	clamped := *p
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}
	return &clamped
}

// NormalizeDate interprets numeric values as a day count from the spreadsheet
// epoch (1899-12-30, one day = 86 400 000 ms). Strings go through a general
// date parser; time.Time values pass through. Unparsable input is absent.
func NormalizeDate(v any) *time.Time {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return &val
	case float64:
		if !isFinite(val) {
			return nil
		}
		t := sheetEpoch.Add(time.Duration(val*msPerDay) * time.Millisecond)
		return &t
	case int:
		t := sheetEpoch.Add(time.Duration(val) * 24 * time.Hour)
		return &t
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}

// stageRules is checked in order; the first rule with a matching keyword wins.
var stageRules = []struct {
	keywords []string
	stage    string
}{
	{[]string{"new", "lead", "prospect"}, models.StageNew},
	{[]string{"qualified", "qualify", "qualification"}, models.StageQualified},
	{[]string{"proposal", "quote", "quoting"}, models.StageProposal},
	{[]string{"negotiation", "negotiate"}, models.StageNegotiation},
	{[]string{"won"}, models.StageClosedWon},
	{[]string{"lost"}, models.StageClosedLost},
}

// NormalizeStage classifies free text against the fixed keyword table by
// case-insensitive substring match. Unmatched or absent input defaults to
// "New" rather than absent; stage is never optional downstream.
func NormalizeStage(v any) string {
	s, ok := v.(string)
	if !ok {
		return models.StageNew
	}

	lowered := strings.ToLower(strings.TrimSpace(s))
	if lowered == "" {
		return models.StageNew
	}

	for _, rule := range stageRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.stage
			}
		}
	}

	return models.StageNew
}

// columnValue returns the first non-empty value found for the candidate
// headers: exact key match first, then case-insensitive trimmed key match.
func columnValue(row Row, candidates []string) any {
	for _, header := range candidates {
		if v, ok := row[header]; ok && !isEmptyValue(v) {
			return v
		}
	}

	for _, header := range candidates {
		want := strings.ToLower(strings.TrimSpace(header))
		for key, v := range row {
			if strings.ToLower(strings.TrimSpace(key)) == want && !isEmptyValue(v) {
				return v
			}
		}
	}

	return nil
}

func columnString(row Row, candidates []string) string {
	v := columnValue(row, candidates)
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// isFinite rejects the NaN/Inf values strconv.ParseFloat happily produces
// from cell text like "NaN" or "+Inf".
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
