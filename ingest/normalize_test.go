// ABOUTME: Tests for field normalizers
// ABOUTME: Covers currency stripping, probability clamping, serial dates, and stage mapping
package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/harperreed/crmflow/models"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *float64
	}{
		{"float passthrough", 1234.56, f(1234.56)},
		{"int passthrough", 500, f(500)},
		{"currency string", "$1,234.56", f(1234.56)},
		{"plain string", "99.5", f(99.5)},
		{"whitespace", "  $2,000  ", f(2000)},
		{"empty string", "", nil},
		{"garbage", "call me", nil},
		{"nil", nil, nil},
		{"nan text", "NaN", nil},
		{"inf text", "+Inf", nil},
		{"nan float", math.NaN(), nil},
		{"inf float", math.Inf(-1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmount(tt.input)
			if !floatPtrEqual(got, tt.want) {
				t.Errorf("NormalizeAmount(%v) = %v, want %v", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalizeProbability(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *float64
	}{
		{"plain", 50.0, f(50)},
		{"percent string", "75%", f(75)},
		{"clamped high", 150.0, f(100)},
		{"clamped low", "-5%", f(0)},
		{"garbage", "maybe", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeProbability(tt.input)
			if !floatPtrEqual(got, tt.want) {
				t.Errorf("NormalizeProbability(%v) = %v, want %v", tt.input, deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalizeDateSerial(t *testing.T) {
	// Serial 25569 is 1970-01-01 in the 1899-12-30 epoch system
	got := NormalizeDate(25569.0)
	if got == nil {
		t.Fatal("Expected a date for serial 25569")
	}
	want := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizeDate(25569) = %v, want %v", got, want)
	}
}

func TestNormalizeDateString(t *testing.T) {
	got := NormalizeDate("2024-03-15")
	if got == nil {
		t.Fatal("Expected a date for 2024-03-15")
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("NormalizeDate parsed to %v", got)
	}

	if NormalizeDate("not a date") != nil {
		t.Error("Expected nil for unparsable date")
	}
	if NormalizeDate("") != nil {
		t.Error("Expected nil for empty date")
	}
	if NormalizeDate(math.NaN()) != nil {
		t.Error("Expected nil for NaN serial")
	}
	if NormalizeDate(math.Inf(1)) != nil {
		t.Error("Expected nil for infinite serial")
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{"Qualification", models.StageQualified},
		{"Qualifying", models.StageQualified},
		// "lead" sits in the first rule, so the ordered table wins over "qualified"
		{"qualified lead", models.StageNew},
		{"Closed-Won", models.StageClosedWon},
		{"closed lost", models.StageClosedLost},
		{"Sending Quote", models.StageProposal},
		{"In Negotiation", models.StageNegotiation},
		{"New Lead", models.StageNew},
		{"something else entirely", models.StageNew},
		{"", models.StageNew},
		{nil, models.StageNew},
	}

	for _, tt := range tests {
		if got := NormalizeStage(tt.input); got != tt.want {
			t.Errorf("NormalizeStage(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestColumnValueHeaderMatching(t *testing.T) {
	row := Row{
		"  company name ": "Acme Corp",
		"Amount":          5000.0,
		"Stage":           "  ",
	}

	if got := columnString(row, companyHeaders); got != "Acme Corp" {
		t.Errorf("Expected case-insensitive header match, got %q", got)
	}

	if got := columnValue(row, amountHeaders); got != 5000.0 {
		t.Errorf("Expected exact header match, got %v", got)
	}

	// Whitespace-only values read as absent
	if got := columnValue(row, stageHeaders); got != nil {
		t.Errorf("Expected nil for blank cell, got %v", got)
	}
}

func TestParseLeadRowRequiresName(t *testing.T) {
	_, err := ParseLeadRow(Row{"Owner": "Jane Doe"})
	if err == nil {
		t.Error("Expected error for row without company or opportunity name")
	}

	lead, err := ParseLeadRow(Row{"Opportunity": "Acme Renewal"})
	if err != nil {
		t.Fatalf("ParseLeadRow failed: %v", err)
	}
	if lead.Account != nil {
		t.Error("Expected no account input without a company column")
	}
	if lead.Opportunity == nil || lead.Opportunity.Name != "Acme Renewal" {
		t.Errorf("Opportunity input not parsed: %+v", lead.Opportunity)
	}
	// Absent stage column stays empty so merges cannot revert stored stages
	if lead.Opportunity.Stage != "" {
		t.Errorf("Expected empty stage for absent column, got %q", lead.Opportunity.Stage)
	}
}

func f(v float64) *float64 { return &v }

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
