// ABOUTME: Typed input records parsed from spreadsheet rows
// ABOUTME: Validates loosely-shaped rows once at the normalizer boundary
package ingest

import (
	"fmt"
	"time"
)

// Header candidate lists, checked in order by columnValue.
var (
	companyHeaders     = []string{"Company", "Company Name", "Account", "Account Name"}
	opportunityHeaders = []string{"Opportunity", "Opportunity Name", "Deal", "Deal Name"}
	amountHeaders      = []string{"Amount", "Deal Amount", "Value", "Deal Value"}
	stageHeaders       = []string{"Stage", "Deal Stage", "Status"}
	probabilityHeaders = []string{"Probability", "Win Probability", "Prob"}
	closeDateHeaders   = []string{"Close Date", "Expected Close Date", "Expected Close", "Closing Date"}
	ownerHeaders       = []string{"Owner", "Deal Owner", "Assigned To", "Sales Rep"}
	ownerEmailHeaders  = []string{"Owner Email", "Rep Email"}
	websiteHeaders     = []string{"Website", "Web Site", "URL"}
	industryHeaders    = []string{"Industry", "Sector"}
	phoneHeaders       = []string{"Phone", "Phone Number", "Company Phone"}
	emailHeaders       = []string{"Email", "Company Email", "Contact Email"}
	sizeHeaders        = []string{"Size", "Company Size", "Employees"}
	revenueHeaders     = []string{"Revenue", "Annual Revenue"}
	cq1Headers         = []string{"CQ1", "Qualifying Question 1", "Question 1"}
	cq2Headers         = []string{"CQ2", "Qualifying Question 2", "Question 2"}
	cq3Headers         = []string{"CQ3", "Qualifying Question 3", "Question 3"}
)

// AccountInput is the account-shaped slice of one lead row. Optional fields
// are empty strings when the row lacks them.
type AccountInput struct {
	Name     string
	Website  string
	Industry string
	Phone    string
	Email    string

	// Structured attributes feeding the description rebuild.
	Size      string
	Revenue   string
	Responses [3]string
}

// OpportunityInput is the opportunity-shaped slice of one lead row. Nil
// pointers and an empty Stage mean the row lacked the field; merges never
// clear populated scalars with absent input.
type OpportunityInput struct {
	Name              string
	Amount            *float64
	Stage             string
	Probability       *float64
	ExpectedCloseDate *time.Time
}

// LeadInput is one validated spreadsheet row.
type LeadInput struct {
	Account     *AccountInput
	Opportunity *OpportunityInput
	OwnerName   string
	OwnerEmail  string
}

// ParseLeadRow validates a raw row into typed inputs. A row with neither a
// company nor an opportunity name is malformed and fails the unit.
func ParseLeadRow(row Row) (*LeadInput, error) {
	companyName := columnString(row, companyHeaders)
	opportunityName := columnString(row, opportunityHeaders)

	if companyName == "" && opportunityName == "" {
		return nil, fmt.Errorf("row has no company or opportunity name")
	}

	lead := &LeadInput{
		OwnerName:  columnString(row, ownerHeaders),
		OwnerEmail: columnString(row, ownerEmailHeaders),
	}

	if companyName != "" {
		lead.Account = &AccountInput{
			Name:     companyName,
			Website:  columnString(row, websiteHeaders),
			Industry: columnString(row, industryHeaders),
			Phone:    columnString(row, phoneHeaders),
			Email:    columnString(row, emailHeaders),
			Size:     columnString(row, sizeHeaders),
			Revenue:  columnString(row, revenueHeaders),
			Responses: [3]string{
				columnString(row, cq1Headers),
				columnString(row, cq2Headers),
				columnString(row, cq3Headers),
			},
		}
	}

	if opportunityName != "" {
		opp := &OpportunityInput{
			Name:              opportunityName,
			Amount:            NormalizeAmount(columnValue(row, amountHeaders)),
			Probability:       NormalizeProbability(columnValue(row, probabilityHeaders)),
			ExpectedCloseDate: NormalizeDate(columnValue(row, closeDateHeaders)),
		}

		// Stage stays empty when the column is absent so a later merge
		// cannot revert an existing stage to the default.
		if stageVal := columnValue(row, stageHeaders); stageVal != nil {
			opp.Stage = NormalizeStage(stageVal)
		}

		lead.Opportunity = opp
	}

	return lead, nil
}
