package domain

// AlternativeType tags which policy produced an alternative loan structure.
type AlternativeType string

const (
	AlternativeBase        AlternativeType = "base"
	AlternativeLongerTerm  AlternativeType = "longer-term"
	AlternativeHigherDown  AlternativeType = "higher-down"
	AlternativeShorterTerm AlternativeType = "shorter-term"
)

// FinanceRequest carries the buyer's loan parameters for a single quote.
// TradeInValue and SalesTaxRate are optional; defaults (0 and 0.08) are
// applied at the service boundary, never by the caller.
type FinanceRequest struct {
	VehiclePrice   float64  `json:"vehiclePrice"`
	CreditScore    int      `json:"creditScore"`
	DownPayment    float64  `json:"downPayment"`
	LoanTermMonths int      `json:"loanTermMonths"`
	TradeInValue   *float64 `json:"tradeInValue,omitempty"`
	SalesTaxRate   *float64 `json:"salesTaxRate,omitempty"` // decimal fraction, 0.08 = 8%
}

// Alternative is one loan structure presented to the buyer. The base entry
// echoes the as-entered selection; the other types vary exactly one
// parameter. LoanTermMonths and DownPayment are present only when the
// alternative pins that parameter.
type Alternative struct {
	Description     string          `json:"description"`
	MonthlyPayment  float64         `json:"monthlyPayment"`
	LoanTermMonths  *int            `json:"loanTermMonths,omitempty"`
	DownPayment     *float64        `json:"downPayment,omitempty"`
	Savings         float64         `json:"savings"`         // positive = cheaper per month
	TotalCostChange float64         `json:"totalCostChange"` // negative = cheaper overall
	AmountFinanced  float64         `json:"amountFinanced"`
	TotalCost       float64         `json:"totalCost"`
	APR             float64         `json:"apr"`
	Type            AlternativeType `json:"type"`
}

// FinanceResult is the complete quote: headline numbers rounded to whole
// dollars, the narrative recommendation, and the alternatives list with the
// base entry first.
type FinanceResult struct {
	MonthlyPayment float64       `json:"monthlyPayment"`
	APR            float64       `json:"apr"`
	TotalInterest  float64       `json:"totalInterest"`
	TotalCost      float64       `json:"totalCost"`
	AmountFinanced float64       `json:"amountFinanced"`
	Recommendation string        `json:"recommendation"`
	Alternatives   []Alternative `json:"alternatives"`
}

// APREstimate is the lightweight rate lookup keyed by credit score alone.
type APREstimate struct {
	CreditScore int     `json:"creditScore"`
	APR         float64 `json:"apr"`
	Tier        string  `json:"tier"`
}
