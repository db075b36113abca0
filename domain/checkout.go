package domain

import "github.com/shopspring/decimal"

// Offer is a time-boxed purchase incentive applied at checkout.
type Offer struct {
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	SavingsAmount float64 `json:"savingsAmount"`
	DeadlineHours int     `json:"deadlineHours"`
}

// FinancingSummary is the slice of a FinanceResult the checkout assistant
// needs for its pitch. All fields are optional; the customer may reach
// checkout without a quote.
type FinancingSummary struct {
	MonthlyPayment *float64 `json:"monthlyPayment,omitempty"`
	APR            *float64 `json:"apr,omitempty"`
	TotalCost      *float64 `json:"totalCost,omitempty"`
	AmountFinanced *float64 `json:"amountFinanced,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// CheckoutContext carries what the checkout assistant knows about the deal.
type CheckoutContext struct {
	Vehicle          *Vehicle          `json:"vehicle,omitempty"`
	FinancingSummary *FinancingSummary `json:"financingSummary,omitempty"`
	AppliedOffer     *Offer            `json:"appliedOffer,omitempty"`
}

// OrderSummary itemizes the deal at signing time. Line items are exact
// decimals; this is paperwork arithmetic, not the quote engine.
type OrderSummary struct {
	SalePrice       decimal.Decimal `json:"salePrice"`
	TradeInCredit   decimal.Decimal `json:"tradeInCredit"`
	IncentiveSaving decimal.Decimal `json:"incentiveSavings"`
	TaxableBase     decimal.Decimal `json:"taxableBase"`
	SalesTax        decimal.Decimal `json:"salesTax"`
	DocFee          decimal.Decimal `json:"docFee"`
	DownPayment     decimal.Decimal `json:"downPayment"`
	DepositDue      decimal.Decimal `json:"depositDue"`
	BalanceFinanced decimal.Decimal `json:"balanceFinanced"`
}
