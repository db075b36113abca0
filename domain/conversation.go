package domain

// ConversationMessage is one turn in the chat history. Role is "user",
// "assistant" or "system".
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FinancingState is the checklist of financing fields collected so far
// during a conversation. It is owned by the caller and passed back in on
// every turn; the server keeps no ambient copy. Pointer fields distinguish
// "not collected yet" from a legitimate zero (a $0 down payment counts as
// collected). SalesTaxRate is a whole-number percent here (8 = 8%) and is
// divided by 100 before it reaches the financing engine.
type FinancingState struct {
	CreditScore    *int     `json:"creditScore,omitempty"`
	DownPayment    *float64 `json:"downPayment,omitempty"`
	LoanTermMonths *int     `json:"loanTermMonths,omitempty"`
	TradeInValue   *float64 `json:"tradeInValue,omitempty"`
	SalesTaxRate   *float64 `json:"salesTaxRate,omitempty"` // whole percent
	IsComplete     bool     `json:"isComplete,omitempty"`
}

// RequiredComplete reports whether the three required checklist items have
// been collected. A zero down payment is valid; a zero credit score or term
// is not.
func (s FinancingState) RequiredComplete() bool {
	return s.CreditScore != nil && *s.CreditScore != 0 &&
		s.DownPayment != nil &&
		s.LoanTermMonths != nil && *s.LoanTermMonths != 0
}

// ConversationContext is everything the caller knows about the session:
// browsed vehicles, the vehicle under discussion, vehicles being compared,
// and the financing checklist progress.
type ConversationContext struct {
	Vehicles        []Vehicle       `json:"vehicles,omitempty"`
	CurrentCategory string          `json:"currentCategory,omitempty"`
	SelectedVehicle *Vehicle        `json:"selectedVehicle,omitempty"`
	CompareVehicles []Vehicle       `json:"compareVehicles,omitempty"`
	FinancingState  *FinancingState `json:"financingState,omitempty"`
}

// ConversationReply is one assistant turn: the customer-facing text with all
// control markers stripped, the updated checklist, and a financing quote
// when this turn triggered one.
type ConversationReply struct {
	Response         string          `json:"response"`
	FinancingState   *FinancingState `json:"financingState,omitempty"`
	FinancingResults *FinanceResult  `json:"financingResults,omitempty"`
}
