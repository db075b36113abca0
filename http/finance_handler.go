package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"talktotoyota/domain"
	"talktotoyota/service"
)

type FinanceHandler struct {
	service *service.FinanceService
}

func NewFinanceHandler(service *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{service: service}
}

// financeRequestBody uses pointers so a missing field can be told apart
// from an explicit zero (a $0 down payment is a valid submission).
type financeRequestBody struct {
	VehiclePrice   *float64 `json:"vehiclePrice"`
	CreditScore    *int     `json:"creditScore"`
	DownPayment    *float64 `json:"downPayment"`
	LoanTermMonths *int     `json:"loanTermMonths"`
	TradeInValue   *float64 `json:"tradeInValue"`
	SalesTaxRate   *float64 `json:"salesTaxRate"`
}

func (h *FinanceHandler) CalculateFinancing(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body financeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.VehiclePrice == nil || body.CreditScore == nil ||
		body.DownPayment == nil || body.LoanTermMonths == nil {
		writeError(w, http.StatusBadRequest,
			"Missing required fields: vehiclePrice, creditScore, downPayment, loanTermMonths")
		return
	}

	result, err := h.service.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice:   *body.VehiclePrice,
		CreditScore:    *body.CreditScore,
		DownPayment:    *body.DownPayment,
		LoanTermMonths: *body.LoanTermMonths,
		TradeInValue:   body.TradeInValue,
		SalesTaxRate:   body.SalesTaxRate,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// APREstimate answers a quick rate lookup keyed only by credit score. The
// tier table is deliberately standalone so the endpoint carries no engine
// state; TestAPREstimateMatchesEngine keeps it in lockstep with the quote
// engine's table.
func (h *FinanceHandler) APREstimate(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	creditScore, err := strconv.Atoi(r.PathValue("creditScore"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid credit score")
		return
	}
	if creditScore < 300 || creditScore > 850 {
		writeError(w, http.StatusBadRequest, "Credit score must be between 300 and 850")
		return
	}

	var apr float64
	var tier string
	switch {
	case creditScore >= 750:
		apr, tier = 5.0, "Excellent"
	case creditScore >= 700:
		apr, tier = 6.2, "Good"
	case creditScore >= 650:
		apr, tier = 9.0, "Fair"
	case creditScore >= 600:
		apr, tier = 13.5, "Poor"
	default:
		apr, tier = 17.0, "Bad"
	}

	writeJSON(w, http.StatusOK, domain.APREstimate{
		CreditScore: creditScore,
		APR:         apr,
		Tier:        tier,
	})
}
