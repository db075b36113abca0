package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"talktotoyota/domain"
	"talktotoyota/service"
)

// maxCheckoutHistory caps how much history the checkout assistant replays
// into the model per turn.
const maxCheckoutHistory = 12

type ConversationHandler struct {
	ai       *service.AIService
	checkout *service.CheckoutService
	logger   *slog.Logger
}

func NewConversationHandler(ai *service.AIService, checkout *service.CheckoutService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		ai:       ai,
		checkout: checkout,
		logger:   logger,
	}
}

type conversationRequest struct {
	Message             string                       `json:"message"`
	Context             *domain.ConversationContext  `json:"context"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
}

type conversationResponse struct {
	Response            string                       `json:"response"`
	FinancingState      *domain.FinancingState       `json:"financingState,omitempty"`
	FinancingResults    *domain.FinanceResult        `json:"financingResults,omitempty"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
}

func (h *ConversationHandler) Converse(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.ai.GenerateResponse(r.Context(), body.Message, body.Context, body.ConversationHistory)
	if err != nil {
		h.logger.Error("conversation turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate AI response")
		return
	}

	history := append(body.ConversationHistory,
		domain.ConversationMessage{Role: "user", Content: body.Message},
		domain.ConversationMessage{Role: "assistant", Content: reply.Response},
	)

	writeJSON(w, http.StatusOK, conversationResponse{
		Response:            reply.Response,
		FinancingState:      reply.FinancingState,
		FinancingResults:    reply.FinancingResults,
		ConversationHistory: history,
	})
}

type orderSummaryRequest struct {
	SalePrice        *float64 `json:"salePrice"`
	DownPayment      float64  `json:"downPayment"`
	TradeInValue     float64  `json:"tradeInValue"`
	IncentiveSavings float64  `json:"incentiveSavings"`
	SalesTaxRate     float64  `json:"salesTaxRate"`
}

// OrderSummary itemizes a deal for the checkout page so the frontend and
// the assistant agree on the numbers.
func (h *ConversationHandler) OrderSummary(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body orderSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SalePrice == nil || *body.SalePrice <= 0 {
		writeError(w, http.StatusBadRequest, "salePrice must be greater than 0")
		return
	}

	summary := h.checkout.BuildOrderSummary(
		*body.SalePrice, body.DownPayment, body.TradeInValue,
		body.IncentiveSavings, body.SalesTaxRate,
	)
	writeJSON(w, http.StatusOK, summary)
}

type checkoutRequest struct {
	Message             string                       `json:"message"`
	Context             *domain.CheckoutContext      `json:"context"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
}

type checkoutResponse struct {
	Response            string                       `json:"response"`
	ConversationHistory []domain.ConversationMessage `json:"conversationHistory"`
}

func (h *ConversationHandler) Checkout(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	history := body.ConversationHistory
	if len(history) > maxCheckoutHistory {
		history = history[len(history)-maxCheckoutHistory:]
	}

	response, err := h.checkout.GenerateResponse(r.Context(), body.Message, body.Context, history)
	if err != nil {
		h.logger.Error("checkout turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate checkout AI response")
		return
	}

	history = append(history,
		domain.ConversationMessage{Role: "user", Content: body.Message},
		domain.ConversationMessage{Role: "assistant", Content: response},
	)

	writeJSON(w, http.StatusOK, checkoutResponse{
		Response:            response,
		ConversationHistory: history,
	})
}
