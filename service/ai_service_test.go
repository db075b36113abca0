package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talktotoyota/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testVehicle() domain.Vehicle {
	return domain.Vehicle{
		ID:       "camry",
		Name:     "Toyota Camry",
		Price:    30000,
		MSRP:     31000,
		Category: "Cars & Minivan",
		Type:     "sedan",
	}
}

func TestExtractFinancingData(t *testing.T) {
	reply := `Great, a 720 score gets you strong rates!
[FINANCING_DATA: {"creditScore": 720, "downPayment": 5000}]`

	got := extractFinancingData(reply)
	require.NotNil(t, got)
	require.NotNil(t, got.CreditScore)
	assert.Equal(t, 720, *got.CreditScore)
	require.NotNil(t, got.DownPayment)
	assert.Equal(t, 5000.0, *got.DownPayment)
	assert.Nil(t, got.LoanTermMonths)
}

func TestExtractFinancingData_NoMarker(t *testing.T) {
	assert.Nil(t, extractFinancingData("Tell me more about your budget."))
}

func TestExtractFinancingData_MalformedJSON(t *testing.T) {
	assert.Nil(t, extractFinancingData(`[FINANCING_DATA: {creditScore: oops}]`))
}

func TestCleanAIResponse(t *testing.T) {
	raw := `Let me run those numbers for you! [FINANCING_DATA: {"loanTermMonths": 60}] [CALCULATE_FINANCING]`
	assert.Equal(t, "Let me run those numbers for you!", cleanAIResponse(raw))
}

func TestMergeFinancingState(t *testing.T) {
	score := 680
	down := 2000.0
	term := 48

	current := domain.FinancingState{CreditScore: &score, DownPayment: &down}
	partial := &domain.FinancingState{LoanTermMonths: &term}

	merged := mergeFinancingState(current, partial)
	assert.Equal(t, 680, *merged.CreditScore)
	assert.Equal(t, 2000.0, *merged.DownPayment)
	assert.Equal(t, 48, *merged.LoanTermMonths)

	// A new mention overwrites the old value.
	newScore := 700
	merged = mergeFinancingState(merged, &domain.FinancingState{CreditScore: &newScore})
	assert.Equal(t, 700, *merged.CreditScore)

	// Nil partial is a no-op.
	assert.Equal(t, merged, mergeFinancingState(merged, nil))
}

func TestFinancingState_RequiredComplete(t *testing.T) {
	score := 720
	down := 0.0
	term := 60

	assert.False(t, domain.FinancingState{}.RequiredComplete())
	assert.False(t, domain.FinancingState{CreditScore: &score, DownPayment: &down}.RequiredComplete())
	// A $0 down payment still counts as collected.
	assert.True(t, domain.FinancingState{
		CreditScore: &score, DownPayment: &down, LoanTermMonths: &term,
	}.RequiredComplete())
}

func TestGenerateResponse_DisabledWalksChecklist(t *testing.T) {
	svc := NewAIService("", "http://localhost:8080", NewFinanceService(), testLogger())
	vehicle := testVehicle()

	reply, err := svc.GenerateResponse(context.Background(), "I want the Camry",
		&domain.ConversationContext{SelectedVehicle: &vehicle}, nil)
	require.NoError(t, err)

	assert.Contains(t, reply.Response, "credit score")
	assert.Nil(t, reply.FinancingResults)
}

func TestGenerateResponse_CompleteChecklistTriggersQuote(t *testing.T) {
	svc := NewAIService("", "http://localhost:8080", NewFinanceService(), testLogger())
	vehicle := testVehicle()

	score := 720
	down := 3000.0
	term := 60
	state := domain.FinancingState{
		CreditScore:    &score,
		DownPayment:    &down,
		LoanTermMonths: &term,
	}

	reply, err := svc.GenerateResponse(context.Background(), "sounds good",
		&domain.ConversationContext{SelectedVehicle: &vehicle, FinancingState: &state}, nil)
	require.NoError(t, err)

	require.NotNil(t, reply.FinancingState)
	assert.True(t, reply.FinancingState.IsComplete)
	// Optional fields got their defaults: $0 trade-in, 8 percent tax.
	require.NotNil(t, reply.FinancingState.TradeInValue)
	assert.Equal(t, 0.0, *reply.FinancingState.TradeInValue)
	require.NotNil(t, reply.FinancingState.SalesTaxRate)
	assert.Equal(t, 8.0, *reply.FinancingState.SalesTaxRate)

	require.NotNil(t, reply.FinancingResults)
	assert.Equal(t, 6.2, reply.FinancingResults.APR)
	assert.Equal(t, 29960.0, reply.FinancingResults.AmountFinanced)
	assert.NotContains(t, reply.Response, calculateMarker)
}

func TestGenerateResponse_ExtractsDataFromModelReply(t *testing.T) {
	modelReply := `Nice, a 680 works! [FINANCING_DATA: {"creditScore": 680}]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, conversationModel, req.Model)
		if assert.NotEmpty(t, req.Messages) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[0].Content, "FINANCING CHECKLIST MODE")
		}

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message domain.ConversationMessage `json:"message"`
			}{
				{Message: domain.ConversationMessage{Role: "assistant", Content: modelReply}},
			},
		})
	}))
	defer server.Close()

	svc := NewAIService("test-key", "http://localhost:8080", NewFinanceService(), testLogger())
	svc.apiURL = server.URL
	vehicle := testVehicle()

	reply, err := svc.GenerateResponse(context.Background(), "my score is 680",
		&domain.ConversationContext{SelectedVehicle: &vehicle}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Nice, a 680 works!", reply.Response)
	require.NotNil(t, reply.FinancingState)
	require.NotNil(t, reply.FinancingState.CreditScore)
	assert.Equal(t, 680, *reply.FinancingState.CreditScore)
	assert.Nil(t, reply.FinancingResults, "checklist incomplete, no quote yet")
}

func TestChecklistInstructions_Status(t *testing.T) {
	empty := checklistInstructions(domain.FinancingState{})
	assert.Contains(t, empty, "✗ Credit Score: not collected")
	assert.Contains(t, empty, "NEXT ITEM: Credit score")

	score := 720
	down := 5000.0
	partial := checklistInstructions(domain.FinancingState{CreditScore: &score, DownPayment: &down})
	assert.Contains(t, partial, "✓ Credit Score: 720")
	assert.Contains(t, partial, "✓ Down Payment: $5,000")
	assert.Contains(t, partial, "NEXT ITEM: Loan term")

	term := 60
	tradeIn := 0.0
	tax := 8.25
	full := checklistInstructions(domain.FinancingState{
		CreditScore: &score, DownPayment: &down, LoanTermMonths: &term,
		TradeInValue: &tradeIn, SalesTaxRate: &tax,
	})
	assert.Contains(t, full, "○ Sales Tax: 8.25%")
	assert.Contains(t, full, "ALL REQUIRED ITEMS COMPLETE")
}

func TestComparePrompt_IncludesBothSnapshots(t *testing.T) {
	a := testVehicle()
	b := testVehicle()
	b.ID = "rav4"
	b.Name = "Toyota RAV4"

	prompt := comparePrompt(a, b, domain.FinancingState{})
	assert.Contains(t, prompt, "NAME: Toyota Camry")
	assert.Contains(t, prompt, "NAME: Toyota RAV4")
	assert.Contains(t, prompt, "FINANCING FOCUS:")
}
