package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talktotoyota/domain"
)

func TestBuildOrderSummary(t *testing.T) {
	svc := NewCheckoutService("", "http://localhost:8080", testLogger())

	// $30,000 sale, $2,000 trade, $1,000 incentive, 8% tax, $3,000 down.
	got := svc.BuildOrderSummary(30000, 3000, 2000, 1000, 0.08)

	assert.True(t, got.TaxableBase.Equal(decimal.NewFromInt(27000)), "taxable base %s", got.TaxableBase)
	assert.True(t, got.SalesTax.Equal(decimal.NewFromInt(2160)), "sales tax %s", got.SalesTax)
	assert.True(t, got.DocFee.Equal(decimal.NewFromInt(800)), "doc fee %s", got.DocFee)
	// 27000 + 2160 + 800 - 3000
	assert.True(t, got.BalanceFinanced.Equal(decimal.NewFromInt(26960)), "balance %s", got.BalanceFinanced)
	assert.True(t, got.DepositDue.Equal(decimal.NewFromInt(500)))
}

func TestBuildOrderSummary_ExactCents(t *testing.T) {
	svc := NewCheckoutService("", "http://localhost:8080", testLogger())

	// A tax rate that produces repeating binary fractions in float math.
	got := svc.BuildOrderSummary(28995, 0, 0, 0, 0.0625)

	// 28995 * 0.0625 = 1812.1875 -> 1812.19 at cent precision.
	assert.Equal(t, "1812.19", got.SalesTax.StringFixed(2))
	assert.Equal(t, "31607.19", got.BalanceFinanced.StringFixed(2))
}

func TestBuildOrderSummary_TinyBalanceWaivesDeposit(t *testing.T) {
	svc := NewCheckoutService("", "http://localhost:8080", testLogger())

	got := svc.BuildOrderSummary(5000, 4900, 0, 0, 0)
	// Balance is 5000 + 800 - 4900 = 900... still above the deposit.
	assert.True(t, got.DepositDue.Equal(decimal.NewFromInt(500)))

	got = svc.BuildOrderSummary(5000, 5600, 0, 0, 0)
	// Balance of $200 is below the deposit, so no separate deposit is due.
	assert.True(t, got.BalanceFinanced.Equal(decimal.NewFromInt(200)))
	assert.True(t, got.DepositDue.IsZero())
}

func TestGenerateCheckoutResponse_Disabled(t *testing.T) {
	svc := NewCheckoutService("", "http://localhost:8080", testLogger())

	got, err := svc.GenerateResponse(context.Background(), "am I ready?", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestBuildCheckoutPrompt_ContextBlocks(t *testing.T) {
	vehicle := testVehicle()
	payment := 582.0
	apr := 6.2

	prompt := buildCheckoutPrompt(&domain.CheckoutContext{
		Vehicle: &vehicle,
		FinancingSummary: &domain.FinancingSummary{
			MonthlyPayment: &payment,
			APR:            &apr,
		},
		AppliedOffer: &domain.Offer{
			Title:         "Flash Sales Bonus",
			SavingsAmount: 500,
			DeadlineHours: 48,
		},
	})

	assert.Contains(t, prompt, "Incentive Playbook")
	assert.Contains(t, prompt, "- Model: Toyota Camry")
	assert.Contains(t, prompt, "- Monthly Payment: $582")
	assert.Contains(t, prompt, "- APR: 6.2%")
	assert.Contains(t, prompt, "Flash Sales Bonus worth $500")
	assert.Contains(t, prompt, "within 48 hours")
}
