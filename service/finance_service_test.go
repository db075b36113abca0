package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talktotoyota/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveAPR_TierTable(t *testing.T) {
	svc := NewFinanceService()

	cases := []struct {
		score int
		apr   float64
		tier  string
	}{
		{850, 5.0, "Excellent"},
		{750, 5.0, "Excellent"},
		{749, 6.2, "Good"},
		{700, 6.2, "Good"},
		{699, 9.0, "Fair"},
		{650, 9.0, "Fair"},
		{649, 13.5, "Poor"},
		{600, 13.5, "Poor"},
		{599, 17.0, "Bad"},
		{300, 17.0, "Bad"},
	}

	for _, tc := range cases {
		apr, tier := svc.CreditTier(tc.score)
		assert.Equal(t, tc.apr, apr, "score %d", tc.score)
		assert.Equal(t, tc.tier, tier, "score %d", tc.score)
		assert.Equal(t, tc.apr, svc.ResolveAPR(tc.score), "score %d", tc.score)
	}
}

func TestResolveAPR_MonotonicNonIncreasing(t *testing.T) {
	svc := NewFinanceService()

	prev := svc.ResolveAPR(MinCreditScore)
	for score := MinCreditScore + 1; score <= MaxCreditScore; score++ {
		apr := svc.ResolveAPR(score)
		assert.LessOrEqual(t, apr, prev, "APR rose at score %d", score)
		prev = apr
	}
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	svc := NewFinanceService()

	assert.Equal(t, 100.0, svc.MonthlyPayment(1200, 0, 12))
	assert.Equal(t, 500.0, svc.MonthlyPayment(30000, 0, 60))
}

func TestMonthlyPayment_TotalCoversPrincipal(t *testing.T) {
	svc := NewFinanceService()

	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{29960, 6.2, 60},
		{10000, 17.0, 36},
		{50000, 5.0, 72},
		{800, 9.0, 48},
	}

	for _, tc := range cases {
		payment := svc.MonthlyPayment(tc.principal, tc.rate, tc.term)
		total := payment * float64(tc.term)
		assert.GreaterOrEqual(t, total, tc.principal,
			"principal=%v rate=%v term=%d", tc.principal, tc.rate, tc.term)
	}
}

func TestAmountFinanced(t *testing.T) {
	svc := NewFinanceService()

	// (30000 - 3000 - 0) * 1.08 + 800
	assert.InDelta(t, 29960, svc.AmountFinanced(30000, 3000, 0, 0.08), 0.001)

	// Trade-in reduces the taxable base, not just the total.
	assert.InDelta(t, (20000.0-2000-3000)*1.06+800,
		svc.AmountFinanced(20000, 2000, 3000, 0.06), 0.001)
}

func TestAmountFinanced_IncreasesWithTaxRate(t *testing.T) {
	svc := NewFinanceService()

	prev := svc.AmountFinanced(30000, 3000, 0, 0)
	for _, rate := range []float64{0.01, 0.05, 0.08, 0.0925, 0.12} {
		got := svc.AmountFinanced(30000, 3000, 0, rate)
		assert.Greater(t, got, prev, "rate %v", rate)
		prev = got
	}
}

func TestCalculateFinancing_ScenarioA(t *testing.T) {
	svc := NewFinanceService()

	req := domain.FinanceRequest{
		VehiclePrice:   30000,
		CreditScore:    720,
		DownPayment:    3000,
		LoanTermMonths: 60,
		TradeInValue:   floatPtr(0),
		SalesTaxRate:   floatPtr(0.08),
	}

	result, err := svc.CalculateFinancing(req)
	require.NoError(t, err)

	assert.Equal(t, 6.2, result.APR)
	assert.Equal(t, 29960.0, result.AmountFinanced)
	assert.InDelta(t, 582, result.MonthlyPayment, 1)
	assert.InDelta(t, result.MonthlyPayment*60, result.TotalCost, 60)
	assert.InDelta(t, result.TotalCost-result.AmountFinanced, result.TotalInterest, 1)
	assert.Greater(t, result.TotalInterest, 0.0)

	require.Len(t, result.Alternatives, 4)

	base := result.Alternatives[0]
	assert.Equal(t, domain.AlternativeBase, base.Type)
	assert.Equal(t, "60-month plan (current selection)", base.Description)
	require.NotNil(t, base.LoanTermMonths)
	assert.Equal(t, 60, *base.LoanTermMonths)
	require.NotNil(t, base.DownPayment)
	assert.Equal(t, 3000.0, *base.DownPayment)
	assert.Zero(t, base.Savings)
	assert.Zero(t, base.TotalCostChange)

	longer := result.Alternatives[1]
	assert.Equal(t, domain.AlternativeLongerTerm, longer.Type)
	require.NotNil(t, longer.LoanTermMonths)
	assert.Equal(t, 72, *longer.LoanTermMonths)
	assert.Equal(t, "72-month plan", longer.Description)
	assert.Greater(t, longer.Savings, 0.0, "longer term should lower the payment")
	assert.Greater(t, longer.TotalCostChange, 0.0, "longer term costs more overall")
	assert.Nil(t, longer.DownPayment)

	// Current down is exactly 10%, so the suggestion targets 20%: $6,000.
	higher := result.Alternatives[2]
	assert.Equal(t, domain.AlternativeHigherDown, higher.Type)
	require.NotNil(t, higher.DownPayment)
	assert.Equal(t, 6000.0, *higher.DownPayment)
	assert.Equal(t, "60-month plan with $6,000 down (+$3,000)", higher.Description)
	assert.Greater(t, higher.Savings, 0.0)
	assert.Less(t, higher.TotalCostChange, 0.0)
	assert.Nil(t, higher.LoanTermMonths)
	assert.InDelta(t, 26720, higher.AmountFinanced, 1) // (30000-6000)*1.08+800

	shorter := result.Alternatives[3]
	assert.Equal(t, domain.AlternativeShorterTerm, shorter.Type)
	require.NotNil(t, shorter.LoanTermMonths)
	assert.Equal(t, 48, *shorter.LoanTermMonths)
	assert.Equal(t, "48-month plan (pay off faster)", shorter.Description)
	assert.Less(t, shorter.Savings, 0.0, "shorter term raises the payment")
	assert.Less(t, shorter.TotalCostChange, 0.0, "shorter term saves interest overall")

	assert.True(t, strings.HasPrefix(result.Recommendation,
		"Good credit score! You're getting a competitive rate. Here are your options:"))
	assert.Contains(t, result.Recommendation, "1. 60-month plan (current selection): $")
	assert.Contains(t, result.Recommendation, "2. 72-month plan: $")
	assert.Contains(t, result.Recommendation, "saves $")
}

func TestCalculateFinancing_Infeasible(t *testing.T) {
	svc := NewFinanceService()

	_, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice:   10000,
		CreditScore:    700,
		DownPayment:    9000,
		LoanTermMonths: 60,
		TradeInValue:   floatPtr(5000),
	})
	assert.ErrorIs(t, err, ErrNothingToFinance)
}

func TestCalculateFinancing_Validation(t *testing.T) {
	svc := NewFinanceService()

	valid := domain.FinanceRequest{
		VehiclePrice:   30000,
		CreditScore:    720,
		DownPayment:    3000,
		LoanTermMonths: 60,
	}

	cases := []struct {
		name   string
		mutate func(*domain.FinanceRequest)
		err    error
	}{
		{"zero price", func(r *domain.FinanceRequest) { r.VehiclePrice = 0 }, ErrInvalidVehiclePrice},
		{"negative price", func(r *domain.FinanceRequest) { r.VehiclePrice = -1 }, ErrInvalidVehiclePrice},
		{"score below range", func(r *domain.FinanceRequest) { r.CreditScore = 299 }, ErrCreditScoreRange},
		{"score above range", func(r *domain.FinanceRequest) { r.CreditScore = 851 }, ErrCreditScoreRange},
		{"negative down payment", func(r *domain.FinanceRequest) { r.DownPayment = -100 }, ErrNegativeDownPayment},
		{"zero term", func(r *domain.FinanceRequest) { r.LoanTermMonths = 0 }, ErrInvalidLoanTerm},
		{"negative term", func(r *domain.FinanceRequest) { r.LoanTermMonths = -12 }, ErrInvalidLoanTerm},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.CalculateFinancing(req)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	// Inclusive bounds are valid.
	for _, score := range []int{MinCreditScore, MaxCreditScore} {
		req := valid
		req.CreditScore = score
		_, err := svc.CalculateFinancing(req)
		assert.NoError(t, err, "score %d", score)
	}
}

func TestCalculateFinancing_Defaults(t *testing.T) {
	svc := NewFinanceService()

	// No trade-in or tax rate supplied: 0 and 8% apply.
	result, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice:   30000,
		CreditScore:    720,
		DownPayment:    3000,
		LoanTermMonths: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, 29960.0, result.AmountFinanced)
}

func TestCalculateFinancing_Idempotent(t *testing.T) {
	svc := NewFinanceService()

	req := domain.FinanceRequest{
		VehiclePrice:   42000,
		CreditScore:    655,
		DownPayment:    1500,
		LoanTermMonths: 48,
		TradeInValue:   floatPtr(2500),
		SalesTaxRate:   floatPtr(0.0625),
	}

	first, err := svc.CalculateFinancing(req)
	require.NoError(t, err)
	second, err := svc.CalculateFinancing(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateAlternatives_TermBoundaries(t *testing.T) {
	svc := NewFinanceService()

	types := func(result domain.FinanceResult) []domain.AlternativeType {
		var out []domain.AlternativeType
		for _, alt := range result.Alternatives {
			out = append(out, alt.Type)
		}
		return out
	}

	// At the longest standard term there is nothing longer to offer.
	at72, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice: 30000, CreditScore: 720, DownPayment: 3000, LoanTermMonths: 72,
	})
	require.NoError(t, err)
	assert.NotContains(t, types(at72), domain.AlternativeLongerTerm)

	// At the shortest standard term there is nothing shorter to offer.
	at36, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice: 30000, CreditScore: 720, DownPayment: 3000, LoanTermMonths: 36,
	})
	require.NoError(t, err)
	assert.NotContains(t, types(at36), domain.AlternativeShorterTerm)
}

func TestGenerateAlternatives_NoHigherDownAtTwentyPercent(t *testing.T) {
	svc := NewFinanceService()

	result, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice: 30000, CreditScore: 720, DownPayment: 7000, LoanTermMonths: 60,
	})
	require.NoError(t, err)

	for _, alt := range result.Alternatives {
		assert.NotEqual(t, domain.AlternativeHigherDown, alt.Type)
	}
}

func TestGenerateAlternatives_HigherDownRequiresMinimumStep(t *testing.T) {
	svc := NewFinanceService()

	// 12% down on a $2,000 vehicle: the 20% target floors at down+$500 and
	// rounds down to $700, leaving only $460 more — below the $500 minimum.
	result, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice: 2000, CreditScore: 720, DownPayment: 240, LoanTermMonths: 36,
	})
	require.NoError(t, err)

	for _, alt := range result.Alternatives {
		assert.NotEqual(t, domain.AlternativeHigherDown, alt.Type)
	}
}

func TestGenerateAlternatives_ShorterTermSuppressedOnPaymentSpike(t *testing.T) {
	svc := NewFinanceService()

	// A large principal makes the 60->48 jump exceed the $150 tolerance.
	result, err := svc.CalculateFinancing(domain.FinanceRequest{
		VehiclePrice: 90000, CreditScore: 580, DownPayment: 18000, LoanTermMonths: 60,
	})
	require.NoError(t, err)

	for _, alt := range result.Alternatives {
		assert.NotEqual(t, domain.AlternativeShorterTerm, alt.Type)
	}
}

func TestSynthesizeRecommendation_TierOpeners(t *testing.T) {
	svc := NewFinanceService()

	cases := []struct {
		score  int
		opener string
	}{
		{780, "Excellent credit! You've qualified for our best rate."},
		{720, "Good credit score! You're getting a competitive rate."},
		{660, "Fair credit - we can work with that!"},
		{610, "We can help you get financed!"},
		{540, "Let's find a plan that works for you."},
	}

	for _, tc := range cases {
		got := svc.synthesizeRecommendation(tc.score, nil)
		assert.Equal(t, tc.opener, got, "score %d", tc.score)
	}
}

func TestSynthesizeRecommendation_Formatting(t *testing.T) {
	svc := NewFinanceService()

	term := 60
	alts := []domain.Alternative{
		{
			Description:    "60-month plan (current selection)",
			MonthlyPayment: 582,
			LoanTermMonths: &term,
			Type:           domain.AlternativeBase,
		},
		{
			Description:     "72-month plan",
			MonthlyPayment:  499,
			Savings:         83,
			TotalCostChange: 1033,
			Type:            domain.AlternativeLongerTerm,
		},
		{
			Description:     "48-month plan (pay off faster)",
			MonthlyPayment:  706,
			Savings:         -124,
			TotalCostChange: -1018,
			Type:            domain.AlternativeShorterTerm,
		},
	}

	got := svc.synthesizeRecommendation(720, alts)

	// Zero-change entries have no parenthetical at all.
	assert.Contains(t, got, "1. 60-month plan (current selection): $582/month\n")
	assert.Contains(t, got, "2. 72-month plan: $499/month (saves $83/month, adds $1033/total)\n")
	// Trailing newline is trimmed from the final entry.
	assert.True(t, strings.HasSuffix(got,
		"3. 48-month plan (pay off faster): $706/month (+$124/month, saves $1018/total)"))
}
