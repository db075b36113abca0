package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"talktotoyota/domain"
)

// Validation errors surfaced by CalculateFinancing. The HTTP layer returns
// these verbatim in the error body.
var (
	ErrInvalidVehiclePrice = errors.New("vehicle price must be greater than 0")
	ErrCreditScoreRange    = errors.New("credit score must be between 300 and 850")
	ErrNegativeDownPayment = errors.New("down payment cannot be negative")
	ErrInvalidLoanTerm     = errors.New("loan term must be greater than 0")
	ErrNothingToFinance    = errors.New("down payment and trade-in exceed vehicle price")
)

// roundTo2Decimals rounds a float64 to cent precision.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

// roundCurrency rounds to whole dollars.
func roundCurrency(value float64) float64 {
	return math.Round(value)
}

// FinanceService computes financing quotes. It is stateless and safe for
// concurrent use; every call is an independent pure computation.
type FinanceService struct{}

func NewFinanceService() *FinanceService {
	return &FinanceService{}
}

// ResolveAPR maps a credit score to its tier APR. Total over all ints; the
// caller is responsible for range validation.
func (s *FinanceService) ResolveAPR(creditScore int) float64 {
	apr, _ := s.CreditTier(creditScore)
	return apr
}

// CreditTier returns the APR and tier label for a credit score.
func (s *FinanceService) CreditTier(creditScore int) (float64, string) {
	for _, tier := range aprTiers {
		if creditScore >= tier.MinScore {
			return tier.APR, tier.Label
		}
	}
	// Unreachable: the last tier's floor is 0 and scores are validated to
	// [300, 850] before use.
	last := aprTiers[len(aprTiers)-1]
	return last.APR, last.Label
}

// AmountFinanced derives the borrowed principal: price less down payment and
// trade-in, plus sales tax on that reduced base (trade-in tax credit
// treatment), plus the flat doc fee. May be non-positive; the orchestrator
// rejects that case.
func (s *FinanceService) AmountFinanced(vehiclePrice, downPayment, tradeInValue, salesTaxRate float64) float64 {
	base := vehiclePrice - downPayment - tradeInValue
	tax := base * salesTaxRate
	return base + tax + DocFee
}

// MonthlyPayment computes the fixed payment for a standard amortized loan:
//
//	M = P * r(1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate. A zero rate degenerates to even division.
// The result is rounded to cents; whole-dollar rounding happens at the
// aggregation layer.
func (s *FinanceService) MonthlyPayment(principal, annualRatePercent float64, termMonths int) float64 {
	monthlyRate := annualRatePercent / 100 / 12

	if monthlyRate == 0 {
		return principal / float64(termMonths)
	}

	factor := math.Pow(1+monthlyRate, float64(termMonths))
	payment := principal * monthlyRate * factor / (factor - 1)

	return roundTo2Decimals(payment)
}

// CalculateFinancing validates the request, prices the as-entered loan,
// generates alternative structures and synthesizes the recommendation.
func (s *FinanceService) CalculateFinancing(req domain.FinanceRequest) (domain.FinanceResult, error) {
	if req.VehiclePrice <= 0 {
		return domain.FinanceResult{}, ErrInvalidVehiclePrice
	}
	if req.CreditScore < MinCreditScore || req.CreditScore > MaxCreditScore {
		return domain.FinanceResult{}, ErrCreditScoreRange
	}
	if req.DownPayment < 0 {
		return domain.FinanceResult{}, ErrNegativeDownPayment
	}
	if req.LoanTermMonths <= 0 {
		return domain.FinanceResult{}, ErrInvalidLoanTerm
	}

	tradeInValue, salesTaxRate := financeDefaults(req)

	apr := s.ResolveAPR(req.CreditScore)

	amountFinanced := s.AmountFinanced(req.VehiclePrice, req.DownPayment, tradeInValue, salesTaxRate)
	if amountFinanced <= 0 {
		return domain.FinanceResult{}, ErrNothingToFinance
	}

	monthlyPayment := s.MonthlyPayment(amountFinanced, apr, req.LoanTermMonths)
	totalCost := monthlyPayment * float64(req.LoanTermMonths)
	totalInterest := totalCost - amountFinanced

	baseTerm := req.LoanTermMonths
	baseDown := req.DownPayment
	base := domain.Alternative{
		Description:     fmt.Sprintf("%d-month plan (current selection)", baseTerm),
		MonthlyPayment:  roundCurrency(monthlyPayment),
		LoanTermMonths:  &baseTerm,
		DownPayment:     &baseDown,
		Savings:         0,
		TotalCostChange: 0,
		AmountFinanced:  roundCurrency(amountFinanced),
		TotalCost:       roundCurrency(totalCost),
		APR:             apr,
		Type:            domain.AlternativeBase,
	}

	alternatives := append([]domain.Alternative{base},
		s.generateAlternatives(req, monthlyPayment, apr)...)

	recommendation := s.synthesizeRecommendation(req.CreditScore, alternatives)

	return domain.FinanceResult{
		MonthlyPayment: roundCurrency(monthlyPayment),
		APR:            apr,
		TotalInterest:  roundCurrency(totalInterest),
		TotalCost:      roundCurrency(totalCost),
		AmountFinanced: roundCurrency(amountFinanced),
		Recommendation: recommendation,
		Alternatives:   alternatives,
	}, nil
}

// generateAlternatives proposes up to three restructured loans against the
// current selection, in fixed policy order: longer term, higher down
// payment, shorter term. Each recomputes amortization with exactly one
// parameter changed.
func (s *FinanceService) generateAlternatives(
	req domain.FinanceRequest,
	currentMonthlyPayment float64,
	apr float64,
) []domain.Alternative {
	tradeInValue, salesTaxRate := financeDefaults(req)

	baseAmountFinanced := s.AmountFinanced(req.VehiclePrice, req.DownPayment, tradeInValue, salesTaxRate)
	baseTotalCost := currentMonthlyPayment * float64(req.LoanTermMonths)

	var alternatives []domain.Alternative

	// Longer term: step up one standard rung. Always worth showing.
	if req.LoanTermMonths < MaxStandardTerm {
		longerTerm := nextTermUp(req.LoanTermMonths)
		payment := s.MonthlyPayment(baseAmountFinanced, apr, longerTerm)
		totalCost := payment * float64(longerTerm)

		alternatives = append(alternatives, domain.Alternative{
			Description:     fmt.Sprintf("%d-month plan", longerTerm),
			MonthlyPayment:  roundCurrency(payment),
			LoanTermMonths:  intPtr(longerTerm),
			Savings:         roundCurrency(currentMonthlyPayment - payment),
			TotalCostChange: math.Round(totalCost - baseTotalCost),
			AmountFinanced:  math.Round(baseAmountFinanced),
			TotalCost:       math.Round(totalCost),
			APR:             apr,
			Type:            domain.AlternativeLongerTerm,
		})
	}

	// Higher down payment: nudge toward the next 10%/20% milestone, capped
	// at half the price, rounded to the nearest $100, and only when it adds
	// at least $500.
	if req.VehiclePrice > 0 {
		currentDownPercent := req.DownPayment / req.VehiclePrice
		targetDownPercent := 0.0

		if currentDownPercent < 0.1 {
			targetDownPercent = 0.1
		} else if currentDownPercent < 0.2 {
			targetDownPercent = 0.2
		}

		if targetDownPercent > 0 {
			suggestedDown := req.VehiclePrice * targetDownPercent
			suggestedDown = math.Min(suggestedDown, req.VehiclePrice*MaxDownPaymentFraction)
			suggestedDown = math.Max(suggestedDown, req.DownPayment+MinAdditionalDown)
			suggestedDown = math.Round(suggestedDown/100) * 100

			additionalDown := suggestedDown - req.DownPayment

			if additionalDown >= MinAdditionalDown {
				amountFinanced := s.AmountFinanced(req.VehiclePrice, suggestedDown, tradeInValue, salesTaxRate)
				payment := s.MonthlyPayment(amountFinanced, apr, req.LoanTermMonths)
				totalCost := payment * float64(req.LoanTermMonths)

				// For short base terms the pitch is reduced total interest
				// rather than payment relief, so show it even when the
				// payment doesn't drop.
				if payment < currentMonthlyPayment || req.LoanTermMonths <= MinStandardTerm {
					alternatives = append(alternatives, domain.Alternative{
						Description: fmt.Sprintf("%d-month plan with $%s down (+$%s)",
							req.LoanTermMonths,
							humanize.Comma(int64(suggestedDown)),
							humanize.Comma(int64(additionalDown))),
						MonthlyPayment:  roundCurrency(payment),
						DownPayment:     &suggestedDown,
						Savings:         roundCurrency(currentMonthlyPayment - payment),
						TotalCostChange: math.Round(totalCost - baseTotalCost),
						AmountFinanced:  math.Round(amountFinanced),
						TotalCost:       math.Round(totalCost),
						APR:             apr,
						Type:            domain.AlternativeHigherDown,
					})
				}
			}
		}
	}

	// Shorter term: step down one rung, but only when the payment increase
	// stays tolerable.
	if req.LoanTermMonths > MinStandardTerm {
		shorterTerm := nextTermDown(req.LoanTermMonths)
		payment := s.MonthlyPayment(baseAmountFinanced, apr, shorterTerm)
		difference := payment - currentMonthlyPayment

		if difference < ShorterTermMaxIncrease {
			totalCost := payment * float64(shorterTerm)

			alternatives = append(alternatives, domain.Alternative{
				Description:     fmt.Sprintf("%d-month plan (pay off faster)", shorterTerm),
				MonthlyPayment:  roundCurrency(payment),
				LoanTermMonths:  intPtr(shorterTerm),
				Savings:         -roundCurrency(difference),
				TotalCostChange: math.Round(totalCost - baseTotalCost),
				AmountFinanced:  math.Round(baseAmountFinanced),
				TotalCost:       math.Round(totalCost),
				APR:             apr,
				Type:            domain.AlternativeShorterTerm,
			})
		}
	}

	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}
	return alternatives
}

// synthesizeRecommendation renders the tier-keyed opener and a numbered list
// of the alternatives. Downstream consumers pattern-match on these phrases;
// change them only together with the frontend.
func (s *FinanceService) synthesizeRecommendation(creditScore int, alternatives []domain.Alternative) string {
	var b strings.Builder

	switch {
	case creditScore >= 750:
		b.WriteString("Excellent credit! You've qualified for our best rate. ")
	case creditScore >= 700:
		b.WriteString("Good credit score! You're getting a competitive rate. ")
	case creditScore >= 650:
		b.WriteString("Fair credit - we can work with that! ")
	case creditScore >= 600:
		b.WriteString("We can help you get financed! ")
	default:
		b.WriteString("Let's find a plan that works for you. ")
	}

	if len(alternatives) > 0 {
		b.WriteString("Here are your options:\n\n")

		for i, alt := range alternatives {
			monthlyText := ""
			if alt.Savings > 0 {
				monthlyText = fmt.Sprintf(" (saves $%d/month", int(alt.Savings))
			} else if alt.Savings < 0 {
				monthlyText = fmt.Sprintf(" (+$%d/month", int(math.Abs(alt.Savings)))
			}

			totalCostText := ""
			if alt.TotalCostChange != 0 {
				sep := " ("
				if monthlyText != "" {
					sep = ", "
				}
				if alt.TotalCostChange > 0 {
					totalCostText = fmt.Sprintf("%sadds $%d/total", sep, int(math.Abs(alt.TotalCostChange)))
				} else {
					totalCostText = fmt.Sprintf("%ssaves $%d/total", sep, int(math.Abs(alt.TotalCostChange)))
				}
			}

			suffix := ""
			if monthlyText != "" || totalCostText != "" {
				suffix = monthlyText + totalCostText + ")"
			}

			fmt.Fprintf(&b, "%d. %s: $%d/month%s\n", i+1, alt.Description, int(alt.MonthlyPayment), suffix)
		}
	}

	return strings.TrimSpace(b.String())
}

// financeDefaults applies the optional-field defaults once, at the engine
// boundary: trade-in 0, sales tax 8%.
func financeDefaults(req domain.FinanceRequest) (tradeInValue, salesTaxRate float64) {
	salesTaxRate = DefaultSalesTaxRate
	if req.TradeInValue != nil {
		tradeInValue = *req.TradeInValue
	}
	if req.SalesTaxRate != nil {
		salesTaxRate = *req.SalesTaxRate
	}
	return tradeInValue, salesTaxRate
}

func nextTermUp(term int) int {
	switch term {
	case 36:
		return 48
	case 48:
		return 60
	default:
		return 72
	}
}

func nextTermDown(term int) int {
	switch term {
	case 72:
		return 60
	case 60:
		return 48
	default:
		return 36
	}
}

func intPtr(v int) *int { return &v }
