package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"talktotoyota/domain"
)

// Refundable reservation deposit collected at checkout.
var checkoutDeposit = decimal.NewFromInt(500)

const incentivePlaybook = `
Incentive Playbook (use whichever is most persuasive based on the conversation):
- College Graduate Rebate: $750 for recent graduates who finalize during this event.
- Military Appreciation Bonus: $1,000 bonus cash for active duty, reservists, or veterans.
- Flash Sales Bonus: $500 when the customer completes checkout before the weekend.
- Trade-In Bonus: Up to $1,500 additional trade-in value if they bring their current vehicle this week.
- Toyota Loyalty Cash: $750 for current Toyota owners upgrading to a new model.
- Hybrid & EV Rebate: $1,000 rebate on select hybrid or electric models for eco-focused shoppers.
- Limited Stock Priority Offer: Priority delivery and promotional APR when inventory is running low.
- Partner Financing Special: 0% APR for 36 months on select trims through our finance partner.
- Refer-a-Friend Bonus: $250 service credit for the customer and their referral.
- ToyotaCare Plus Upgrade: Complimentary extra year of scheduled maintenance when they finalize this week.

Always tailor the incentive pitch to the customer's situation, reference urgency using the deadline window, and invite them to press "Complete Checkout" to secure it.`

// CheckoutService drives the closing conversation and itemizes the final
// paperwork numbers.
type CheckoutService struct {
	apiKey     string
	apiURL     string
	appURL     string
	enabled    bool
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCheckoutService(apiKey, appURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		apiKey:  apiKey,
		apiURL:  openRouterURL,
		appURL:  appURL,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GenerateResponse produces one checkout-assistant turn.
func (s *CheckoutService) GenerateResponse(
	ctx context.Context,
	message string,
	ctxData *domain.CheckoutContext,
	history []domain.ConversationMessage,
) (string, error) {
	if !s.enabled {
		return "I'm here to help finalize your Toyota purchase whenever you're ready.", nil
	}

	messages := make([]domain.ConversationMessage, 0, len(history)+2)
	messages = append(messages, domain.ConversationMessage{
		Role:    "system",
		Content: buildCheckoutPrompt(ctxData),
	})
	messages = append(messages, history...)
	messages = append(messages, domain.ConversationMessage{Role: "user", Content: message})

	payload, err := json.Marshal(chatRequest{
		Model:       conversationModel,
		Messages:    messages,
		Temperature: 0.6,
		MaxTokens:   600,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("HTTP-Referer", s.appURL)
	req.Header.Set("X-Title", "TalkToToyota Checkout")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout assistant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		content = "I'm here to help finalize your Toyota purchase whenever you're ready."
	}
	return content, nil
}

// BuildOrderSummary itemizes the deal: trade-in and incentives reduce the
// taxable base, tax and the doc fee are added back, and the down payment
// comes off the balance to finance. Exact decimal arithmetic, rounded to
// cents per line.
func (s *CheckoutService) BuildOrderSummary(
	salePrice, downPayment, tradeInValue, incentiveSavings, salesTaxRate float64,
) domain.OrderSummary {
	sale := decimal.NewFromFloat(salePrice)
	trade := decimal.NewFromFloat(tradeInValue)
	incentive := decimal.NewFromFloat(incentiveSavings)
	down := decimal.NewFromFloat(downPayment)
	rate := decimal.NewFromFloat(salesTaxRate)
	docFee := decimal.NewFromFloat(DocFee)

	taxable := sale.Sub(trade).Sub(incentive)
	tax := taxable.Mul(rate).Round(2)
	balance := taxable.Add(tax).Add(docFee).Sub(down).Round(2)

	deposit := checkoutDeposit
	if balance.LessThan(deposit) {
		deposit = decimal.Zero
	}

	return domain.OrderSummary{
		SalePrice:       sale.Round(2),
		TradeInCredit:   trade.Round(2),
		IncentiveSaving: incentive.Round(2),
		TaxableBase:     taxable.Round(2),
		SalesTax:        tax,
		DocFee:          docFee.Round(2),
		DownPayment:     down.Round(2),
		DepositDue:      deposit,
		BalanceFinanced: balance,
	}
}

func buildCheckoutPrompt(ctxData *domain.CheckoutContext) string {
	base := `You are a proactive Toyota checkout specialist. Your primary goal is to guide the customer to complete their vehicle purchase today.

Guidelines:
- Be concise (3-4 sentences) and action-oriented in every response.
- Reference the specific vehicle and financing plan when helpful.
- Assume financing is already approved; focus on confirming readiness, answering last-minute questions, and scheduling final logistics.
- Empathize with concerns but always steer the conversation toward completing checkout now.
- Offer clear next steps such as confirming contact details, selecting pickup or delivery, or clicking the "Complete Checkout" button.
- Celebrate momentum and reinforce limited-time offers or savings when relevant.
- If the customer is ready, congratulate them and instruct them to press the "Complete Checkout" button to finalize.
- Avoid collecting sensitive data (SSN, full address, payment card numbers). Keep interactions high-level but decisive.
`

	if ctxData == nil {
		return base + "\n" + incentivePlaybook
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n")
	b.WriteString(incentivePlaybook)

	if v := ctxData.Vehicle; v != nil {
		fmt.Fprintf(&b, "\n\nCustomer Vehicle:\n- Model: %s\n- Price: $%s\n", v.Name, money(v.Price))
		if v.Year != 0 {
			fmt.Fprintf(&b, "- Model Year: %d\n", v.Year)
		}
		if len(v.Badges) > 0 {
			fmt.Fprintf(&b, "- Highlights: %s\n", strings.Join(v.Badges, ", "))
		}
	}

	if f := ctxData.FinancingSummary; f != nil {
		b.WriteString("\nFinancing Snapshot:\n")
		if f.MonthlyPayment != nil {
			fmt.Fprintf(&b, "- Monthly Payment: $%s\n", money(*f.MonthlyPayment))
		}
		if f.APR != nil {
			fmt.Fprintf(&b, "- APR: %g%%\n", *f.APR)
		}
		if f.TotalCost != nil {
			fmt.Fprintf(&b, "- Total Cost: $%s\n", money(*f.TotalCost))
		}
		if f.AmountFinanced != nil {
			fmt.Fprintf(&b, "- Amount Financed: $%s\n", money(*f.AmountFinanced))
		}
		if f.Recommendation != "" {
			fmt.Fprintf(&b, "- Recommendation: %s\n", f.Recommendation)
		}
	}

	if o := ctxData.AppliedOffer; o != nil {
		fmt.Fprintf(&b, "\nActive Incentive:\n- %s worth $%s\n- Must complete checkout within %d hours to keep this incentive.\n",
			o.Title, money(o.SavingsAmount), o.DeadlineHours)
		if o.Description != "" {
			fmt.Fprintf(&b, "- Details: %s\n", o.Description)
		}
	}

	b.WriteString(`
Conversation Objectives:
- Confirm the customer is ready to complete their purchase.
- Highlight any currently applied incentive or create urgency with time-bound savings.
- Offer to schedule pickup/delivery or connect them with a specialist if needed.
- Always end with a clear call-to-action toward completing checkout now.
`)

	return b.String()
}
