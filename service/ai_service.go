package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"talktotoyota/domain"
)

const (
	openRouterURL     = "https://openrouter.ai/api/v1/chat/completions"
	conversationModel = "anthropic/claude-3.5-sonnet"

	// Markers the model embeds in its replies to hand structured data back
	// to us. Stripped before the reply reaches the customer.
	calculateMarker = "[CALCULATE_FINANCING]"
)

var financingDataRe = regexp.MustCompile(`\[FINANCING_DATA:\s*({[^}]+})\]`)

const generalSystemPrompt = `You are a friendly, knowledgeable Toyota car salesman AI assistant. Your goal is to help customers find the perfect Toyota vehicle for their needs.

Key traits:
- Friendly and approachable
- Knowledgeable about Toyota vehicles
- Helpful in answering questions about features, pricing, and specifications
- Able to recommend vehicles based on customer needs and preferences
- Conversational and natural in your responses

You have access to Toyota vehicle data including:
- Vehicle models and names
- Pricing information (MSRP and current prices)
- Categories (Cars & Minivan, Trucks, Crossovers & SUVs, Electrified)
- Vehicle types (sedan, hybrid, electric, SUV, truck, etc.)
- Badges and special features

When recommending vehicles:
- Ask clarifying questions to understand customer needs
- Consider budget, vehicle type, features, and use case
- Compare vehicles when helpful
- Be honest and transparent about pricing and features

Keep responses concise, friendly, and helpful.`

// AIService drives the salesperson conversation: prompt construction,
// OpenRouter calls, marker extraction, and handing completed checklists to
// the financing engine. Conversation state lives entirely in the request.
type AIService struct {
	apiKey     string
	apiURL     string
	appURL     string
	enabled    bool
	httpClient *http.Client
	finance    *FinanceService
	logger     *slog.Logger
}

type chatRequest struct {
	Model       string                       `json:"model"`
	Messages    []domain.ConversationMessage `json:"messages"`
	Temperature float64                      `json:"temperature,omitempty"`
	MaxTokens   int                          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message domain.ConversationMessage `json:"message"`
	} `json:"choices"`
}

func NewAIService(apiKey, appURL string, finance *FinanceService, logger *slog.Logger) *AIService {
	return &AIService{
		apiKey:  apiKey,
		apiURL:  openRouterURL,
		appURL:  appURL,
		enabled: apiKey != "",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		finance: finance,
		logger:  logger,
	}
}

// GenerateResponse runs one conversation turn. The caller's financing
// checklist comes in through ctxData and goes back out updated; when the
// model signals a complete checklist and a vehicle is selected, the reply
// also carries a financing quote.
func (s *AIService) GenerateResponse(
	ctx context.Context,
	message string,
	ctxData *domain.ConversationContext,
	history []domain.ConversationMessage,
) (domain.ConversationReply, error) {
	var state domain.FinancingState
	if ctxData != nil && ctxData.FinancingState != nil {
		state = *ctxData.FinancingState
	}

	systemPrompt := s.buildSystemPrompt(ctxData, state)

	messages := make([]domain.ConversationMessage, 0, len(history)+2)
	messages = append(messages, domain.ConversationMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.ConversationMessage{Role: "user", Content: message})

	s.logger.Debug("sending conversation turn",
		"messages", len(messages), "history", len(history))

	var raw string
	if s.enabled {
		reply, err := s.callLLM(ctx, chatRequest{
			Model:       conversationModel,
			Messages:    messages,
			Temperature: 0.7,
			MaxTokens:   800,
		})
		if err != nil {
			return domain.ConversationReply{}, fmt.Errorf("generate conversation reply: %w", err)
		}
		raw = reply
	} else {
		raw = s.fallbackReply(ctxData, state)
	}

	extracted := extractFinancingData(raw)
	updated := mergeFinancingState(state, extracted)

	// Once the required items are in, the optional ones get their defaults.
	if updated.RequiredComplete() {
		if updated.TradeInValue == nil {
			zero := 0.0
			updated.TradeInValue = &zero
		}
		if updated.SalesTaxRate == nil {
			pct := DefaultSalesTaxRate * 100
			updated.SalesTaxRate = &pct
		}
	}

	reply := domain.ConversationReply{
		Response:       cleanAIResponse(raw),
		FinancingState: &updated,
	}

	if strings.Contains(raw, calculateMarker) && updated.RequiredComplete() &&
		ctxData != nil && ctxData.SelectedVehicle != nil {

		// The checklist stores tax as a whole percent; the engine expects a
		// fraction.
		taxFraction := *updated.SalesTaxRate / 100
		result, err := s.finance.CalculateFinancing(domain.FinanceRequest{
			VehiclePrice:   ctxData.SelectedVehicle.Price,
			CreditScore:    *updated.CreditScore,
			DownPayment:    *updated.DownPayment,
			LoanTermMonths: *updated.LoanTermMonths,
			TradeInValue:   updated.TradeInValue,
			SalesTaxRate:   &taxFraction,
		})
		if err != nil {
			s.logger.Error("financing calculation failed", "error", err)
		} else {
			updated.IsComplete = true
			reply.FinancingState = &updated
			reply.FinancingResults = &result
		}
	}

	return reply, nil
}

func (s *AIService) buildSystemPrompt(ctxData *domain.ConversationContext, state domain.FinancingState) string {
	if ctxData != nil && len(ctxData.CompareVehicles) >= 2 {
		return comparePrompt(ctxData.CompareVehicles[0], ctxData.CompareVehicles[1], state)
	}
	if ctxData != nil && ctxData.SelectedVehicle != nil {
		return salesPrompt(*ctxData.SelectedVehicle, state)
	}

	prompt := generalSystemPrompt
	if ctxData != nil && len(ctxData.Vehicles) > 0 {
		vehicles := ctxData.Vehicles
		if len(vehicles) > 20 {
			vehicles = vehicles[:20]
		}
		if data, err := json.MarshalIndent(vehicles, "", "  "); err == nil {
			prompt += "\n\nAvailable vehicles:\n" + string(data)
		}
	}
	if ctxData != nil && ctxData.CurrentCategory != "" {
		prompt += "\n\nCurrent category: " + ctxData.CurrentCategory
	}
	return prompt
}

func (s *AIService) callLLM(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
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
	req.Header.Set("X-Title", "TalkToToyota")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
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

	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "I'm sorry, I couldn't generate a response.", nil
	}
	return content, nil
}

// fallbackReply keeps the showroom open when no API key is configured: it
// walks the financing checklist deterministically.
func (s *AIService) fallbackReply(ctxData *domain.ConversationContext, state domain.FinancingState) string {
	if ctxData == nil || ctxData.SelectedVehicle == nil {
		return "Welcome to TalkToToyota! Browse the catalog and pick a vehicle, and I can walk you through pricing and financing."
	}

	switch {
	case state.CreditScore == nil:
		return "To line up the best rates, where does your credit score fall? Most shoppers are between 650-750."
	case state.DownPayment == nil:
		return "Great! How much are you thinking of putting down? Even $0 is okay."
	case state.LoanTermMonths == nil:
		return "Got it. Do you prefer 36, 48, 60, or 72 months? Longer terms drop the monthly amount."
	default:
		return "I have everything I need. Let me run the numbers on the " +
			ctxData.SelectedVehicle.Name + " for you. " + calculateMarker
	}
}

// extractFinancingData pulls the partial checklist the model embedded in its
// reply, if any.
func extractFinancingData(aiResponse string) *domain.FinancingState {
	match := financingDataRe.FindStringSubmatch(aiResponse)
	if match == nil {
		return nil
	}

	var partial domain.FinancingState
	if err := json.Unmarshal([]byte(match[1]), &partial); err != nil {
		slog.Error("failed to parse financing data marker", "error", err)
		return nil
	}
	return &partial
}

// mergeFinancingState overlays the fields the customer mentioned this turn
// onto the running checklist.
func mergeFinancingState(current domain.FinancingState, partial *domain.FinancingState) domain.FinancingState {
	if partial == nil {
		return current
	}
	if partial.CreditScore != nil {
		current.CreditScore = partial.CreditScore
	}
	if partial.DownPayment != nil {
		current.DownPayment = partial.DownPayment
	}
	if partial.LoanTermMonths != nil {
		current.LoanTermMonths = partial.LoanTermMonths
	}
	if partial.TradeInValue != nil {
		current.TradeInValue = partial.TradeInValue
	}
	if partial.SalesTaxRate != nil {
		current.SalesTaxRate = partial.SalesTaxRate
	}
	return current
}

// cleanAIResponse strips control markers so the customer never sees them.
func cleanAIResponse(response string) string {
	response = financingDataRe.ReplaceAllString(response, "")
	response = strings.ReplaceAll(response, calculateMarker, "")
	return strings.TrimSpace(response)
}

func money(v float64) string {
	return humanize.Comma(int64(v))
}

// checklistInstructions renders the financing-checklist block appended to
// the sales and compare prompts, reflecting what has been collected so far.
func checklistInstructions(state domain.FinancingState) string {
	var b strings.Builder

	b.WriteString("\n\n---FINANCING CHECKLIST MODE---\n\n")
	b.WriteString("You must gather these details conversationally:\n")
	b.WriteString("1. Credit Score (300-850)\n")
	b.WriteString("2. Down Payment amount (can be $0)\n")
	b.WriteString("3. Preferred Loan Term in months (36, 48, 60, 72)\n\n")
	b.WriteString("Optional, ask when the moment feels natural:\n")
	b.WriteString("4. Trade-in value (defaults to $0 if none)\n")
	b.WriteString("5. Local sales tax rate (defaults to 8% if unsure)\n\n")

	b.WriteString("CURRENT CHECKLIST STATUS:\n")
	if state.CreditScore != nil {
		fmt.Fprintf(&b, "✓ Credit Score: %d\n", *state.CreditScore)
	} else {
		b.WriteString("✗ Credit Score: not collected\n")
	}
	if state.DownPayment != nil {
		fmt.Fprintf(&b, "✓ Down Payment: $%s\n", money(*state.DownPayment))
	} else {
		b.WriteString("✗ Down Payment: not collected\n")
	}
	if state.LoanTermMonths != nil {
		fmt.Fprintf(&b, "✓ Loan Term: %d months\n", *state.LoanTermMonths)
	} else {
		b.WriteString("✗ Loan Term: not collected\n")
	}
	if state.TradeInValue != nil {
		fmt.Fprintf(&b, "○ Trade-in: $%s\n", money(*state.TradeInValue))
	} else {
		b.WriteString("○ Trade-in: optional\n")
	}
	if state.SalesTaxRate != nil {
		fmt.Fprintf(&b, "○ Sales Tax: %g%%\n", *state.SalesTaxRate)
	} else {
		b.WriteString("○ Sales Tax: optional (use 8% if unknown)\n")
	}

	b.WriteString(`
GUIDANCE:
- Stay warm, curious, and helpful—make it feel like a one-on-one consultation.
- Ask ONE checklist item at a time.
- Explain why each item helps the shopper compare realistic monthly payments.
- Extract numbers when the customer mentions them naturally.
- Whenever the customer gives you checklist data, append it exactly like this at the END of your reply:
  [FINANCING_DATA: {"creditScore": 720, "downPayment": 5000}]
- Only include fields the customer mentioned in that turn.
- When all required fields are complete, append ` + calculateMarker + ` to trigger the quote.
`)

	switch {
	case state.CreditScore == nil:
		b.WriteString("\nNEXT ITEM: Credit score (e.g. \"To line up the best rates, where does your credit score fall? Most shoppers are between 650-750.\")")
	case state.DownPayment == nil:
		b.WriteString("\nNEXT ITEM: Down payment (e.g. \"Great! How much are you thinking of putting down? Even $0 is okay—many buyers set aside $3K-$5K.\")")
	case state.LoanTermMonths == nil:
		b.WriteString("\nNEXT ITEM: Loan term (e.g. \"Got it. Do you prefer 36, 48, 60, or 72 months? Longer terms drop the monthly amount.\")")
	case state.TradeInValue == nil:
		b.WriteString("\nOPTIONAL: Trade-in (e.g. \"Do you have a car you might trade in? If so, roughly what's it worth?\")")
	case state.SalesTaxRate == nil:
		b.WriteString("\nOPTIONAL: Sales tax (e.g. \"What's your local sales tax rate? If you're unsure we'll use 8%.\")")
	default:
		b.WriteString("\nALL REQUIRED ITEMS COMPLETE — let them know you'll calculate the numbers, then add " + calculateMarker + ".")
	}

	return b.String()
}

func salesPrompt(v domain.Vehicle, state domain.FinancingState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an enthusiastic, persuasive Toyota car salesman AI. Your PRIMARY GOAL is to help the customer with the %s and guide them through financing options.\n\n", v.Name)
	fmt.Fprintf(&b, "CURRENT VEHICLE: %s\n", v.Name)
	fmt.Fprintf(&b, "PRICE: $%s (Starting MSRP: $%s)\n", money(v.Price), money(v.MSRP))
	if v.PriceRange != "" {
		fmt.Fprintf(&b, "PRICE RANGE: %s\n", v.PriceRange)
	}
	if v.Year != 0 {
		fmt.Fprintf(&b, "YEAR: %d\n", v.Year)
	}

	if len(v.Pros) > 0 {
		b.WriteString("\nVEHICLE HIGHLIGHTS & SELLING POINTS:\nPROS:\n")
		for _, p := range v.Pros {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(v.Features) > 0 {
		b.WriteString("\nKEY FEATURES:\n")
		for _, f := range v.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	if len(v.BestFor) > 0 {
		b.WriteString("\nPERFECT FOR: " + strings.Join(v.BestFor, ", ") + "\n")
	}

	b.WriteString("\nSPECIFICATIONS:\n")
	if specs := v.Specs; specs != nil {
		if specs.Horsepower != 0 {
			fmt.Fprintf(&b, "- Horsepower: %d hp\n", specs.Horsepower)
		}
		if specs.MPG != nil && specs.MPG.Combined != 0 {
			fmt.Fprintf(&b, "- MPG (Combined): %d\n", specs.MPG.Combined)
		}
		if specs.Seating != 0 {
			fmt.Fprintf(&b, "- Seating: %d passengers\n", specs.Seating)
		}
		if specs.FuelType != "" {
			fmt.Fprintf(&b, "- Fuel Type: %s\n", specs.FuelType)
		}
		if specs.Engine != "" {
			fmt.Fprintf(&b, "- Engine: %s\n", specs.Engine)
		}
		if specs.CargoSpace != "" {
			fmt.Fprintf(&b, "- Cargo Space: %s\n", specs.CargoSpace)
		}
		if specs.ElectricRange != "" {
			fmt.Fprintf(&b, "- Electric Range: %s\n", specs.ElectricRange)
		}
	}
	if v.Warranty != "" {
		fmt.Fprintf(&b, "- Warranty: %s\n", v.Warranty)
	}

	return b.String() + checklistInstructions(state)
}

func vehicleSnapshot(v domain.Vehicle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "NAME: %s\n", v.Name)
	fmt.Fprintf(&b, "PRICE: $%s (MSRP: $%s", money(v.Price), money(v.MSRP))
	if v.PriceRange != "" {
		fmt.Fprintf(&b, ", Range: %s", v.PriceRange)
	}
	b.WriteString(")\n")
	if v.Year != 0 {
		fmt.Fprintf(&b, "YEAR: %d\n", v.Year)
	}
	if len(v.Pros) > 0 {
		b.WriteString("TOP HIGHLIGHTS:\n")
		for _, p := range v.Pros {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(v.Features) > 0 {
		b.WriteString("KEY FEATURES:\n")
		for _, f := range v.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	if len(v.BestFor) > 0 {
		b.WriteString("IDEAL FOR:\n")
		for _, bf := range v.BestFor {
			fmt.Fprintf(&b, "- %s\n", bf)
		}
	}
	if specs := v.Specs; specs != nil {
		if specs.Horsepower != 0 {
			fmt.Fprintf(&b, "HORSEPOWER: %d hp\n", specs.Horsepower)
		}
		if specs.MPG != nil && specs.MPG.Combined != 0 {
			fmt.Fprintf(&b, "COMBINED MPG: %d\n", specs.MPG.Combined)
		}
		if specs.Seating != 0 {
			fmt.Fprintf(&b, "SEATING: %d\n", specs.Seating)
		}
		if specs.FuelType != "" {
			fmt.Fprintf(&b, "FUEL TYPE: %s\n", specs.FuelType)
		}
		if specs.Engine != "" {
			fmt.Fprintf(&b, "ENGINE: %s\n", specs.Engine)
		}
		if specs.ElectricRange != "" {
			fmt.Fprintf(&b, "ELECTRIC RANGE: %s\n", specs.ElectricRange)
		}
	}
	if v.Warranty != "" {
		fmt.Fprintf(&b, "WARRANTY: %s\n", v.Warranty)
	}

	return strings.TrimSpace(b.String())
}

func comparePrompt(primary, secondary domain.Vehicle, state domain.FinancingState) string {
	header := "You are an insightful Toyota product specialist helping a shopper compare two vehicles side-by-side. Stay personable, celebrate the strengths of each vehicle, and guide them toward a confident choice."

	overview := fmt.Sprintf(`
VEHICLE A SNAPSHOT:
%s

---

VEHICLE B SNAPSHOT:
%s

---

COMPARISON TIPS:
- Call out where each vehicle shines (performance, efficiency, tech, cargo, etc.).
- Help the shopper weigh trade-offs based on their lifestyle comments.
- Offer friendly suggestions like "If you love X, the %s really delivers, while the %s gives you Y."`,
		vehicleSnapshot(primary), vehicleSnapshot(secondary), primary.Name, secondary.Name)

	financing := `
FINANCING FOCUS:
- Let them know you can surface monthly payment estimates for BOTH vehicles once you gather the checklist info.
- Reinforce that sharing credit score, down payment, and term lets you compare affordability apples-to-apples.
` + checklistInstructions(state)

	return strings.Join([]string{header, overview, financing}, "\n\n")
}
