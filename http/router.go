package http

import (
	"log/slog"
	"net/http"

	"talktotoyota/observability"
)

// Handlers groups the API handlers for mux wiring.
type Handlers struct {
	Finance      *FinanceHandler
	Vehicles     *VehicleHandler
	Conversation *ConversationHandler
	Voice        *VoiceHandler
}

// MuxConfig carries the cross-cutting pieces the router needs.
type MuxConfig struct {
	AllowedOrigin string
	Limiter       *RateLimiter
	Metrics       *observability.Metrics
	Logger        *slog.Logger
}

// NewMux wires the API surface. API routes are rate limited and measured
// individually; CORS, request IDs and request logging wrap everything.
func NewMux(h Handlers, cfg MuxConfig) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, fn http.HandlerFunc) {
		var handler http.Handler = fn
		handler = RateLimitMiddleware(cfg.Limiter, handler)
		handler = MetricsMiddleware(cfg.Metrics, pattern, handler)
		mux.Handle(pattern, handler)
	}

	route("/api/finance/calculate", h.Finance.CalculateFinancing)
	route("/api/finance/apr-estimate/{creditScore}", h.Finance.APREstimate)
	route("/api/ai/conversation", h.Conversation.Converse)
	route("/api/ai/checkout", h.Conversation.Checkout)
	route("/api/checkout/order-summary", h.Conversation.OrderSummary)
	route("/api/voice/speak", h.Voice.Speak)
	route("/api/vehicles", h.Vehicles.ListVehicles)
	route("/api/vehicles/{id}", h.Vehicles.GetVehicle)

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "TalkToToyota Backend API",
		})
	})
	mux.Handle("/metrics", cfg.Metrics.Handler())
	mux.HandleFunc("/{$}", endpointIndex)

	var root http.Handler = mux
	root = LoggingMiddleware(cfg.Logger, root)
	root = RequestIDMiddleware(root)
	root = CORSMiddleware(cfg.AllowedOrigin, root)
	return root
}

func endpointIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "TalkToToyota Backend API",
		"status":  "running",
		"endpoints": map[string]any{
			"health": "/health",
			"voice": map[string]string{
				"speak": "POST /api/voice/speak",
			},
			"ai": map[string]string{
				"conversation": "POST /api/ai/conversation",
				"checkout":     "POST /api/ai/checkout",
			},
			"checkout": map[string]string{
				"orderSummary": "POST /api/checkout/order-summary",
			},
			"finance": map[string]string{
				"calculate":   "POST /api/finance/calculate",
				"aprEstimate": "GET /api/finance/apr-estimate/{creditScore}",
			},
			"vehicles": map[string]string{
				"list": "GET /api/vehicles",
				"get":  "GET /api/vehicles/{id}",
			},
		},
	})
}
