package service

const (
	MinCreditScore = 300
	MaxCreditScore = 850

	// Fixed doc/registration fee added to every financed amount.
	DocFee = 800.0

	// Standard term rungs offered by the dealership.
	MinStandardTerm = 36
	MaxStandardTerm = 72

	// Alternative-generation policy knobs.
	MinAdditionalDown      = 500.0 // suggested down payment must add at least this much
	MaxDownPaymentFraction = 0.5   // never suggest more than half the price down
	ShorterTermMaxIncrease = 150.0 // hide shorter terms that raise the payment more than this
	DefaultSalesTaxRate    = 0.08  // decimal fraction applied when the request omits one
)

// APR tiers keyed by credit score, highest band first. Lower bounds are
// inclusive. The apr-estimate HTTP endpoint keeps its own copy of this
// table; the two are pinned together by TestAPREstimateMatchesEngine.
var aprTiers = []struct {
	MinScore int
	APR      float64
	Label    string
}{
	{750, 5.0, "Excellent"},
	{700, 6.2, "Good"},
	{650, 9.0, "Fair"},
	{600, 13.5, "Poor"},
	{0, 17.0, "Bad"},
}
