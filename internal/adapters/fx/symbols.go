package fx

import "strings"

var popularSymbols = []string{
	"INR", "USD", "EUR", "GBP", "AED", "SGD", "JPY", "CNY", "AUD", "CAD",
	// crypto
	"BTC", "ETH", "USDT", "SOL", "BNB",
}

// PopularSymbols returns the fiat and crypto codes offered to clients by default.
func PopularSymbols() []string {
	out := make([]string, len(popularSymbols))
	copy(out, popularSymbols)
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
