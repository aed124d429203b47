package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

// ErrNoPriceData marks a candidate whose price cannot be compared.
var ErrNoPriceData = errors.New("no price data")

type structuredPrice struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

// Extract reads a provider price that is either {"amount": x, "currency": c}
// or a bare number. Anything else reports ok=false.
func Extract(raw json.RawMessage) (amount float64, ok bool) {
	amount, err := decode(raw)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func decode(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ErrNoPriceData
	}

	var amount float64
	switch raw[0] {
	case '{':
		var p structuredPrice
		if err := json.Unmarshal(raw, &p); err != nil || p.Amount == nil {
			return 0, ErrNoPriceData
		}
		amount = *p.Amount
	default:
		if err := json.Unmarshal(raw, &amount); err != nil {
			return 0, ErrNoPriceData
		}
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrNoPriceData
	}
	return amount, nil
}

type Priced struct {
	Journey models.JourneyCandidate
	Amount  float64
}

// Cheapest returns the lowest priced candidate. Candidates without a price are
// ignored; on equal prices the earliest candidate in provider order wins.
func Cheapest(candidates []models.JourneyCandidate) (Priced, bool) {
	var best Priced
	found := false

	for _, c := range candidates {
		amount, ok := Extract(c.Price)
		if !ok {
			continue
		}
		if !found || amount < best.Amount {
			best = Priced{Journey: c, Amount: amount}
			found = true
		}
	}

	return best, found
}
