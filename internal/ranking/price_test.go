package ranking

import (
	"testing"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

func TestByPrice(t *testing.T) {
	options := []models.RouteOption{
		{Label: "Direct", Price: 89},
		{Label: "Via Hannover", Price: 71.2},
		{Label: "Via Frankfurt am Main", Price: 67.5},
		{Label: "Via Erfurt Hbf", Price: 71.2},
	}

	got := ByPrice(options)
	want := []string{"Via Frankfurt am Main", "Via Erfurt Hbf", "Via Hannover", "Direct"}
	for i, label := range want {
		if got[i].Label != label {
			t.Errorf("position %d: expected %s, got %s", i, label, got[i].Label)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Price > got[i].Price {
			t.Errorf("not sorted at %d: %v > %v", i, got[i-1].Price, got[i].Price)
		}
	}
}

func TestByPriceEmpty(t *testing.T) {
	if got := ByPrice(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
