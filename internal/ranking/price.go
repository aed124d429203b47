package ranking

import (
	"sort"

	"github.com/dharmasatrya/besserbahn/internal/models"
)

// ByPrice sorts options ascending by price in place. Equal prices are ordered
// by label so the output does not depend on branch completion order.
func ByPrice(options []models.RouteOption) []models.RouteOption {
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Price != options[j].Price {
			return options[i].Price < options[j].Price
		}
		return options[i].Label < options[j].Label
	})
	return options
}
