package currency

import (
	"fmt"
	"math"
	"strings"
)

// RoundCents rounds to two decimals so sums of fares compare cleanly.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func FormatEUR(amount float64) string {
	rounded := RoundCents(amount)

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	str := fmt.Sprintf("%.2f", rounded)
	intPart, fracPart, _ := strings.Cut(str, ".")

	result := "€" + addThousandsSeparator(intPart, ",") + "." + fracPart
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
