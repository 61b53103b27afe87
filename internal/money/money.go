/**
 * @description
 * Locale-aware money formatting and the small numeric parsing helpers shared by
 * the simulator and onboarding inputs. Amounts are Colombian pesos displayed
 * without decimals ("$ 1.234.567"), formatted through x/text so the grouping
 * rules come from the es-CO locale data instead of a hand-rolled table.
 *
 * @dependencies
 * - golang.org/x/text/language, message, number: locale-aware number rendering.
 */
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// FormatCOP renders an amount of Colombian pesos for display, e.g. "$ 1.234.567".
// Fractions are dropped; catalog amounts are whole pesos.
func FormatCOP(amount float64) string {
	return printer.Sprintf("$ %v", number.Decimal(math.Round(amount), number.MaxFractionDigits(0)))
}

// ParseAmount parses a currency input field. An empty or blank field parses as
// zero, matching the form semantics where optional amounts default to 0.
func ParseAmount(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return value, nil
}

// Digits strips every non-digit rune from s. The onboarding document input
// applies this at input time, so validation only ever sees digit runs.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
