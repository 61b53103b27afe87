/**
 * @description
 * Theme resolution for product categories: joins a fixed visual styling table
 * with the externally managed category metadata. The category key is an open
 * string, so unknown categories get a deterministic fallback palette instead of
 * failing — new product types work without code changes.
 *
 * @notes
 * - ResolveProductTheme is pure and total: the same key and metadata map always
 *   yield the same theme, for any non-empty key.
 */
package app

import (
	"strings"

	"github.com/cajadigital/savings-service/internal/domain"
)

type visualTheme struct {
	cardGradient string
	heroGradient string
}

// Visual styling for the categories the site was designed around.
var knownVisuals = map[string]visualTheme{
	"goal":       {cardGradient: "from-blue-50 to-blue-100/50", heroGradient: "from-caja-blue-bright to-caja-blue-dark"},
	"housing":    {cardGradient: "from-green-50 to-green-100/50", heroGradient: "from-caja-green to-caja-blue-dark"},
	"programmed": {cardGradient: "from-amber-50 to-orange-100/50", heroGradient: "from-amber-500 to-orange-700"},
}

// Fallback palette for categories outside the fixed table. Selection is by a
// stable hash of the key, so a given category always lands on the same entry.
var fallbackPalette = []visualTheme{
	{cardGradient: "from-purple-50 to-purple-100/50", heroGradient: "from-purple-600 to-purple-800"},
	{cardGradient: "from-rose-50 to-rose-100/50", heroGradient: "from-rose-500 to-rose-700"},
	{cardGradient: "from-teal-50 to-teal-100/50", heroGradient: "from-teal-500 to-teal-700"},
	{cardGradient: "from-indigo-50 to-indigo-100/50", heroGradient: "from-indigo-500 to-indigo-700"},
	{cardGradient: "from-cyan-50 to-cyan-100/50", heroGradient: "from-cyan-600 to-cyan-800"},
	{cardGradient: "from-fuchsia-50 to-fuchsia-100/50", heroGradient: "from-fuchsia-500 to-fuchsia-700"},
}

var defaultBenefits = []domain.Benefit{
	{Title: "Rentabilidad competitiva", Description: "Tasa de interés diseñada para hacer crecer tu ahorro de forma constante."},
	{Title: "Gestión 100% digital", Description: "Administra tu cuenta desde cualquier dispositivo, sin trámites presenciales."},
	{Title: "Sin costos ocultos", Description: "Transparencia total en condiciones, sin comisiones sorpresa."},
	{Title: "Seguridad garantizada", Description: "Tu dinero protegido con los más altos estándares del sector."},
}

// hashTypeKey is a DJB2-style hash over the key's characters, kept in signed
// 32-bit arithmetic so palette selection is stable across runs and platforms.
func hashTypeKey(key string) int {
	h := int32(5381)
	for _, r := range key {
		h = h*33 + int32(r)
	}
	if h < 0 {
		return int(-int64(h))
	}
	return int(h)
}

// ResolveProductTheme returns the theme for a category key: fixed visuals when
// the key is known, otherwise a hash-selected palette entry; label and benefits
// come from the metadata map when present, otherwise a capitalized key and the
// default benefits list.
func ResolveProductTheme(typeKey string, productTypes map[string]domain.ProductType) domain.ProductTheme {
	visual, hasVisual := knownVisuals[typeKey]
	if !hasVisual {
		visual = fallbackPalette[hashTypeKey(typeKey)%len(fallbackPalette)]
	}

	theme := domain.ProductTheme{
		CardGradient: visual.cardGradient,
		HeroGradient: visual.heroGradient,
		Label:        capitalize(typeKey),
		Benefits:     append([]domain.Benefit(nil), defaultBenefits...),
	}

	if metadata, ok := productTypes[typeKey]; ok {
		theme.Label = metadata.Label
		theme.Benefits = append([]domain.Benefit(nil), metadata.Benefits...)
	}
	return theme
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
