/**
 * @description
 * This file defines the core domain models for the savings-service catalog: the
 * savings products offered on the marketing site and the category metadata that
 * describes them. JSON tags are camelCase because they are the wire contract the
 * frontend already consumes.
 *
 * @notes
 * - `Type` is deliberately an open string, not a closed enum. Unknown categories
 *   must keep working through the deterministic theme fallback without code changes.
 */
package domain

// Liquidity tiers attached to a product for display purposes only.
const (
	LiquidityHigh   = "high"
	LiquidityMedium = "medium"
	LiquidityLow    = "low"
)

// Product represents a savings-account offering in the catalog.
type Product struct {
	ID                             string   `json:"id"`
	Slug                           string   `json:"slug"`
	Name                           string   `json:"name"`
	Type                           string   `json:"type"`
	Description                    string   `json:"description"`
	TargetAudience                 string   `json:"targetAudience"`
	AnnualRate                     float64  `json:"annualRate"`
	MinOpeningAmount               float64  `json:"minOpeningAmount"`
	RecommendedMonthlyContribution float64  `json:"recommendedMonthlyContribution"`
	SuggestedTermMonths            int      `json:"suggestedTermMonths"`
	Liquidity                      string   `json:"liquidity"`
	Tags                           []string `json:"tags"`
	Image                          string   `json:"image,omitempty"`
	LastUpdated                    string   `json:"lastUpdated"`
}

// Benefit is a single selling point shown on a product detail page.
type Benefit struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProductType holds the display metadata for a product category. The catalog
// keys these by the `type` string carried on Product.
type ProductType struct {
	Label    string    `json:"label"`
	Benefits []Benefit `json:"benefits"`
}

// ProductUpdate carries a partial-field update for a product. Nil fields are
// left untouched by the repository.
type ProductUpdate struct {
	Name                           *string   `json:"name,omitempty"`
	Type                           *string   `json:"type,omitempty"`
	Description                    *string   `json:"description,omitempty"`
	TargetAudience                 *string   `json:"targetAudience,omitempty"`
	AnnualRate                     *float64  `json:"annualRate,omitempty"`
	MinOpeningAmount               *float64  `json:"minOpeningAmount,omitempty"`
	RecommendedMonthlyContribution *float64  `json:"recommendedMonthlyContribution,omitempty"`
	SuggestedTermMonths            *int      `json:"suggestedTermMonths,omitempty"`
	Liquidity                      *string   `json:"liquidity,omitempty"`
	Tags                           *[]string `json:"tags,omitempty"`
	Image                          *string   `json:"image,omitempty"`
}
