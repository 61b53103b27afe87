/**
 * @description
 * Derived, non-persisted models produced by the simulator and onboarding flows.
 * Both are owned exclusively by the requesting session; nothing here is ever
 * written back to the catalog.
 */
package domain

// SimulationResult is the outcome of one compound-interest projection.
type SimulationResult struct {
	FinalBalance        float64 `json:"finalBalance"`
	TotalDeposited      float64 `json:"totalDeposited"`
	InterestEarned      float64 `json:"interestEarned"`
	EffectiveAnnualRate float64 `json:"effectiveAnnualRate"`
}

// ProductTheme is the derived visual + informational bundle for a product
// category: gradient styling joined with the category's label and benefits.
type ProductTheme struct {
	CardGradient string    `json:"cardGradient"`
	HeroGradient string    `json:"heroGradient"`
	Label        string    `json:"label"`
	Benefits     []Benefit `json:"benefits"`
}

// OnboardingSubmission is the record produced after a fully validated and
// bot-verified onboarding request. It exists only transiently.
type OnboardingSubmission struct {
	RequestCode string `json:"requestCode"`
	ProductID   string `json:"productId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}
