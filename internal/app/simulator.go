/**
 * @description
 * The savings simulator: the pure compound-interest projection function and the
 * form state machine that validates user input and feeds it to the projection.
 *
 * The projection is future value of a lump sum plus an ordinary annuity of
 * monthly contributions:
 *
 *   FV = P × (1 + r)^n + PMT × [((1 + r)^n - 1) / r]
 *
 * where P is the initial deposit, PMT the monthly contribution, n the term in
 * months and r the monthly rate derived from the effective annual rate as a
 * percentage (r = annualRate / 12 / 100). When r is zero the projection is the
 * simple sum P + PMT × n.
 *
 * @dependencies
 * - internal/domain: Product and SimulationResult models.
 * - internal/money: input parsing and display formatting for error messages.
 */
package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cajadigital/savings-service/internal/domain"
	"github.com/cajadigital/savings-service/internal/money"
)

// CalculateSavings computes a compound-interest projection. Pure and
// deterministic; rounding is applied once, to the final balance only, half away
// from zero. Callers are responsible for termMonths >= 1.
func CalculateSavings(initialAmount, monthlyContribution float64, termMonths int, annualRate float64) domain.SimulationResult {
	totalDeposited := initialAmount + monthlyContribution*float64(termMonths)

	r := annualRate / 12 / 100

	var finalBalance float64
	if r == 0 {
		finalBalance = totalDeposited
	} else {
		compoundFactor := math.Pow(1+r, float64(termMonths))
		finalBalance = initialAmount*compoundFactor + monthlyContribution*((compoundFactor-1)/r)
	}

	finalBalance = math.Round(finalBalance)

	return domain.SimulationResult{
		FinalBalance:        finalBalance,
		TotalDeposited:      totalDeposited,
		InterestEarned:      finalBalance - totalDeposited,
		EffectiveAnnualRate: annualRate,
	}
}

// FormState is the lifecycle position of a form instance.
type FormState string

const (
	// StateEditing accepts field edits; errors from the last submit may be shown.
	StateEditing FormState = "editing"
	// StateComputed holds a simulation result; any edit drops back to editing.
	StateComputed FormState = "computed"
	// StateSubmitted is the terminal onboarding state.
	StateSubmitted FormState = "submitted"
)

// Field error keys, matching the JSON names the frontend displays against.
const (
	FieldProductID           = "productId"
	FieldInitialAmount       = "initialAmount"
	FieldMonthlyContribution = "monthlyContribution"
	FieldTermMonths          = "termMonths"
)

// SimulatorForm is the state machine behind the savings simulator. Each
// instance owns its fields, errors and result exclusively; nothing here is
// shared between sessions.
type SimulatorForm struct {
	products     []domain.Product
	fixedProduct *domain.Product

	State               FormState
	ProductID           string
	InitialAmount       string
	MonthlyContribution string
	TermMonths          string
	Errors              map[string]string
	Result              *domain.SimulationResult
}

// NewSimulatorForm creates a simulator over the given catalog. When
// preselectedID resolves to a product (e.g. from a query parameter), its
// suggested defaults seed the fields.
func NewSimulatorForm(products []domain.Product, preselectedID string) *SimulatorForm {
	f := &SimulatorForm{
		products: products,
		State:    StateEditing,
		Errors:   map[string]string{},
	}
	if preselectedID != "" {
		f.ProductID = preselectedID
		if p := f.findProduct(preselectedID); p != nil {
			f.seedDefaults(p)
		}
	}
	return f
}

// NewSingleProductSimulator locks the form to one product, as on a product
// detail page where the selector is hidden.
func NewSingleProductSimulator(product domain.Product) *SimulatorForm {
	f := &SimulatorForm{
		fixedProduct: &product,
		State:        StateEditing,
		Errors:       map[string]string{},
		ProductID:    product.ID,
	}
	f.seedDefaults(&product)
	return f
}

// SelectProduct switches the selected product, resets the amount and term
// fields to the new product's suggestions (or blank when it declares none),
// and clears all errors and any prior result.
func (f *SimulatorForm) SelectProduct(id string) {
	if f.fixedProduct != nil {
		return
	}
	f.ProductID = id
	f.Result = nil
	f.Errors = map[string]string{}
	f.State = StateEditing

	if p := f.findProduct(id); p != nil {
		f.seedDefaults(p)
		return
	}
	f.InitialAmount = ""
	f.MonthlyContribution = ""
	f.TermMonths = ""
}

// SetInitialAmount records an edit to the initial amount field.
func (f *SimulatorForm) SetInitialAmount(v string) {
	f.InitialAmount = v
	f.editing()
}

// SetMonthlyContribution records an edit to the monthly contribution field.
func (f *SimulatorForm) SetMonthlyContribution(v string) {
	f.MonthlyContribution = v
	f.editing()
}

// SetTermMonths records an edit to the term field.
func (f *SimulatorForm) SetTermMonths(v string) {
	f.TermMonths = v
	f.editing()
}

// Submit validates every field atomically and, when all pass, runs the
// projection with the selected product's annual rate. Returns true when the
// form reached StateComputed; otherwise Errors holds one message per failing
// field.
func (f *SimulatorForm) Submit() bool {
	selected := f.SelectedProduct()
	errs := map[string]string{}

	if selected == nil {
		errs[FieldProductID] = "Debes seleccionar un producto de ahorro."
	}

	initial, err := money.ParseAmount(f.InitialAmount)
	if err != nil || initial < 0 {
		errs[FieldInitialAmount] = "Ingresa un monto inicial válido."
	} else if selected != nil && selected.MinOpeningAmount > 0 && initial < selected.MinOpeningAmount {
		// Covers the empty field too: a blank amount parses as 0, which is
		// below any positive minimum.
		errs[FieldInitialAmount] = fmt.Sprintf(
			"El monto mínimo para %s es %s.", selected.Name, money.FormatCOP(selected.MinOpeningAmount))
	}

	monthly, err := money.ParseAmount(f.MonthlyContribution)
	if err != nil || monthly < 0 {
		errs[FieldMonthlyContribution] = "El aporte mensual debe ser un número mayor o igual a 0."
	}

	term, termErr := parseTermMonths(f.TermMonths)
	if termErr != nil {
		errs[FieldTermMonths] = "Ingresa un número entero de meses."
	} else if term < 1 || term > 360 {
		errs[FieldTermMonths] = "El plazo debe estar entre 1 y 360 meses."
	}

	f.Errors = errs
	if len(errs) > 0 {
		f.State = StateEditing
		return false
	}

	result := CalculateSavings(initial, monthly, term, selected.AnnualRate)
	f.Result = &result
	f.State = StateComputed
	return true
}

// SelectedProduct resolves the currently selected product, or nil.
func (f *SimulatorForm) SelectedProduct() *domain.Product {
	if f.fixedProduct != nil {
		return f.fixedProduct
	}
	return f.findProduct(f.ProductID)
}

func (f *SimulatorForm) findProduct(id string) *domain.Product {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i]
		}
	}
	return nil
}

func (f *SimulatorForm) seedDefaults(p *domain.Product) {
	f.InitialAmount = amountField(p.MinOpeningAmount)
	f.MonthlyContribution = amountField(p.RecommendedMonthlyContribution)
	if p.SuggestedTermMonths > 0 {
		f.TermMonths = strconv.Itoa(p.SuggestedTermMonths)
	} else {
		f.TermMonths = ""
	}
}

// editing drops a computed form back to editing; the stale result is cleared
// and only an explicit re-submit recomputes it.
func (f *SimulatorForm) editing() {
	if f.State == StateComputed {
		f.State = StateEditing
		f.Result = nil
	}
}

// amountField renders a product default as an input value; zero means "no
// default" and leaves the field blank.
func amountField(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseTermMonths(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("term is required")
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid term %q: %w", s, err)
	}
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("term %q is not an integer", s)
	}
	return int(value), nil
}
