/**
 * @description
 * The onboarding intake form state machine: field validation, bot verification
 * through the recaptcha collaborator, and the terminal submitted record with a
 * freshly generated request code.
 *
 * Submission is two-phase. Field validation collects every error at once and
 * stops before any verification work. Only a fully valid form acquires a token
 * and verifies it; any verification failure is surfaced under the recaptcha
 * key and the form stays editable with all field values intact.
 *
 * @dependencies
 * - github.com/google/uuid: opaque request codes for successful submissions.
 * - internal/domain, internal/money, pkg/recaptcha.
 */
package app

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/cajadigital/savings-service/internal/domain"
	"github.com/cajadigital/savings-service/internal/money"
	"github.com/cajadigital/savings-service/pkg/recaptcha"
)

// Onboarding field error keys.
const (
	FieldFullName       = "fullName"
	FieldDocumentNumber = "documentNumber"
	FieldEmail          = "email"
	FieldRecaptcha      = "recaptcha"
)

var (
	documentPattern = regexp.MustCompile(`^\d{6,12}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// OnboardingForm is the state machine behind the account-opening intake form.
// Each instance owns its fields and errors exclusively.
type OnboardingForm struct {
	products []domain.Product
	tokens   recaptcha.TokenSource
	verifier recaptcha.Verifier

	State          FormState
	ProductID      string
	FullName       string
	DocumentNumber string
	Email          string
	Errors         map[string]string
	Submission     *domain.OnboardingSubmission
}

// NewOnboardingForm creates an onboarding form over the given catalog.
// preselectedID seeds the product selection (e.g. from a query parameter).
func NewOnboardingForm(products []domain.Product, preselectedID string, tokens recaptcha.TokenSource, verifier recaptcha.Verifier) *OnboardingForm {
	return &OnboardingForm{
		products:  products,
		tokens:    tokens,
		verifier:  verifier,
		State:     StateEditing,
		ProductID: preselectedID,
		Errors:    map[string]string{},
	}
}

// SelectProduct switches the product and clears its field error.
func (f *OnboardingForm) SelectProduct(id string) {
	f.ProductID = id
	delete(f.Errors, FieldProductID)
}

// SelectedProduct resolves the currently selected product, or nil. Selection
// only requires a non-empty id; an unresolvable id still submits, since the
// catalog may have refreshed under the session.
func (f *OnboardingForm) SelectedProduct() *domain.Product {
	for i := range f.products {
		if f.products[i].ID == f.ProductID {
			return &f.products[i]
		}
	}
	return nil
}

// SetFullName records an edit to the name field.
func (f *OnboardingForm) SetFullName(v string) {
	f.FullName = v
}

// SetDocumentNumber records an edit to the document field. Non-digit
// characters are stripped at input time, so validation only ever sees digit
// runs and a length failure means the run is too short or too long.
func (f *OnboardingForm) SetDocumentNumber(v string) {
	f.DocumentNumber = money.Digits(v)
}

// SetEmail records an edit to the email field.
func (f *OnboardingForm) SetEmail(v string) {
	f.Email = v
}

// Submit validates every field, then runs bot verification, and on success
// transitions to the terminal StateSubmitted with a unique request code.
// Returns true only for that terminal transition. Any failure leaves the form
// in StateEditing with every entered value intact.
func (f *OnboardingForm) Submit(ctx context.Context) bool {
	if f.State == StateSubmitted {
		return false
	}

	// Snapshot the values being submitted: a late verification response must
	// never pick up edits made while the check was in flight.
	productID := f.ProductID
	name := strings.TrimSpace(f.FullName)
	document := strings.TrimSpace(f.DocumentNumber)
	email := strings.TrimSpace(f.Email)

	errs := map[string]string{}

	if productID == "" {
		errs[FieldProductID] = "Selecciona el producto que deseas abrir."
	}

	switch {
	case name == "":
		errs[FieldFullName] = "Ingresa tu nombre completo."
	case len([]rune(name)) < 3:
		errs[FieldFullName] = "El nombre debe tener al menos 3 caracteres."
	}

	switch {
	case document == "":
		errs[FieldDocumentNumber] = "Ingresa tu número de documento."
	case !documentPattern.MatchString(document):
		errs[FieldDocumentNumber] = "El documento debe tener entre 6 y 12 dígitos numéricos."
	}

	switch {
	case email == "":
		errs[FieldEmail] = "Ingresa tu correo electrónico."
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Ingresa un correo electrónico válido."
	}

	f.Errors = errs
	if len(errs) > 0 {
		return false
	}

	token, err := f.tokens.Token(ctx, "onboarding_submit")
	if err != nil || token == "" {
		f.Errors[FieldRecaptcha] = "No se pudo completar la verificación de seguridad. Recarga la página e intenta de nuevo."
		return false
	}

	verification, err := f.verifier.Verify(ctx, token)
	if err != nil {
		f.Errors[FieldRecaptcha] = "Error de conexión. Verifica tu internet e intenta de nuevo."
		return false
	}
	if !verification.Success {
		message := verification.Error
		if message == "" {
			message = "La verificación de seguridad falló. Intenta de nuevo."
		}
		f.Errors[FieldRecaptcha] = message
		return false
	}

	f.Submission = &domain.OnboardingSubmission{
		RequestCode: uuid.NewString(),
		ProductID:   productID,
		FullName:    name,
		Email:       email,
	}
	f.State = StateSubmitted
	return true
}
