package app

import (
	"context"
	"errors"
	"testing"

	"github.com/cajadigital/savings-service/pkg/recaptcha"
)

type fakeTokenSource struct {
	token string
	err   error
}

func (f fakeTokenSource) Token(ctx context.Context, action string) (string, error) {
	return f.token, f.err
}

type fakeVerifier struct {
	verification *recaptcha.Verification
	err          error
	calls        int
	lastToken    string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*recaptcha.Verification, error) {
	f.calls++
	f.lastToken = token
	return f.verification, f.err
}

func validOnboardingForm(tokens recaptcha.TokenSource, verifier recaptcha.Verifier) *OnboardingForm {
	form := NewOnboardingForm(testProducts(), "p1", tokens, verifier)
	form.SetFullName("María García")
	form.SetDocumentNumber("1234567890")
	form.SetEmail("maria@correo.com")
	return form
}

func TestOnboardingFormCollectsFieldErrors(t *testing.T) {
	verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: true}}
	form := NewOnboardingForm(testProducts(), "", fakeTokenSource{token: recaptcha.SimulatedToken}, verifier)
	form.SetFullName("  ab ")
	form.SetDocumentNumber("123")
	form.SetEmail("no-es-un-correo")

	if form.Submit(context.Background()) {
		t.Fatal("expected submit to fail")
	}
	for _, field := range []string{FieldProductID, FieldFullName, FieldDocumentNumber, FieldEmail} {
		if _, ok := form.Errors[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, form.Errors)
		}
	}
	if verifier.calls != 0 {
		t.Fatalf("expected no verification before fields pass, got %d calls", verifier.calls)
	}
}

func TestOnboardingFormDocumentLengthBounds(t *testing.T) {
	tests := []struct {
		document string
		ok       bool
	}{
		{"12345", false},
		{"123456", true},
		{"123456789012", true},
		{"12345678901234", false},
	}

	for _, tt := range tests {
		t.Run(tt.document, func(t *testing.T) {
			verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: true, Score: 0.9}}
			form := validOnboardingForm(fakeTokenSource{token: recaptcha.SimulatedToken}, verifier)
			form.SetDocumentNumber(tt.document)

			got := form.Submit(context.Background())
			if got != tt.ok {
				t.Fatalf("document %q: expected ok=%t, got %t (errors: %v)", tt.document, tt.ok, got, form.Errors)
			}
			if !tt.ok {
				if _, present := form.Errors[FieldDocumentNumber]; !present {
					t.Fatalf("expected documentNumber error, got %v", form.Errors)
				}
			}
		})
	}
}

func TestOnboardingFormStripsDocumentInput(t *testing.T) {
	form := NewOnboardingForm(testProducts(), "p1", fakeTokenSource{}, &fakeVerifier{})
	form.SetDocumentNumber("12.345.678-9")

	if form.DocumentNumber != "123456789" {
		t.Fatalf("expected non-digits stripped at input time, got %q", form.DocumentNumber)
	}
}

func TestOnboardingFormNullTokenKeepsFields(t *testing.T) {
	verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: true}}
	form := validOnboardingForm(fakeTokenSource{token: ""}, verifier)

	if form.Submit(context.Background()) {
		t.Fatal("expected submit to fail without a token")
	}
	if form.State != StateEditing {
		t.Fatalf("expected form to stay editing, got %q", form.State)
	}
	if _, ok := form.Errors[FieldRecaptcha]; !ok {
		t.Fatalf("expected recaptcha-scoped error, got %v", form.Errors)
	}
	if form.FullName != "María García" || form.DocumentNumber != "1234567890" || form.Email != "maria@correo.com" {
		t.Fatal("expected field values preserved after token failure")
	}
	if verifier.calls != 0 {
		t.Fatalf("expected no verification without a token, got %d calls", verifier.calls)
	}
}

func TestOnboardingFormVerificationFailureSurfacesReason(t *testing.T) {
	verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: false, Error: "Verificación de seguridad fallida."}}
	form := validOnboardingForm(fakeTokenSource{token: "bad-token"}, verifier)

	if form.Submit(context.Background()) {
		t.Fatal("expected submit to fail on rejected verification")
	}
	if form.Errors[FieldRecaptcha] != "Verificación de seguridad fallida." {
		t.Fatalf("expected the verifier's reason, got %q", form.Errors[FieldRecaptcha])
	}
	if form.State != StateEditing {
		t.Fatalf("expected form to stay editing, got %q", form.State)
	}
}

func TestOnboardingFormVerificationFailureGenericFallback(t *testing.T) {
	verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: false}}
	form := validOnboardingForm(fakeTokenSource{token: "bad-token"}, verifier)

	form.Submit(context.Background())
	if form.Errors[FieldRecaptcha] == "" {
		t.Fatal("expected a generic fallback message when the verifier gives no reason")
	}
}

func TestOnboardingFormConnectionFault(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("dial tcp: connection refused")}
	form := validOnboardingForm(fakeTokenSource{token: recaptcha.SimulatedToken}, verifier)

	if form.Submit(context.Background()) {
		t.Fatal("expected submit to fail on a network fault")
	}
	if form.Errors[FieldRecaptcha] != "Error de conexión. Verifica tu internet e intenta de nuevo." {
		t.Fatalf("expected connection-error message, got %q", form.Errors[FieldRecaptcha])
	}
	// Retry with the same values must still be possible.
	verifier.err = nil
	verifier.verification = &recaptcha.Verification{Success: true, Score: 0.9}
	if !form.Submit(context.Background()) {
		t.Fatalf("expected retry to succeed, errors: %v", form.Errors)
	}
}

func TestOnboardingFormFullRoundTrip(t *testing.T) {
	verifier := &fakeVerifier{verification: &recaptcha.Verification{Success: true, Score: 0.9}}
	form := validOnboardingForm(fakeTokenSource{token: recaptcha.SimulatedToken}, verifier)
	form.SetFullName("  María García  ")

	if !form.Submit(context.Background()) {
		t.Fatalf("expected submit to succeed, errors: %v", form.Errors)
	}
	if form.State != StateSubmitted {
		t.Fatalf("expected terminal submitted state, got %q", form.State)
	}
	if form.Submission == nil || form.Submission.RequestCode == "" {
		t.Fatal("expected a non-empty request code")
	}
	if form.Submission.FullName != "María García" {
		t.Fatalf("expected trimmed name carried forward, got %q", form.Submission.FullName)
	}
	if verifier.lastToken != recaptcha.SimulatedToken {
		t.Fatalf("expected the acquired token to reach the verifier, got %q", verifier.lastToken)
	}

	// Submitted is terminal for the session.
	if form.Submit(context.Background()) {
		t.Fatal("expected re-submit after success to be rejected")
	}

	// A fresh session gets a distinct code.
	second := validOnboardingForm(fakeTokenSource{token: recaptcha.SimulatedToken}, &fakeVerifier{verification: &recaptcha.Verification{Success: true}})
	if !second.Submit(context.Background()) {
		t.Fatalf("expected second submit to succeed, errors: %v", second.Errors)
	}
	if second.Submission.RequestCode == form.Submission.RequestCode {
		t.Fatal("expected request codes to be unique per submission")
	}
}

// editDuringVerifyVerifier edits the form while verification is in flight, as
// a late-arriving response would observe.
type editDuringVerifyVerifier struct {
	form *OnboardingForm
}

func (v *editDuringVerifyVerifier) Verify(ctx context.Context, token string) (*recaptcha.Verification, error) {
	v.form.SetFullName("Nombre Editado Durante La Verificación")
	v.form.SetEmail("editado@correo.com")
	return &recaptcha.Verification{Success: true, Score: 0.9}, nil
}

func TestOnboardingFormLateResponseDoesNotCorruptEdits(t *testing.T) {
	verifier := &editDuringVerifyVerifier{}
	form := validOnboardingForm(fakeTokenSource{token: recaptcha.SimulatedToken}, verifier)
	verifier.form = form

	if !form.Submit(context.Background()) {
		t.Fatalf("expected submit to succeed, errors: %v", form.Errors)
	}

	// The submission carries the values that were validated, not the
	// mid-flight edits...
	if form.Submission.FullName != "María García" || form.Submission.Email != "maria@correo.com" {
		t.Fatalf("expected submission built from the validated snapshot, got %+v", form.Submission)
	}
	// ...and the newer user input is still intact on the form fields.
	if form.FullName != "Nombre Editado Durante La Verificación" {
		t.Fatalf("expected the newer edit preserved, got %q", form.FullName)
	}
}
