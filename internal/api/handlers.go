/**
 * @description
 * This file contains the HTTP handlers for the savings-service API. Handlers
 * parse incoming requests, call the catalog service or drive the form state
 * machines, and translate outcomes to status codes: field errors become 422
 * payloads keyed by field, store conflicts 409, missing slugs 404, and
 * verification failures 403. They act as the bridge between the web layer and
 * the business logic layer.
 *
 * @dependencies
 * - encoding/json, errors, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/cache, internal/domain, internal/store,
 *   pkg/recaptcha, pkg/revalidate.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cajadigital/savings-service/internal/app"
	"github.com/cajadigital/savings-service/internal/cache"
	"github.com/cajadigital/savings-service/internal/domain"
	"github.com/cajadigital/savings-service/internal/store"
	"github.com/cajadigital/savings-service/pkg/recaptcha"
	"github.com/cajadigital/savings-service/pkg/revalidate"
)

// ProductSource supplies the catalog snapshot the site flows (simulator,
// onboarding) read. In production this is the read-through catalog facade;
// the write service satisfies it directly when no facade is configured.
type ProductSource interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductSourceFunc adapts a function to the ProductSource interface.
type ProductSourceFunc func(ctx context.Context) ([]domain.Product, error)

// GetProducts calls the wrapped function.
func (f ProductSourceFunc) GetProducts(ctx context.Context) ([]domain.Product, error) {
	return f(ctx)
}

// Handlers holds the collaborators the API endpoints use.
type Handlers struct {
	service  *app.Service
	products ProductSource
	tokens   recaptcha.TokenSource
	verifier recaptcha.Verifier

	catalogCache       cache.TagCache
	revalidationSecret string
}

// NewHandlers creates the API handler set.
func NewHandlers(service *app.Service, products ProductSource, tokens recaptcha.TokenSource, verifier recaptcha.Verifier, catalogCache cache.TagCache, revalidationSecret string) *Handlers {
	return &Handlers{
		service:            service,
		products:           products,
		tokens:             tokens,
		verifier:           verifier,
		catalogCache:       catalogCache,
		revalidationSecret: revalidationSecret,
	}
}

// ListProductsHandler serves the full catalog.
func (h *Handlers) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		log.Printf("level=error component=api msg=\"list products failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list products")
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

// GetProductHandler serves one product by slug; an unknown slug is a
// page-level not-found outcome.
func (h *Handlers) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	product, err := h.service.ProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("level=error component=api msg=\"get product failed\" slug=%s err=%v", slug, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load product")
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// GetProductThemeHandler serves the resolved theme for a product's category.
func (h *Handlers) GetProductThemeHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	theme, err := h.service.ThemeForProduct(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("level=error component=api msg=\"resolve theme failed\" slug=%s err=%v", slug, err)
		h.writeError(w, http.StatusInternalServerError, "Unable to resolve theme")
		return
	}
	h.writeJSON(w, http.StatusOK, theme)
}

// CreateProductHandler stores a new product from an administrative caller.
func (h *Handlers) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.Product
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.CreateProduct(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, err, "create product")
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// UpdateProductHandler applies a partial update by slug.
func (h *Handlers) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var payload domain.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), slug, payload)
	if err != nil {
		h.writeServiceError(w, err, "update product")
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// ListProductTypesHandler serves the category metadata map.
func (h *Handlers) ListProductTypesHandler(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ProductTypes(r.Context())
	if err != nil {
		log.Printf("level=error component=api msg=\"list product types failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to list product types")
		return
	}
	h.writeJSON(w, http.StatusOK, types)
}

type createProductTypePayload struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Benefits []domain.Benefit `json:"benefits"`
}

// CreateProductTypeHandler registers category metadata under a new key.
func (h *Handlers) CreateProductTypeHandler(w http.ResponseWriter, r *http.Request) {
	var payload createProductTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pt := domain.ProductType{Label: payload.Label, Benefits: payload.Benefits}
	if err := h.service.CreateProductType(r.Context(), payload.Key, pt); err != nil {
		h.writeServiceError(w, err, "create product type")
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"key": payload.Key, "label": payload.Label})
}

// simulateRequest carries the simulator form fields as the raw strings the
// user typed; the form state machine owns parsing and validation.
type simulateRequest struct {
	ProductID           string `json:"productId"`
	InitialAmount       string `json:"initialAmount"`
	MonthlyContribution string `json:"monthlyContribution"`
	TermMonths          string `json:"termMonths"`
}

type simulateResponse struct {
	Result      *domain.SimulationResult `json:"result"`
	ProductID   string                   `json:"productId"`
	ProductName string                   `json:"productName"`
}

// SimulateHandler drives one submission of the simulator form.
func (h *Handlers) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	var payload simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	products, err := h.products.GetProducts(r.Context())
	if err != nil {
		log.Printf("level=error component=api msg=\"simulate catalog load failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load products")
		return
	}

	form := app.NewSimulatorForm(products, payload.ProductID)
	form.SetInitialAmount(payload.InitialAmount)
	form.SetMonthlyContribution(payload.MonthlyContribution)
	form.SetTermMonths(payload.TermMonths)

	if !form.Submit() {
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": form.Errors})
		return
	}

	selected := form.SelectedProduct()
	h.writeJSON(w, http.StatusOK, simulateResponse{
		Result:      form.Result,
		ProductID:   selected.ID,
		ProductName: selected.Name,
	})
}

type onboardingRequest struct {
	ProductID      string `json:"productId"`
	FullName       string `json:"fullName"`
	DocumentNumber string `json:"documentNumber"`
	Email          string `json:"email"`
	// RecaptchaToken is the client-acquired token. When absent the configured
	// token source (simulated mode in development) supplies one.
	RecaptchaToken string `json:"recaptchaToken"`
}

// OnboardingHandler drives one submission of the onboarding form.
func (h *Handlers) OnboardingHandler(w http.ResponseWriter, r *http.Request) {
	var payload onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	products, err := h.products.GetProducts(r.Context())
	if err != nil {
		log.Printf("level=error component=api msg=\"onboarding catalog load failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Unable to load products")
		return
	}

	tokens := h.tokens
	if strings.TrimSpace(payload.RecaptchaToken) != "" {
		tokens = staticTokenSource(payload.RecaptchaToken)
	}

	form := app.NewOnboardingForm(products, payload.ProductID, tokens, h.verifier)
	form.SetFullName(payload.FullName)
	form.SetDocumentNumber(payload.DocumentNumber)
	form.SetEmail(payload.Email)

	if form.Submit(r.Context()) {
		h.writeJSON(w, http.StatusCreated, form.Submission)
		return
	}

	status := http.StatusUnprocessableEntity
	if _, recaptchaFailed := form.Errors[app.FieldRecaptcha]; recaptchaFailed {
		status = http.StatusForbidden
	}
	h.writeJSON(w, status, map[string]interface{}{"errors": form.Errors})
}

type verifyRecaptchaRequest struct {
	Token string `json:"token"`
}

// VerifyRecaptchaHandler checks a bot-verification token server-side.
func (h *Handlers) VerifyRecaptchaHandler(w http.ResponseWriter, r *http.Request) {
	var payload verifyRecaptchaRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(payload.Token) == "" {
		h.writeJSON(w, http.StatusBadRequest, recaptcha.Verification{
			Success: false, Error: "Token de verificación requerido.",
		})
		return
	}

	verification, err := h.verifier.Verify(r.Context(), payload.Token)
	if err != nil {
		log.Printf("level=error component=api msg=\"recaptcha verification failed\" err=%v", err)
		h.writeJSON(w, http.StatusBadGateway, recaptcha.Verification{
			Success: false, Error: "Error de conexión con el servicio de verificación.",
		})
		return
	}
	if !verification.Success {
		h.writeJSON(w, http.StatusForbidden, verification)
		return
	}
	h.writeJSON(w, http.StatusOK, verification)
}

type revalidateRequest struct {
	Secret string `json:"secret"`
	Tag    string `json:"tag"`
}

// RevalidateHandler invalidates one catalog cache tag. Mirrors the frontend
// revalidation endpoint contract: 401 on secret mismatch, 400 on an
// unrecognized tag.
func (h *Handlers) RevalidateHandler(w http.ResponseWriter, r *http.Request) {
	var payload revalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Secret != h.revalidationSecret {
		h.writeError(w, http.StatusUnauthorized, "Invalid secret")
		return
	}
	if !revalidate.ValidTag(payload.Tag) {
		h.writeError(w, http.StatusBadRequest, "Invalid tag")
		return
	}

	if h.catalogCache != nil {
		if err := h.catalogCache.Invalidate(r.Context(), payload.Tag); err != nil {
			log.Printf("level=error component=api msg=\"cache invalidation failed\" tag=%s err=%v", payload.Tag, err)
			h.writeError(w, http.StatusInternalServerError, "Unable to invalidate cache")
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"revalidated": true, "tag": payload.Tag})
}

// staticTokenSource hands out a token the client already acquired.
type staticTokenSource string

func (s staticTokenSource) Token(ctx context.Context, action string) (string, error) {
	return string(s), nil
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, app.ErrInvalidPayload):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("level=error component=api msg=\"%s failed\" err=%v", op, err)
		h.writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
