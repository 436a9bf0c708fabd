package handlers

import (
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
)

func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Shop.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cats)
}

// Products — GET /products?category=<name>.
func (h *Handlers) Products(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		h.fail(w, r, apierrors.ErrInvalid)
		return
	}

	products, err := h.Shop.ProductsByCategory(r.Context(), category)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
