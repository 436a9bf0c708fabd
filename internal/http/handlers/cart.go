package handlers

import (
	"net/http"

	"github.com/pribylovaa/storefront/internal/models"
)

func (h *Handlers) Cart(w http.ResponseWriter, r *http.Request) {
	items, err := h.Shop.Cart(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CartList{Items: items})
}

// AddToCart — POST /cart/items {product_id, quantity}; quantity — дельта.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var in models.CartChange
	if err := decodeStrict(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.Shop.AddToCart(r.Context(), in.ProductID, in.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CartLine{Item: item})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.Shop.RemoveFromCart(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
