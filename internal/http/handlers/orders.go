package handlers

import (
	"net/http"

	"github.com/pribylovaa/storefront/internal/models"
)

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderRequest
	if err := decodeStrict(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	conf, err := h.Shop.PlaceOrder(r.Context(), in.ShippingAddress)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, conf)
}

func (h *Handlers) Orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Shop.Orders(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.OrderList{Orders: orders})
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Shop.Profile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileEnvelope{Profile: p})
}
