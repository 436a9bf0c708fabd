package session

import (
	"sync/atomic"

	"github.com/pribylovaa/storefront/internal/models"
)

// holder — единственное место, где живёт пара токенов в памяти.
// nil — анонимный режим. Опубликованная пара не изменяется: каждое
// изменение — новый указатель.
type holder struct {
	p atomic.Pointer[models.Credentials]
}

func (h *holder) get() *models.Credentials { return h.p.Load() }

// set публикует пару и возвращает её указатель.
func (h *holder) set(c models.Credentials) *models.Credentials {
	h.p.Store(&c)
	return &c
}

// clear обнуляет пару и возвращает предыдущую.
func (h *holder) clear() *models.Credentials { return h.p.Swap(nil) }

// swap заменяет old на next, только если текущей всё ещё является old.
func (h *holder) swap(old *models.Credentials, next models.Credentials) (*models.Credentials, bool) {
	return &next, h.p.CompareAndSwap(old, &next)
}

// drop обнуляет пару, только если текущей всё ещё является c.
func (h *holder) drop(c *models.Credentials) bool { return h.p.CompareAndSwap(c, nil) }
