// handlers — JSON-эндпойнты локального фронта витрины.
//
// Ошибка вида SessionExpired превращается в 303 на страницу входа
// (принудительная навигация после неудачного refresh); остальные ошибки
// пишутся через apierrors.WriteError.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
)

var errBadID = errors.New("bad id")

// Session — то, что фронт использует от менеджера сессии.
type Session interface {
	Login(ctx context.Context, identifier, secret string) (models.Credentials, error)
	Signup(ctx context.Context, identifier, secret string) (models.Credentials, error)
	Logout(ctx context.Context)
	IsAuthenticated() bool
	Credentials() (models.Credentials, bool)
}

// Shop — защищённые операции магазина (clients.Storefront).
type Shop interface {
	Categories(ctx context.Context) ([]models.Category, error)
	ProductsByCategory(ctx context.Context, category string) ([]models.Product, error)
	Cart(ctx context.Context) ([]models.CartItem, error)
	AddToCart(ctx context.Context, productID, delta int64) (models.CartItem, error)
	RemoveFromCart(ctx context.Context, productID int64) error
	PlaceOrder(ctx context.Context, address string) (models.OrderConfirmation, error)
	Profile(ctx context.Context) (models.Profile, error)
	Orders(ctx context.Context) ([]models.Order, error)
	AdminProducts(ctx context.Context) ([]models.Product, error)
	AdminProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Handlers struct {
	Session   Session
	Shop      Shop
	LoginPath string
}

func New(s Session, shop Shop, loginPath string) *Handlers {
	return &Handlers{Session: s, Shop: shop, LoginPath: loginPath}
}

// fail — единая обработка ошибок хендлеров.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierrors.KindOf(err) == apierrors.KindSessionExpired {
		http.Redirect(w, r, h.LoginPath, http.StatusSeeOther)
		return
	}

	apierrors.WriteError(w, r, err)
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return errors.Join(apierrors.ErrInvalid, err)
	}

	return nil
}

// idParam — положительный int64 из URL-параметра {id}.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Join(apierrors.ErrInvalid, errBadID)
	}

	return id, nil
}
