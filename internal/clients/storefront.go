package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pribylovaa/storefront/internal/clients/transport"
	"github.com/pribylovaa/storefront/internal/config"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
)

var (
	// ErrNotInCart — товара нет в корзине, удалять нечего.
	ErrNotInCart = fmt.Errorf("%w: product is not in cart", apierrors.ErrInvalid)
	// ErrEmptyAddress — заказ без адреса доставки не отправляется.
	ErrEmptyAddress = fmt.Errorf("%w: shipping address is empty", apierrors.ErrInvalid)
	// ErrZeroDelta — изменение количества на 0 не имеет смысла.
	ErrZeroDelta = fmt.Errorf("%w: quantity delta is zero", apierrors.ErrInvalid)
	// ErrBadProductID — идентификатор товара должен быть положительным.
	ErrBadProductID = fmt.Errorf("%w: product id must be positive", apierrors.ErrInvalid)
)

// Storefront — защищённые эндпойнты магазина. Ожидается транспорт
// с подключёнными хуками сессии (bearer + refresh-and-retry).
type Storefront struct {
	t     transport.Doer
	paths config.PathsConfig
}

func NewStorefront(t transport.Doer, paths config.PathsConfig) *Storefront {
	return &Storefront{t: t, paths: paths}
}

// Categories — список категорий в порядке бэкенда.
func (s *Storefront) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "clients.Storefront.Categories"

	var out []models.Category
	if err := s.call(ctx, http.MethodGet, s.paths.Categories, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ProductsByCategory — товары категории по её имени.
func (s *Storefront) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	const op = "clients.Storefront.ProductsByCategory"

	q := url.Values{"category": {category}}

	var out []models.Product
	if err := s.call(ctx, http.MethodGet, s.paths.Products, q, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Cart — текущее содержимое корзины.
func (s *Storefront) Cart(ctx context.Context) ([]models.CartItem, error) {
	const op = "clients.Storefront.Cart"

	var out models.CartList
	if err := s.call(ctx, http.MethodGet, s.paths.Cart, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Items, nil
}

// AddToCart меняет количество товара в корзине на delta (может быть отрицательной)
// и возвращает обновлённую строку корзины.
func (s *Storefront) AddToCart(ctx context.Context, productID, delta int64) (models.CartItem, error) {
	const op = "clients.Storefront.AddToCart"

	if productID <= 0 {
		return models.CartItem{}, fmt.Errorf("%s: %w", op, ErrBadProductID)
	}
	if delta == 0 {
		return models.CartItem{}, fmt.Errorf("%s: %w", op, ErrZeroDelta)
	}

	var out models.CartLine
	in := models.CartChange{ProductID: productID, Quantity: delta}
	if err := s.call(ctx, http.MethodPost, s.paths.AddToCart, nil, in, &out); err != nil {
		return models.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return out.Item, nil
}

// RemoveFromCart удаляет строку корзины целиком: бэкенд умеет только дельты,
// поэтому отправляется отрицательное текущее количество.
func (s *Storefront) RemoveFromCart(ctx context.Context, productID int64) error {
	const op = "clients.Storefront.RemoveFromCart"

	items, err := s.Cart(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, it := range items {
		if it.ProductID != productID {
			continue
		}
		if it.Quantity <= 0 {
			break
		}
		if _, err := s.AddToCart(ctx, productID, -it.Quantity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %w", op, ErrNotInCart)
}

// PlaceOrder оформляет заказ из текущей корзины.
func (s *Storefront) PlaceOrder(ctx context.Context, address string) (models.OrderConfirmation, error) {
	const op = "clients.Storefront.PlaceOrder"

	address = strings.TrimSpace(address)
	if address == "" {
		return models.OrderConfirmation{}, fmt.Errorf("%s: %w", op, ErrEmptyAddress)
	}

	var out models.OrderConfirmation
	in := models.OrderRequest{ShippingAddress: address}
	if err := s.call(ctx, http.MethodPost, s.paths.PlaceOrder, nil, in, &out); err != nil {
		return models.OrderConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Profile — профиль текущего пользователя.
func (s *Storefront) Profile(ctx context.Context) (models.Profile, error) {
	const op = "clients.Storefront.Profile"

	var out models.ProfileEnvelope
	if err := s.call(ctx, http.MethodGet, s.paths.Profile, nil, nil, &out); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	return out.Profile, nil
}

// Orders — история заказов с позициями.
func (s *Storefront) Orders(ctx context.Context) ([]models.Order, error) {
	const op = "clients.Storefront.Orders"

	var out models.OrderList
	if err := s.call(ctx, http.MethodGet, s.paths.Orders, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Orders, nil
}

// AdminProducts — все товары. Записи без идентификатора отбрасываются.
func (s *Storefront) AdminProducts(ctx context.Context) ([]models.Product, error) {
	const op = "clients.Storefront.AdminProducts"

	var raw []models.Product
	if err := s.call(ctx, http.MethodGet, s.paths.AdminProducts, nil, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := raw[:0]
	for _, p := range raw {
		if p.ID != 0 {
			out = append(out, p)
		}
	}

	return out, nil
}

func (s *Storefront) AdminProduct(ctx context.Context, id int64) (models.Product, error) {
	const op = "clients.Storefront.AdminProduct"

	if id <= 0 {
		return models.Product{}, fmt.Errorf("%s: %w", op, ErrBadProductID)
	}

	var out models.Product
	if err := s.call(ctx, http.MethodGet, s.productPath(id), nil, nil, &out); err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storefront) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	const op = "clients.Storefront.CreateProduct"

	var out models.Product
	if err := s.call(ctx, http.MethodPost, s.paths.AdminProducts, nil, in, &out); err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storefront) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) (models.Product, error) {
	const op = "clients.Storefront.UpdateProduct"

	if id <= 0 {
		return models.Product{}, fmt.Errorf("%s: %w", op, ErrBadProductID)
	}

	var out models.Product
	if err := s.call(ctx, http.MethodPut, s.productPath(id), nil, in, &out); err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storefront) DeleteProduct(ctx context.Context, id int64) error {
	const op = "clients.Storefront.DeleteProduct"

	if id <= 0 {
		return fmt.Errorf("%s: %w", op, ErrBadProductID)
	}

	if err := s.call(ctx, http.MethodDelete, s.productPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storefront) productPath(id int64) string {
	return strings.TrimRight(s.paths.AdminProducts, "/") + "/" + strconv.FormatInt(id, 10) + "/"
}

func (s *Storefront) call(ctx context.Context, method, path string, q url.Values, in, out any) error {
	req, err := transport.NewRequest(method, path, in)
	if err != nil {
		return err
	}
	req.Query = q

	return do(ctx, s.t, req, out)
}
