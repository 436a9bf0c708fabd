package models

import "time"

// Category — категория каталога.
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category_name"`
}

// Product — карточка товара в том виде, в каком её отдаёт бэкенд.
type Product struct {
	ID            int64     `json:"product_id"`
	Name          string    `json:"product_name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int64     `json:"stock_quantity"`
	Image         string    `json:"product_image,omitempty"`
	Category      *Category `json:"category,omitempty"`
}

// ProductInput — поля товара для создания/изменения в админке.
type ProductInput struct {
	Name          string  `json:"product_name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int64   `json:"stock_quantity"`
	CategoryID    int64   `json:"category_id"`
}

// CartItem — строка корзины.
type CartItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"product_image,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	TotalPrice  float64 `json:"total_price"`
}

// CartChange — изменение количества товара в корзине (quantity — дельта).
type CartChange struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// CartList — конверт ответа getCartItems.
type CartList struct {
	Items []CartItem `json:"cart_items"`
}

// CartLine — конверт ответа addToCart.
type CartLine struct {
	Item CartItem `json:"cart_item"`
}

// OrderRequest — тело оформления заказа.
type OrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

// OrderConfirmation — ответ makeOrder. Бэкенд может вернуть любое из полей.
type OrderConfirmation struct {
	OrderID int64  `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// OrderItem — позиция заказа.
type OrderItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"total_price"`
}

// Order — заказ из истории пользователя.
type Order struct {
	ID              int64       `json:"order_id"`
	Status          string      `json:"order_status"`
	TotalPrice      float64     `json:"total_price"`
	OrderDate       time.Time   `json:"order_date"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []OrderItem `json:"items"`
}

// OrderList — конверт ответа getOrders.
type OrderList struct {
	Orders []Order `json:"orders"`
}

// Profile — профиль текущего пользователя.
type Profile struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileEnvelope — конверт ответа getProfile.
type ProfileEnvelope struct {
	Profile Profile `json:"profile"`
}
