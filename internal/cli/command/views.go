package command

import (
	"strconv"
	"time"

	"github.com/pribylovaa/storefront/internal/cli/output"
	"github.com/pribylovaa/storefront/internal/models"
)

// Табличные представления ответов бэкенда. В json/yaml выводятся сами модели.

type categoryList []models.Category

func (l categoryList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "NAME"}}
	for _, c := range l {
		t.Rows = append(t.Rows, []string{id(c.ID), c.Name})
	}
	return t
}

type productList []models.Product

func (l productList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "NAME", "PRICE", "STOCK", "CATEGORY"}}
	for _, p := range l {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		t.Rows = append(t.Rows, []string{id(p.ID), p.Name, money(p.Price), id(p.StockQuantity), category})
	}
	return t
}

type productView models.Product

func (p productView) Table() output.Table {
	return productList{models.Product(p)}.Table()
}

type cartList []models.CartItem

func (l cartList) Table() output.Table {
	t := output.Table{Headers: []string{"PRODUCT", "NAME", "PRICE", "QTY", "TOTAL"}}
	for _, it := range l {
		t.Rows = append(t.Rows, []string{id(it.ProductID), it.ProductName, money(it.Price), id(it.Quantity), money(it.TotalPrice)})
	}
	return t
}

type cartLine models.CartItem

func (it cartLine) Table() output.Table {
	return cartList{models.CartItem(it)}.Table()
}

type orderList []models.Order

func (l orderList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "STATUS", "TOTAL", "DATE", "ITEMS", "ADDRESS"}}
	for _, o := range l {
		date := ""
		if !o.OrderDate.IsZero() {
			date = o.OrderDate.Format(time.DateTime)
		}
		t.Rows = append(t.Rows, []string{id(o.ID), o.Status, money(o.TotalPrice), date, strconv.Itoa(len(o.Items)), o.ShippingAddress})
	}
	return t
}

type confirmation models.OrderConfirmation

func (c confirmation) Table() output.Table {
	t := output.Table{Headers: []string{"FIELD", "VALUE"}}
	if c.OrderID != 0 {
		t.Rows = append(t.Rows, []string{"order_id", id(c.OrderID)})
	}
	if c.Message != "" {
		t.Rows = append(t.Rows, []string{"message", c.Message})
	}
	return t
}

type profileView models.Profile

func (p profileView) Table() output.Table {
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.Format(time.RFC3339)
	}
	return output.Table{
		Headers: []string{"FIELD", "VALUE"},
		Rows: [][]string{
			{"email", p.Email},
			{"role", p.Role},
			{"created_at", created},
		},
	}
}

// message — ответ команд без полезной нагрузки (delete, remove).
type message struct {
	Result string `json:"result"`
}

func (m message) Table() output.Table {
	return output.Table{Rows: [][]string{{m.Result}}}
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
