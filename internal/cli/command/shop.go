package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// CategoriesCommand — список категорий.
func CategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:   "categories",
		Usage:  "List product categories",
		Action: categories,
	}
}

// ProductsCommand — товары категории.
func ProductsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "List products of a category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "category",
				Aliases:  []string{"c"},
				Usage:    "Category name",
				Required: true,
			},
		},
		Action: products,
	}
}

// CartCommand — корзина; без подкоманды выводит её содержимое.
func CartCommand() *cli.Command {
	return &cli.Command{
		Name:   "cart",
		Usage:  "Show or change the cart",
		Action: cartShow,
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Change the quantity of a product in the cart",
				Flags: []cli.Flag{
					productFlag(),
					&cli.Int64Flag{
						Name:    "qty",
						Aliases: []string{"q"},
						Usage:   "Quantity delta (negative decreases)",
						Value:   1,
					},
				},
				Action: cartAdd,
			},
			{
				Name:   "remove",
				Usage:  "Remove a product from the cart",
				Flags:  []cli.Flag{productFlag()},
				Action: cartRemove,
			},
		},
	}
}

func productFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "product",
		Aliases:  []string{"p"},
		Usage:    "Product ID",
		Required: true,
	}
}

// OrderCommand — оформление заказа из корзины.
func OrderCommand() *cli.Command {
	return &cli.Command{
		Name:  "order",
		Usage: "Place an order for the cart contents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Aliases:  []string{"a"},
				Usage:    "Shipping address",
				Required: true,
			},
		},
		Action: order,
	}
}

// OrdersCommand — история заказов.
func OrdersCommand() *cli.Command {
	return &cli.Command{
		Name:   "orders",
		Usage:  "List placed orders",
		Action: orders,
	}
}

// ProfileCommand — профиль пользователя.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:   "profile",
		Usage:  "Show the user profile",
		Action: profile,
	}
}

func categories(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	cats, err := a.Shop.Categories(c.Context)
	if err != nil {
		return err
	}

	return render(c, categoryList(cats))
}

func products(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	list, err := a.Shop.ProductsByCategory(c.Context, c.String("category"))
	if err != nil {
		return err
	}

	return render(c, productList(list))
}

func cartShow(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	items, err := a.Shop.Cart(c.Context)
	if err != nil {
		return err
	}

	return render(c, cartList(items))
}

func cartAdd(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	item, err := a.Shop.AddToCart(c.Context, c.Int64("product"), c.Int64("qty"))
	if err != nil {
		return err
	}

	return render(c, cartLine(item))
}

func cartRemove(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	productID := c.Int64("product")
	if err := a.Shop.RemoveFromCart(c.Context, productID); err != nil {
		return err
	}

	return render(c, message{Result: fmt.Sprintf("product %d removed from cart", productID)})
}

func order(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	conf, err := a.Shop.PlaceOrder(c.Context, c.String("address"))
	if err != nil {
		return err
	}

	return render(c, confirmation(conf))
}

func orders(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	list, err := a.Shop.Orders(c.Context)
	if err != nil {
		return err
	}

	return render(c, orderList(list))
}

func profile(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	p, err := a.Shop.Profile(c.Context)
	if err != nil {
		return err
	}

	return render(c, profileView(p))
}
