package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	apierrors "github.com/pribylovaa/storefront/internal/errors"
	"github.com/pribylovaa/storefront/internal/models"
)

// AdminCommand — управление каталогом товаров.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all products",
				Action: adminList,
			},
			{
				Name:      "get",
				Usage:     "Show a product",
				ArgsUsage: "PRODUCT_ID",
				Action:    adminGet,
			},
			{
				Name:   "create",
				Usage:  "Create a product",
				Flags:  productInputFlags(true),
				Action: adminCreate,
			},
			{
				Name:      "update",
				Usage:     "Update a product (unset flags keep current values)",
				ArgsUsage: "PRODUCT_ID",
				Flags:     productInputFlags(false),
				Action:    adminUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a product",
				ArgsUsage: "PRODUCT_ID",
				Action:    adminDelete,
			},
		},
	}
}

func productInputFlags(create bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Product name", Required: create},
		&cli.StringFlag{Name: "description", Usage: "Product description"},
		&cli.Float64Flag{Name: "price", Usage: "Unit price", Required: create},
		&cli.Int64Flag{Name: "stock", Usage: "Stock quantity"},
		&cli.Int64Flag{Name: "category-id", Usage: "Category ID", Required: create},
	}
}

// productArg — PRODUCT_ID из первого позиционного аргумента.
func productArg(c *cli.Context) (int64, error) {
	raw := c.Args().First()
	productID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || productID <= 0 {
		return 0, fmt.Errorf("%w: PRODUCT_ID must be a positive integer, got %q", apierrors.ErrInvalid, raw)
	}
	return productID, nil
}

// applyProductFlags переносит в in только явно заданные флаги.
func applyProductFlags(c *cli.Context, in *models.ProductInput) {
	if c.IsSet("name") {
		in.Name = c.String("name")
	}
	if c.IsSet("description") {
		in.Description = c.String("description")
	}
	if c.IsSet("price") {
		in.Price = c.Float64("price")
	}
	if c.IsSet("stock") {
		in.StockQuantity = c.Int64("stock")
	}
	if c.IsSet("category-id") {
		in.CategoryID = c.Int64("category-id")
	}
}

func inputOf(p models.Product) models.ProductInput {
	in := models.ProductInput{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
	if p.Category != nil {
		in.CategoryID = p.Category.ID
	}
	return in
}

func adminList(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	list, err := a.Shop.AdminProducts(c.Context)
	if err != nil {
		return err
	}

	return render(c, productList(list))
}

func adminGet(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	productID, err := productArg(c)
	if err != nil {
		return err
	}

	p, err := a.Shop.AdminProduct(c.Context, productID)
	if err != nil {
		return err
	}

	return render(c, productView(p))
}

func adminCreate(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	var in models.ProductInput
	applyProductFlags(c, &in)

	p, err := a.Shop.CreateProduct(c.Context, in)
	if err != nil {
		return err
	}

	return render(c, productView(p))
}

// adminUpdate — PUT ожидает полное описание товара, поэтому незаданные поля берутся из текущего.
func adminUpdate(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	productID, err := productArg(c)
	if err != nil {
		return err
	}

	current, err := a.Shop.AdminProduct(c.Context, productID)
	if err != nil {
		return err
	}

	in := inputOf(current)
	applyProductFlags(c, &in)

	p, err := a.Shop.UpdateProduct(c.Context, productID, in)
	if err != nil {
		return err
	}

	return render(c, productView(p))
}

func adminDelete(c *cli.Context) error {
	a, err := guarded(c)
	if err != nil {
		return err
	}

	productID, err := productArg(c)
	if err != nil {
		return err
	}

	if err := a.Shop.DeleteProduct(c.Context, productID); err != nil {
		return err
	}

	return render(c, message{Result: fmt.Sprintf("product %d deleted", productID)})
}
