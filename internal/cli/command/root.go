// command — команды shopctl (urfave/cli/v2).
//
// Before собирает app.App из конфигурации и кладёт его в Metadata;
// After закрывает хранилище. Команды магазина требуют сохранённой сессии:
// без неё они завершаются ErrNotLoggedIn, не обращаясь к бэкенду.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/pribylovaa/storefront/internal/app"
	"github.com/pribylovaa/storefront/internal/cli/output"
	"github.com/pribylovaa/storefront/internal/config"
	apierrors "github.com/pribylovaa/storefront/internal/errors"
)

const metaApp = "app"

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// ErrNotLoggedIn — защищённая команда без сохранённой сессии.
var ErrNotLoggedIn = errors.New("not logged in, run `shopctl login`")

// Builder собирает приложение для запуска команд.
type Builder func(ctx context.Context, c *cli.Context) (*app.App, error)

// App — shopctl со сборкой приложения из --config.
func App() *cli.App {
	return NewApp(FromConfig)
}

// NewApp — shopctl с заданной сборкой приложения.
func NewApp(build Builder) *cli.App {
	return &cli.App{
		Name:     "shopctl",
		Usage:    "storefront command-line client",
		Version:  fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:    globalFlags(),
		Metadata: map[string]any{},
		Commands: []*cli.Command{
			LoginCommand(),
			SignupCommand(),
			LogoutCommand(),
			StatusCommand(),
			CategoriesCommand(),
			ProductsCommand(),
			CartCommand(),
			OrderCommand(),
			OrdersCommand(),
			ProfileCommand(),
			AdminCommand(),
		},
		Before: func(c *cli.Context) error {
			if _, err := output.ParseFormat(c.String("output")); err != nil {
				return err
			}

			a, err := build(c.Context, c)
			if err != nil {
				return err
			}
			c.App.Metadata[metaApp] = a
			return nil
		},
		After: func(c *cli.Context) error {
			if a, ok := c.App.Metadata[metaApp].(*app.App); ok {
				return a.Close()
			}
			return nil
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to config file",
			EnvVars: []string{"CONFIG_PATH"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log at the level of the configured env instead of warnings only",
		},
	}
}

// FromConfig — сборка по умолчанию: config.Load(--config), логи в stderr, без метрик.
func FromConfig(ctx context.Context, c *cli.Context) (*app.App, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	return app.New(ctx, cfg, cliLogger(cfg.Env, c.Bool("verbose"), c.App.ErrWriter), nil)
}

func cliLogger(env string, verbose bool, w io.Writer) *slog.Logger {
	if verbose {
		return app.SetupLogger(env, w)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// appFrom — приложение, собранное в Before.
func appFrom(c *cli.Context) *app.App {
	a, _ := c.App.Metadata[metaApp].(*app.App)
	return a
}

// guarded — приложение для защищённой команды; без сессии ErrNotLoggedIn.
func guarded(c *cli.Context) (*app.App, error) {
	a := appFrom(c)
	if a == nil || !a.Session.IsAuthenticated() {
		return nil, ErrNotLoggedIn
	}
	return a, nil
}

// render выводит результат в формате --output.
func render(c *cli.Context, data any) error {
	f, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.Write(c.App.Writer, f, data)
}

// ExitCode — код завершения по виду ошибки: 2 — нужна (повторная) аутентификация,
// 3 — неверные аргументы, 1 — прочее.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrNotLoggedIn) {
		return 2
	}

	switch apierrors.KindOf(err) {
	case apierrors.KindSessionExpired, apierrors.KindAuthenticationFailed, apierrors.KindUnauthorized:
		return 2
	case apierrors.KindInvalid:
		return 3
	default:
		return 1
	}
}
