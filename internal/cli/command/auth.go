package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pribylovaa/storefront/internal/cli/output"
	"github.com/pribylovaa/storefront/internal/models"
)

// sessionStatus — состояние сессии без самих токенов.
type sessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Store         string     `json:"store"`
}

func (s sessionStatus) Table() output.Table {
	t := output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.Rows = append(t.Rows,
		[]string{"authenticated", fmt.Sprint(s.Authenticated)},
		[]string{"store", s.Store},
	)
	if s.Subject != "" {
		t.Rows = append(t.Rows, []string{"subject", s.Subject})
	}
	if s.ExpiresAt != nil {
		t.Rows = append(t.Rows, []string{"expires_at", s.ExpiresAt.Format(time.RFC3339)})
	}
	return t
}

func statusOf(creds models.Credentials, ok bool, store string) sessionStatus {
	s := sessionStatus{Authenticated: ok, Store: store}
	if !ok {
		return s
	}

	if claims, ok := creds.Claims(); ok {
		s.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			s.ExpiresAt = &exp
		}
	}
	return s
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Aliases:  []string{"e"},
			Usage:    "Account email",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Account password",
			EnvVars:  []string{"SHOPCTL_PASSWORD"},
			Required: true,
		},
	}
}

// LoginCommand — вход и сохранение пары токенов.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Log in and persist the session",
		Flags:  credentialFlags(),
		Action: login,
	}
}

// SignupCommand — регистрация (роль из backend.default_role) и вход.
func SignupCommand() *cli.Command {
	return &cli.Command{
		Name:    "signup",
		Aliases: []string{"register"},
		Usage:   "Register a new account and log in",
		Flags:   credentialFlags(),
		Action:  signup,
	}
}

// LogoutCommand — очистка сессии; успешна всегда.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the persisted session",
		Action: logout,
	}
}

// StatusCommand — текущее состояние сессии.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the session state",
		Action: status,
	}
}

func login(c *cli.Context) error {
	a := appFrom(c)

	creds, err := a.Session.Login(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}

	return render(c, statusOf(creds, true, a.Config.Store.Driver))
}

func signup(c *cli.Context) error {
	a := appFrom(c)

	creds, err := a.Session.Signup(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}

	return render(c, statusOf(creds, true, a.Config.Store.Driver))
}

func logout(c *cli.Context) error {
	a := appFrom(c)
	a.Session.Logout(c.Context)

	return render(c, statusOf(models.Credentials{}, false, a.Config.Store.Driver))
}

func status(c *cli.Context) error {
	a := appFrom(c)
	creds, ok := a.Session.Credentials()

	return render(c, statusOf(creds, ok, a.Config.Store.Driver))
}
