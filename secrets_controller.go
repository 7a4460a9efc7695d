package secrets

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// RegisterSecretsRoutes mounts the shared secrets wall plus the gated submit
// and delete routes.
func RegisterSecretsRoutes(app *fiber.App, opts ...SecretsControllerOption) *SecretsController {
	controller := NewSecretsController(opts...)

	gate := controller.Auther.Protected()

	app.Get(controller.Routes.Secrets, controller.SecretsIndex).Name("secrets.get")

	app.Get(controller.Routes.Submit, gate, controller.SubmitShow).Name("submit.get")
	app.Post(controller.Routes.Submit, gate, controller.SubmitCreate).Name("submit.post")
	app.Post(controller.Routes.SubmitDelete, gate, controller.SubmitDelete).Name("submit-delete.post")

	return controller
}

type SecretsControllerRoutes struct {
	Secrets      string
	Submit       string
	SubmitDelete string
}

type SecretsControllerViews struct {
	Secrets string
	Submit  string
}

type SecretsController struct {
	Debug    bool
	Logger   Logger
	Accounts Accounts
	Auther   *RouteAuthenticator
	Routes   *SecretsControllerRoutes
	Views    *SecretsControllerViews
}

type SecretsControllerOption func(*SecretsController) *SecretsController

func NewSecretsController(opts ...SecretsControllerOption) *SecretsController {
	c := &SecretsController{
		Logger: defLogger{},
		Routes: &SecretsControllerRoutes{
			Secrets:      "/secrets",
			Submit:       "/submit",
			SubmitDelete: "/submit/delete",
		},
		Views: &SecretsControllerViews{
			Secrets: "secrets",
			Submit:  "submit",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts store in secrets controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in secrets controller...")
	}

	return c
}

func WithSecretsLogger(logger Logger) SecretsControllerOption {
	return func(c *SecretsController) *SecretsController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithSecretsAccounts(accounts Accounts) SecretsControllerOption {
	return func(c *SecretsController) *SecretsController {
		c.Accounts = accounts
		return c
	}
}

func WithSecretsRouteAuthenticator(auther *RouteAuthenticator) SecretsControllerOption {
	return func(c *SecretsController) *SecretsController {
		c.Auther = auther
		return c
	}
}

func WithSecretsDebug(debug bool) SecretsControllerOption {
	return func(c *SecretsController) *SecretsController {
		c.Debug = debug
		return c
	}
}

// SecretsIndex renders every account's secrets. Deliberately public: the
// wall shows content to visitors whether or not they are signed in.
func (s *SecretsController) SecretsIndex(c *fiber.Ctx) error {
	accounts, err := s.Accounts.ListWithSecrets(c.UserContext())
	if err != nil {
		s.Logger.Error("secrets index: %v", err)
		accounts = nil
	}

	return c.Render(s.Views.Secrets, fiber.Map{
		"accounts":      accounts,
		"authenticated": s.Auther.IsAuthenticated(c),
	})
}

func (s *SecretsController) SubmitShow(c *fiber.Ctx) error {
	account, err := s.Auther.CurrentAccount(c)
	if err != nil {
		return c.Redirect(loginRoute, fiber.StatusFound)
	}

	return c.Render(s.Views.Submit, fiber.Map{
		"secrets": account.Secrets,
	})
}

// SubmitSecretPayload is the form payload
type SubmitSecretPayload struct {
	Secret string `form:"secret" json:"secret"`
}

// Validate will validate the payload
func (r SubmitSecretPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Secret, validation.Required, validation.Length(1, 500)),
	)
}

// SubmitCreate appends a secret to the signed-in account. Store failures are
// logged and the user is redirected anyway; the wall just won't show the
// change.
func (s *SecretsController) SubmitCreate(c *fiber.Ctx) error {
	account, err := s.Auther.CurrentAccount(c)
	if err != nil {
		return c.Redirect(loginRoute, fiber.StatusSeeOther)
	}

	payload := new(SubmitSecretPayload)
	if err := c.BodyParser(payload); err != nil {
		s.Logger.Error("submit parse payload: %v", err)
		return c.Redirect(s.Routes.Submit, fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		return c.Render(s.Views.Submit, fiber.Map{
			"secrets":    account.Secrets,
			"validation": err.Error(),
		})
	}

	if s.Debug {
		fmt.Println("======= SUBMIT ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=====================")
	}

	if _, err := s.Accounts.AppendSecret(c.UserContext(), account.ID, payload.Secret); err != nil {
		s.Logger.Error("submit append secret: %v", err)
	}

	return c.Redirect(s.Routes.Secrets, fiber.StatusSeeOther)
}

// SubmitDelete removes the first matching secret from the signed-in account.
// Deleting a secret that is not there is a quiet no-op.
func (s *SecretsController) SubmitDelete(c *fiber.Ctx) error {
	account, err := s.Auther.CurrentAccount(c)
	if err != nil {
		return c.Redirect(loginRoute, fiber.StatusSeeOther)
	}

	payload := new(SubmitSecretPayload)
	if err := c.BodyParser(payload); err != nil {
		s.Logger.Error("submit delete parse payload: %v", err)
		return c.Redirect(s.Routes.Submit, fiber.StatusSeeOther)
	}

	if _, err := s.Accounts.RemoveSecret(c.UserContext(), account.ID, payload.Secret); err != nil {
		s.Logger.Error("submit delete secret: %v", err)
	}

	return c.Redirect(s.Routes.Submit, fiber.StatusSeeOther)
}
