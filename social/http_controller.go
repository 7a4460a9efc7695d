package social

import (
	"github.com/gofiber/fiber/v2"

	secrets "github.com/JulijaJermolajeva/Authentication-Secrets"
)

// RegisterRoutes mounts the provider sign-in routes:
//
//	GET /auth/:provider          start the provider flow
//	GET /auth/:provider/secrets  provider callback
//
// The callback path mirrors the redirect URI registered with each provider.
func RegisterRoutes(app *fiber.App, opts ...HTTPControllerOption) *HTTPController {
	controller := NewHTTPController(opts...)

	app.Get(controller.Routes.Callback, controller.Callback).Name("social-callback.get")
	app.Get(controller.Routes.Begin, controller.BeginAuth).Name("social-begin.get")

	return controller
}

type HTTPControllerRoutes struct {
	Begin    string
	Callback string
}

type HTTPController struct {
	Logger          secrets.Logger
	Authenticator   *Authenticator
	Auther          *secrets.RouteAuthenticator
	Routes          *HTTPControllerRoutes
	SuccessRedirect string
	ErrorRedirect   string
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Routes: &HTTPControllerRoutes{
			Begin:    "/auth/:provider",
			Callback: "/auth/:provider/secrets",
		},
		SuccessRedirect: "/secrets",
		ErrorRedirect:   "/login",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Authenticator == nil {
		panic("Missing Authenticator in social controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in social controller...")
	}

	if c.Logger == nil {
		c.Logger = c.Auther.Logger
	}

	return c
}

func WithHTTPAuthenticator(authenticator *Authenticator) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Authenticator = authenticator
		return c
	}
}

func WithHTTPRouteAuthenticator(auther *secrets.RouteAuthenticator) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Auther = auther
		return c
	}
}

func WithHTTPLogger(logger secrets.Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// BeginAuth redirects the user to the provider's consent screen.
func (h *HTTPController) BeginAuth(c *fiber.Ctx) error {
	providerName := c.Params("provider")

	redirect, err := h.Authenticator.BeginAuth(c.UserContext(), providerName)
	if err != nil {
		h.Logger.Warn("begin auth for %q: %v", providerName, err)
		return c.Redirect(h.ErrorRedirect, fiber.StatusFound)
	}

	return c.Redirect(redirect.URL, fiber.StatusTemporaryRedirect)
}

// Callback handles the provider redirect. A denied consent screen or any
// failure along the exchange path lands on the login page; success creates a
// session and continues to the secrets wall.
func (h *HTTPController) Callback(c *fiber.Ctx) error {
	providerName := c.Params("provider")

	if errParam := c.Query("error"); errParam != "" {
		h.Logger.Info("callback denied by %s: %s", providerName, errParam)
		return c.Redirect(h.ErrorRedirect, fiber.StatusFound)
	}

	code := c.Query("code")
	stateToken := c.Query("state")
	if code == "" || stateToken == "" {
		return c.Redirect(h.ErrorRedirect, fiber.StatusFound)
	}

	result, err := h.Authenticator.CompleteAuth(c.UserContext(), providerName, code, stateToken)
	if err != nil {
		h.Logger.Warn("callback for %q: %v", providerName, err)
		return c.Redirect(h.ErrorRedirect, fiber.StatusFound)
	}

	if err := h.Auther.Login(c, result.Account); err != nil {
		h.Logger.Error("callback session error: %v", err)
		return c.Redirect(h.ErrorRedirect, fiber.StatusFound)
	}

	redirect := result.RedirectURL
	if redirect == "" {
		redirect = h.SuccessRedirect
	}

	return c.Redirect(redirect, fiber.StatusFound)
}
