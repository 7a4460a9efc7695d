package secrets

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts the home page and the local login, registration
// and logout routes.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Get(controller.Routes.Home, controller.HomeShow).Name("home.get")

	app.Get(controller.Routes.Login, controller.LoginShow).Name("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost).Name("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).Name("sign-out.get")

	app.Get(controller.Routes.Register, controller.RegistrationShow).Name("register.get")
	app.Post(controller.Routes.Register, controller.RegistrationCreate).Name("register.post")

	return controller
}

type AuthControllerRoutes struct {
	Home     string
	Login    string
	Logout   string
	Register string
	Secrets  string
}

type AuthControllerViews struct {
	Home     string
	Login    string
	Register string
}

type AuthController struct {
	Debug    bool
	Logger   Logger
	Verifier *CredentialVerifier
	Auther   *RouteAuthenticator
	Routes   *AuthControllerRoutes
	Views    *AuthControllerViews
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Home:     "/",
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
			Secrets:  "/secrets",
		},
		Views: &AuthControllerViews{
			Home:     "home",
			Login:    "login",
			Register: "register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Verifier == nil {
		panic("Missing CredentialVerifier in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

func WithAuthLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithAuthVerifier(verifier *CredentialVerifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Verifier = verifier
		return c
	}
}

func WithAuthRouteAuthenticator(auther *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithAuthDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func (a *AuthController) HomeShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Home, fiber.Map{
		"authenticated": a.Auther.IsAuthenticated(c),
	})
}

func (a *AuthController) LoginShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Login, fiber.Map{
		"errors": nil,
		"record": nil,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(1, 100),
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginPost verifies local credentials. Any failure, parse, validation, or
// credential mismatch, lands back on the login page; the response never says
// which part was wrong.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %v", err)
		return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		return c.Render(a.Views.Login, fiber.Map{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("====================")
	}

	account, err := a.Verifier.Verify(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Info("login rejected for %q: %v", payload.Username, err)
		return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	if err := a.Auther.Login(c, account); err != nil {
		a.Logger.Error("login session error: %v", err)
		return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	return c.Redirect(a.Auther.GetRedirect(c, a.Routes.Secrets), fiber.StatusSeeOther)
}

func (a *AuthController) LogOut(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.Redirect(a.Routes.Home, fiber.StatusFound)
}

func (a *AuthController) RegistrationShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Register, fiber.Map{
		"errors": map[string]string{},
		"record": nil,
	})
}

// RegistrationCreatePayload is the form payload
type RegistrationCreatePayload struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

// RegistrationCreate makes a new local account and signs it in right away.
// Failures bounce back to the registration page.
func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload: %v", err)
		return c.Redirect(a.Routes.Register, fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Info("register validate payload: %v", err)
		return c.Render(a.Views.Register, fiber.Map{
			"record":     payload,
			"validation": err.Error(),
		})
	}

	account, err := a.Verifier.Register(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return c.Render(a.Views.Register, fiber.Map{
				"record": payload,
				"errors": map[string]string{
					"username": "That username is already taken",
				},
			})
		}

		a.Logger.Error("register error: %v", err)
		return c.Redirect(a.Routes.Register, fiber.StatusSeeOther)
	}

	if err := a.Auther.Login(c, account); err != nil {
		a.Logger.Error("register session error: %v", err)
		return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}

	return c.Redirect(a.Routes.Secrets, fiber.StatusSeeOther)
}
