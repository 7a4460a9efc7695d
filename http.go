package secrets

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// localsAccountKey caches the resolved account on the request so a handler
// behind the gate does not hit the session store twice.
const localsAccountKey = "secrets_account"

const loginRoute = "/login"

// RouteAuthenticator bridges sessions and HTTP: it sets and clears the
// session cookie, resolves the current account for a request, and gates
// routes that require a signed-in user.
type RouteAuthenticator struct {
	sessions       Sessions
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   func(c *fiber.Ctx, err error) error
}

func NewRouteAuthenticator(sessions Sessions, cfg Config) *RouteAuthenticator {
	cookieDuration := DefaultSessionTTL
	if cfg.GetSessionTTL() > 0 {
		cookieDuration = cfg.GetSessionTTL()
	}

	a := &RouteAuthenticator{
		sessions:       sessions,
		cfg:            cfg,
		cookieDuration: cookieDuration,
		Logger:         defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Login creates a session for the account and hands the token to the client
// as an HTTP-only cookie.
func (a *RouteAuthenticator) Login(c *fiber.Ctx, account *Account) error {
	token, err := a.sessions.Create(c.UserContext(), account)
	if err != nil {
		a.Logger.Error("login: session create failed: %v", err)
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

// Logout destroys the session behind the cookie, if any, and expires the
// cookie either way.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	if token := c.Cookies(a.cfg.GetCookieName()); token != "" {
		if err := a.sessions.Destroy(c.UserContext(), token); err != nil {
			a.Logger.Warn("logout: session destroy failed: %v", err)
		}
	}

	a.cookieDel(c, a.cfg.GetCookieName())
	c.Locals(localsAccountKey, nil)
}

// CurrentAccount resolves the request's session cookie to a live account.
// The result is cached on the request context.
func (a *RouteAuthenticator) CurrentAccount(c *fiber.Ctx) (*Account, error) {
	if cached, ok := c.Locals(localsAccountKey).(*Account); ok && cached != nil {
		return cached, nil
	}

	token := c.Cookies(a.cfg.GetCookieName())
	if token == "" {
		return nil, ErrSessionNotFound
	}

	account, err := a.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		return nil, err
	}

	c.Locals(localsAccountKey, account)
	return account, nil
}

// IsAuthenticated reports whether the request carries a resolvable session.
func (a *RouteAuthenticator) IsAuthenticated(c *fiber.Ctx) bool {
	_, err := a.CurrentAccount(c)
	return err == nil
}

// Protected gates a route: requests without a resolvable session are
// remembered and redirected to the login page. The gate never answers with
// 401 or 403.
func (a *RouteAuthenticator) Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := a.CurrentAccount(c); err != nil {
			return a.ErrorHandler(c, err)
		}
		return c.Next()
	}
}

// GetRedirect pops the rejected route cookie, falling back to def.
func (a *RouteAuthenticator) GetRedirect(c *fiber.Ctx, def ...string) string {
	rejectedRoute := a.cfg.GetRejectedRouteKey()
	r := c.Cookies(rejectedRoute)
	if r == "" {
		if len(def) > 0 {
			return def[0]
		}
		return a.cfg.GetRejectedRouteDefault()
	}
	a.cookieDel(c, rejectedRoute)
	return r
}

// SetRedirect remembers the route a gated request was bounced from so a
// later login can land the user back there.
func (a *RouteAuthenticator) SetRedirect(c *fiber.Ctx) {
	rejectedRoute := a.cfg.GetRejectedRouteKey()

	a.Logger.Debug("setting redirect cookie %s=%s", rejectedRoute, c.OriginalURL())

	c.Cookie(&fiber.Cookie{
		Name:     rejectedRoute,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"auth gate rejected %s %s: %s %s",
		c.Method(),
		c.OriginalURL(),
		richErr.TextCode,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	a.SetRedirect(c)

	statusCode := fiber.StatusSeeOther
	if c.Method() == fiber.MethodGet {
		statusCode = fiber.StatusFound
	}
	return c.Redirect(loginRoute, statusCode)
}
