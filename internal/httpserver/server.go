package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
)

type Options struct {
	Logger      *slog.Logger
	CSRFEnabled bool
	CSRF        csrf.Config
}

// NewEcho builds the echo instance with the middleware chain shared by every
// route. Routes are added with Register.
func NewEcho(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"X-CSRF-Token",
		},
	}))
	e.Use(loggingmw.RequestLogger(opts.Logger))
	if opts.CSRFEnabled {
		e.Use(csrf.Middleware(opts.CSRF))
	}
	return e
}
