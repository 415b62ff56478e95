package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/listenlog/listenlog/pkg/audiobooks"
	"github.com/listenlog/listenlog/pkg/binder"
	"github.com/listenlog/listenlog/pkg/bookinfo"
	"github.com/listenlog/listenlog/pkg/config"
	"github.com/listenlog/listenlog/pkg/errcodes"
	"github.com/listenlog/listenlog/web"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

const indexFile = "index.html"

func New(cfg *config.Config, db *bun.DB, enricher bookinfo.Enricher) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Set before any group is created so group level catch-alls pick it up.
	echo.NotFoundHandler = notFoundHandler

	// The client posts whole records back on edit, so extra keys are fine.
	api := e.Group("/api", binder.AllowUnknownFields)
	audiobooks.RegisterRoutesWithGroup(api, db, enricher)

	client := web.FS()
	if cfg.StaticDir != "" {
		client = os.DirFS(cfg.StaticDir)
	}
	e.GET("/*", spaHandler(client))

	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

// spaHandler serves files from the client bundle and falls back to the
// entry page so client-side routes survive a reload.
func spaHandler(client fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := strings.TrimPrefix(c.Param("*"), "/")
		if name != "" {
			if info, err := fs.Stat(client, name); err == nil && !info.IsDir() {
				return errors.WithStack(echo.StaticFileHandler(name, client)(c))
			}
		}
		return errors.WithStack(echo.StaticFileHandler(indexFile, client)(c))
	}
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
