package audiobooks

import (
	"github.com/labstack/echo/v4"
	"github.com/listenlog/listenlog/pkg/binder"
	"github.com/listenlog/listenlog/pkg/bookinfo"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the audiobook and stats routes on the
// API group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, enricher bookinfo.Enricher) {
	h := &handler{
		audiobookService: NewService(db),
		enricher:         enricher,
	}

	g.GET("/audiobooks", h.list)
	g.POST("/audiobooks", h.create, binder.AllowEmptyBody)
	g.GET("/audiobooks/listened", h.listened)
	g.GET("/audiobooks/:id", h.retrieve)
	g.PUT("/audiobooks/:id", h.update)
	g.DELETE("/audiobooks/:id", h.deleteAudiobook)
	g.GET("/stats", h.stats)
}
