package audiobooks

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/listenlog/listenlog/pkg/bookinfo"
	"github.com/listenlog/listenlog/pkg/errcodes"
	"github.com/listenlog/listenlog/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	audiobookService *Service
	enricher         bookinfo.Enricher
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAudiobooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	audiobooks, err := h.audiobookService.ListAudiobooks(ctx, ListAudiobooksOptions{
		Status: params.Status,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobooks))
}

func (h *handler) listened(c echo.Context) error {
	ctx := c.Request().Context()

	audiobooks, err := h.audiobookService.ListListened(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobooks))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	audiobook, err := h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobook))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := CreateAudiobookPayload{}
	if err := c.Bind(&params); err != nil {
		// A body that isn't JSON has no title we can read.
		if errors.Is(err, errcodes.UnsupportedMediaType()) {
			return errcodes.ValidationError("Title is required")
		}
		return errors.WithStack(err)
	}
	if params.Title == "" {
		return errcodes.ValidationError("Title is required")
	}

	audiobook := &models.Audiobook{
		Title:                params.Title,
		Author:               params.Author,
		Narrator:             params.Narrator,
		Duration:             params.Duration,
		Genre:                params.Genre,
		Description:          params.Description,
		DateStartedListening: models.NewDateText(params.DateStartedListening),
		DateEndListened:      models.NewDateText(params.DateEndListened),
		Notes:                params.Notes,
		Status:               params.Status,
	}

	// What the user typed always wins. The lookup only fills gaps.
	info := h.enricher.Lookup(ctx, params.Title, valueOrEmpty(params.Author))
	if info != nil {
		if isBlank(audiobook.Author) {
			audiobook.Author = info.Author
		}
		if isBlank(audiobook.Description) {
			audiobook.Description = info.Description
		}
		audiobook.CoverURL = info.CoverURL
	}

	if err := h.audiobookService.CreateAudiobook(ctx, audiobook); err != nil {
		return errors.WithStack(err)
	}

	log.Info("audiobook created", logger.Data{
		"audiobook_id": audiobook.ID,
		"enriched":     info != nil,
	})

	return errors.WithStack(c.JSON(http.StatusOK, audiobook))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	params := UpdateAudiobookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Title == "" {
		return errcodes.ValidationError("Title is required")
	}

	audiobook := &models.Audiobook{
		ID:                   id,
		Title:                params.Title,
		Author:               params.Author,
		Narrator:             params.Narrator,
		Duration:             params.Duration,
		Genre:                params.Genre,
		Description:          params.Description,
		DateStartedListening: models.NewDateText(params.DateStartedListening),
		DateEndListened:      models.NewDateText(params.DateEndListened),
		Notes:                params.Notes,
		Status:               params.Status,
		Rating:               params.Rating,
	}

	if err := h.audiobookService.UpdateAudiobook(ctx, audiobook); err != nil {
		return errors.WithStack(err)
	}

	audiobook, err = h.audiobookService.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, audiobook))
}

func (h *handler) deleteAudiobook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Audiobook")
	}

	if err := h.audiobookService.DeleteAudiobook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{
		"message": "Audiobook deleted successfully",
	}))
}

func (h *handler) stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.audiobookService.RetrieveStats(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
