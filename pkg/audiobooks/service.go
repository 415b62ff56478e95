package audiobooks

import (
	"context"
	"database/sql"
	"strings"

	"github.com/listenlog/listenlog/pkg/errcodes"
	"github.com/listenlog/listenlog/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAudiobookOptions struct {
	ID int
}

type ListAudiobooksOptions struct {
	Status *string
	Search *string
}

// updateColumns are replaced wholesale on update. id and date_added are
// never written after insert.
var updateColumns = []string{
	"title",
	"author",
	"narrator",
	"duration",
	"genre",
	"description",
	"date_started_listening",
	"date_end_listened",
	"notes",
	"status",
	"rating",
}

type statusCount struct {
	Status sql.NullString `bun:"status"`
	Count  int            `bun:"count"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAudiobook(ctx context.Context, audiobook *models.Audiobook) error {
	if audiobook.Status == "" {
		audiobook.Status = models.StatusCompleted
	}

	_, err := svc.db.
		NewInsert().
		Model(audiobook).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveAudiobook(ctx context.Context, opts RetrieveAudiobookOptions) (*models.Audiobook, error) {
	audiobook := &models.Audiobook{}

	err := svc.db.
		NewSelect().
		Model(audiobook).
		Where("a.id = ?", opts.ID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Audiobook")
		}
		return nil, errors.WithStack(err)
	}

	return audiobook, nil
}

func (svc *Service) ListAudiobooks(ctx context.Context, opts ListAudiobooksOptions) ([]*models.Audiobook, error) {
	audiobooks := []*models.Audiobook{}

	q := svc.db.
		NewSelect().
		Model(&audiobooks).
		Order("a.date_added DESC", "a.id DESC")

	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("a.status = ?", *opts.Status)
	}
	if opts.Search != nil {
		if term := strings.ToLower(strings.TrimSpace(*opts.Search)); term != "" {
			like := "%" + escapeLike(term) + "%"
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(a.title) LIKE ? ESCAPE '!'", like).
					WhereOr("LOWER(a.author) LIKE ? ESCAPE '!'", like).
					WhereOr("LOWER(a.narrator) LIKE ? ESCAPE '!'", like)
			})
		}
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return audiobooks, nil
}

// ListListened returns completed audiobooks in the order they were started,
// numbered from 1.
func (svc *Service) ListListened(ctx context.Context) ([]*models.NumberedAudiobook, error) {
	audiobooks := []*models.Audiobook{}

	err := svc.db.
		NewSelect().
		Model(&audiobooks).
		Where("a.status = ?", models.StatusCompleted).
		Order("a.date_started_listening ASC", "a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	numbered := make([]*models.NumberedAudiobook, len(audiobooks))
	for i, a := range audiobooks {
		numbered[i] = &models.NumberedAudiobook{Number: i + 1, Audiobook: a}
	}
	return numbered, nil
}

func (svc *Service) UpdateAudiobook(ctx context.Context, audiobook *models.Audiobook) error {
	res, err := svc.db.
		NewUpdate().
		Model(audiobook).
		Column(updateColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if n, err := res.RowsAffected(); err != nil {
		return errors.WithStack(err)
	} else if n == 0 {
		return errcodes.NotFound("Audiobook")
	}
	return nil
}

func (svc *Service) DeleteAudiobook(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Audiobook)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if n, err := res.RowsAffected(); err != nil {
		return errors.WithStack(err)
	} else if n == 0 {
		return errcodes.NotFound("Audiobook")
	}
	return nil
}

// RetrieveStats counts audiobooks per status. Total includes rows whose
// status is outside the known set.
func (svc *Service) RetrieveStats(ctx context.Context) (*models.AudiobookStats, error) {
	var rows []statusCount

	err := svc.db.
		NewSelect().
		Model((*models.Audiobook)(nil)).
		ColumnExpr("a.status AS status").
		ColumnExpr("COUNT(*) AS count").
		Group("a.status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	stats := &models.AudiobookStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status.String {
		case models.StatusCompleted:
			stats.Completed = row.Count
		case models.StatusListening:
			stats.Listening = row.Count
		case models.StatusToListen:
			stats.ToListen = row.Count
		}
	}
	return stats, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
