package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusToListen  = "to_listen"
	StatusListening = "listening"
	StatusCompleted = "completed"
)

type Audiobook struct {
	bun.BaseModel `bun:"table:audiobooks,alias:a"`

	ID                   int       `bun:",pk,autoincrement" json:"id"`
	Title                string    `bun:",notnull" json:"title"`
	Author               *string   `json:"author"`
	Narrator             *string   `json:"narrator"`
	Duration             *string   `json:"duration"`
	Genre                *string   `json:"genre"`
	Description          *string   `json:"description"`
	CoverURL             *string   `bun:"cover_url" json:"cover_url"`
	GoodreadsURL         *string   `bun:"goodreads_url" json:"goodreads_url"`
	Rating               *float64  `json:"rating"`
	DateAdded            time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"date_added"`
	DateStartedListening *DateText `json:"date_started_listening"`
	DateEndListened      *DateText `json:"date_end_listened"`
	Notes                *string   `json:"notes"`
	Status               string    `bun:",notnull" json:"status"`
}

// NumberedAudiobook is a record with its 1-based position in a ranked list.
type NumberedAudiobook struct {
	Number int `json:"number"`
	*Audiobook
}

type AudiobookStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Listening int `json:"listening"`
	ToListen  int `json:"to_listen"`
}
