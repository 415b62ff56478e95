package audiobooks

type ListAudiobooksQuery struct {
	Status *string `query:"status" json:"status,omitempty"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=200"`
}

// CreateAudiobookPayload is what the add form posts. Everything but the
// title is optional; the status defaults to completed.
type CreateAudiobookPayload struct {
	Title                string  `json:"title" mod:"trim"`
	Author               *string `json:"author"`
	Narrator             *string `json:"narrator"`
	Duration             *string `json:"duration"`
	Genre                *string `json:"genre"`
	Description          *string `json:"description"`
	DateStartedListening *string `json:"date_started_listening" validate:"omitempty,date"`
	DateEndListened      *string `json:"date_end_listened" validate:"omitempty,date"`
	Notes                *string `json:"notes"`
	Status               string  `json:"status" default:"completed"`
}

// UpdateAudiobookPayload replaces every mutable column. Fields left out of
// the body are cleared.
type UpdateAudiobookPayload struct {
	Title                string   `json:"title" mod:"trim"`
	Author               *string  `json:"author"`
	Narrator             *string  `json:"narrator"`
	Duration             *string  `json:"duration"`
	Genre                *string  `json:"genre"`
	Description          *string  `json:"description"`
	DateStartedListening *string  `json:"date_started_listening" validate:"omitempty,date"`
	DateEndListened      *string  `json:"date_end_listened" validate:"omitempty,date"`
	Notes                *string  `json:"notes"`
	Status               string   `json:"status" default:"completed"`
	Rating               *float64 `json:"rating" validate:"omitempty,min=1,max=5"`
}
