package models

import "time"

type Sighting struct {
	ID        int       `db:"id" json:"id"`
	Animal    string    `db:"animal" json:"animal"`
	DateTime  time.Time `db:"date_time" json:"dateTime"` // stamped by the server on create
	Location  string    `db:"location" json:"location"`
	Notes     string    `db:"notes" json:"notes"`
	PhotoURL  *string   `db:"photo_url" json:"photoUrl"` // nullable, never written by the API
	AudioURL  *string   `db:"audio_url" json:"audioUrl"` // nullable, never written by the API
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SightingListItem is a row as returned by the listing query, where date_time
// is already rendered by Postgres for display.
type SightingListItem struct {
	ID        int       `db:"id" json:"id"`
	Animal    string    `db:"animal" json:"animal"`
	DateTime  string    `db:"date_time" json:"dateTime"`
	Location  string    `db:"location" json:"location"`
	Notes     string    `db:"notes" json:"notes"`
	PhotoURL  *string   `db:"photo_url" json:"photoUrl"`
	AudioURL  *string   `db:"audio_url" json:"audioUrl"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
