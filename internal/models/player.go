package models

import "time"

// Player is a globally unique upstream participant, identified by
// external id. The scheduler refreshes the gamertag on every sighting.
type Player struct {
	ID              int       `db:"id"`
	ExternalPlayerID string   `db:"external_player_id"`
	Gamertag        string    `db:"gamertag"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
