package domain

import "time"

type GameMode string

const (
	GameModeRegular GameMode = "regular"
	GameModePlayoff GameMode = "playoff"
)

type Game struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Innings           int32     `json:"innings"`
	MaxPrimaryOnField int32     `json:"maxPrimaryOnField"`
	Mode              GameMode  `json:"mode"`
	PlayerIDs         []int64   `json:"playerIDs"`
	PlayedAt          time.Time `json:"playedAt"`
	CreatedAt         time.Time `json:"createdAt"`
	Version           int32     `json:"-"`
}
