package domain

import "time"

type Category string

const (
	CategoryPrimary Category = "M"
	CategoryOther   Category = "O"
)

const (
	MinSkill = 1
	MaxSkill = 5
)

type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Positions []string  `json:"positions"` // 可以是具体位置，也可以是 "*"、"IF"、"OF"
	Skill     int32     `json:"skill"`     // 1 最低，5 最高
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}
