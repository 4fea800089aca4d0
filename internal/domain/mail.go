package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeCreateUser      = "create_user"
	MailTypeLineupPublished = "lineup_published"
)

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LineupPublishedMailData struct {
	FullName    string     `json:"fullName"`
	GameName    string     `json:"gameName"`
	PublishedBy string     `json:"publishedBy"`
	PlayedAt    string     `json:"playedAt"`
	Table       [][]string `json:"table"` // 第一行为表头
}
