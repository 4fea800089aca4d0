package handler

type ContextKey string

var (
	SessionCtx    ContextKey = "session"
	MyInfoCtx     ContextKey = "myInfo"
	UserInfoCtx   ContextKey = "userInfo"
	PlayerInfoCtx ContextKey = "playerInfo"
	GameInfoCtx   ContextKey = "gameInfo"
	LineupInfoCtx ContextKey = "lineupInfo"
)
