package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	NameCtxKey    ContextKey = "name"
	EmailCtxKey   ContextKey = "email"
	SessionCtxKey ContextKey = "wizardSession"
)
