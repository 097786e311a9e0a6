package middlewares

const (
	CtxRequestID = "request_id"

	ctxUserIDKey    = "auth.userID"
	ctxNameKey      = "auth.name"
	ctxRoleKey      = "auth.role"
	ctxSessionIDKey = "auth.sessionID"
)
