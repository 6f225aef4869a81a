package bootstrap

import "context"

// AuditLog is a structured operational audit entry, distinct from the
// request-scoped application logs.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
