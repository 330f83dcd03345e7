// log передаёт request-scoped логгер через context.Context: HTTP-мидлвар
// кладёт логгер с request_id в контекст запроса, а сервисный и storage-слои
// достают его через From, ничего не зная о транспорте.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into возвращает контекст с привязанным логгером.
// nil-логгер не привязывается: From в этом случае отдаст slog.Default().
func Into(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}

	return context.WithValue(ctx, ctxKey{}, l)
}

// From возвращает логгер текущего запроса; вне запроса (фоновые задачи,
// старт процесса) — slog.Default().
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}
