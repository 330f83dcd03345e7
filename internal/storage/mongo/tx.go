package mongo

import (
	"context"
	"fmt"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// RunInTx выполняет fn в транзакции MongoDB.
// Commit — при nil, abort — при ошибке (исходная ошибка пробрасывается наружу).
// Сессия освобождается на любом пути выхода. Контекст транзакции передаётся
// в fn — все вызовы хранилища внутри fn должны использовать именно его.
// Требует реплика-сет (standalone Mongo транзакции не поддерживает).
func (m *Mongo) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "storage/mongo/RunInTx"

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("%s: start session: %w", op, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
