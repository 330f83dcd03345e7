// cache реализует revocation-хранилище refresh-токенов поверх Redis.
//
// По ключу "refresh_token:<identity>" хранится ТЕКУЩИЙ refresh-токен
// пользователя с TTL, равным сроку жизни токена. Ровно один активный
// refresh-токен на пользователя: ротация перезаписывает значение, logout
// удаляет ключ.
//
// Хранилище — вспомогательный контур поверх подписи JWT: его недоступность
// не валит аутентификацию (fail-soft), решение остаётся за сервисным слоем.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable — хранилище недоступно; результат проверки неопределён.
var ErrUnavailable = errors.New("revocation store unavailable")

// ValidationResult — исход сверки предъявленного токена с текущим.
type ValidationResult int

const (
	// ValidationMatch — предъявленный токен совпадает с текущим.
	ValidationMatch ValidationResult = iota
	// ValidationMismatch — ключ есть, но токен другой (ротация уже прошла —
	// вероятное повторное использование).
	ValidationMismatch
	// ValidationMissing — ключа нет (logout, истечение TTL либо токен
	// никогда не выдавался).
	ValidationMissing
	// ValidationUnavailable — хранилище не ответило; сверка не состоялась.
	ValidationUnavailable
)

// RevocationStore — контракт revocation-хранилища refresh-токенов.
type RevocationStore interface {
	// Put записывает текущий refresh-токен пользователя с заданным TTL.
	Put(ctx context.Context, identity, token string, ttl time.Duration) error
	// Get возвращает текущий токен и признак наличия ключа.
	Get(ctx context.Context, identity string) (string, bool, error)
	// Validate сверяет предъявленный токен с текущим.
	// При недоступности хранилища — ValidationUnavailable и ErrUnavailable.
	Validate(ctx context.Context, identity, token string) (ValidationResult, error)
	// Invalidate удаляет ключ пользователя. Идемпотентна:
	// true — ключ реально удалён, false — удалять было нечего.
	Invalidate(ctx context.Context, identity string) (bool, error)
	// Available — быстрый ping для healthz.
	Available(ctx context.Context) bool
	// Close закрывает клиент Redis.
	Close() error
}

type redisStore struct {
	rdb       *redis.Client
	prefix    string
	opTimeout time.Duration
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "refresh_token:". Ping на старте
// информативный: недоступный Redis не мешает поднять сервис.
func NewRedisStore(redisURL, prefix string, opTimeout time.Duration) (RevocationStore, error) {
	if prefix == "" {
		prefix = "refresh_token:"
	}

	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	return &redisStore{rdb: rdb, prefix: prefix, opTimeout: opTimeout}, nil
}

func (s *redisStore) key(identity string) string { return s.prefix + identity }

// withTimeout ограничивает каждую операцию собственным дедлайном, чтобы
// зависший Redis не удерживал запрос дольше opTimeout.
func (s *redisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *redisStore) Put(ctx context.Context, identity, token string, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, s.key(identity), token, ttl).Err(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}

	return nil
}

func (s *redisStore) Get(ctx context.Context, identity string) (string, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.rdb.Get(ctx, s.key(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, errors.Join(ErrUnavailable, err)
	}

	return val, true, nil
}

func (s *redisStore) Validate(ctx context.Context, identity, token string) (ValidationResult, error) {
	current, found, err := s.Get(ctx, identity)
	if err != nil {
		return ValidationUnavailable, err
	}

	if !found {
		return ValidationMissing, nil
	}

	if current != token {
		return ValidationMismatch, nil
	}

	return ValidationMatch, nil
}

func (s *redisStore) Invalidate(ctx context.Context, identity string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	removed, err := s.rdb.Del(ctx, s.key(identity)).Result()
	if err != nil {
		return false, errors.Join(ErrUnavailable, err)
	}

	return removed > 0, nil
}

func (s *redisStore) Available(ctx context.Context) bool {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rdb.Ping(ctx).Err() == nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }
