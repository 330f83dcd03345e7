package models

import "time"

// TokenPair — пара токенов, выдаваемая при регистрации/входе/обновлении.
//
// Описание:
//   - AccessToken — короткоживущий JWT для доступа к API; нигде не хранится,
//     проверяется только по подписи и сроку;
//   - RefreshToken — долгоживущий JWT, подписанный отдельным ключом;
//     дополнительно отслеживается в revocation-хранилище (Redis);
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
