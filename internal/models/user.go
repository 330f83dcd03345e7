// Package models содержит доменные сущности asset-vault.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователя. Авторизация по ролям за пределами хранимого поля
// сервисом не выполняется.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User — учётная запись пользователя (MongoDB, коллекция users).
// Email уникален (unique-индекс), PasswordHash — bcrypt.
type User struct {
	ID           uuid.UUID `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}
