// FILE: internal/entity/user_entity.go
package entity

import "time"

type User struct {
	Id           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
