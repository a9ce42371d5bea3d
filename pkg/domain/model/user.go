package model

import (
	"time"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// User is an account of the compliance console
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         types.Role `json:"role"`
	Department   string     `json:"department"`
	PasswordHash string     `json:"-" masq:"secret"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Department is a descriptor of an organizational unit
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
