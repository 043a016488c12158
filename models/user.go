package models

import "time"

/************************************************
/**** MARK: USER ROLES ****/
/************************************************/
const USER_ROLE_ADMIN = "admin"
const USER_ROLE_TECNICO = "tecnico"

// User é a visão administrativa de uma conta. A identidade (senha, token)
// pertence ao provedor externo; aqui guardamos o espelho uid/email/role usado
// pelas listagens e pelo controle de acesso.
//
// PasswordHash só é usado pelo provedor de identidade local (dev/testes) e
// nunca sai na serialização.
type User struct {
	ID           int64      `gorm:"primary_key;AUTO_INCREMENT" json:"-"`
	UID          string     `gorm:"column:uid;not null;unique_index" json:"uid"`
	Email        string     `gorm:"not null;unique_index" json:"email" form:"email"`
	Name         string     `gorm:"default:''" json:"name" form:"name"`
	Role         string     `gorm:"not null;default:'tecnico'" json:"role" form:"role"`
	PasswordHash string     `gorm:"default:''" json:"-"`
	CreatedAt    *time.Time `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == USER_ROLE_ADMIN
}

func ValidRole(role string) bool {
	return role == USER_ROLE_ADMIN || role == USER_ROLE_TECNICO
}
