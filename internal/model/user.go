package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account 身份提供方保存的账号信息，进度数据不在这里
// swagger:model Account
type Account struct {
	BaseModel
	UserID      string `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string `gorm:"size:100;not null" json:"-"`
	FirstName   string `gorm:"size:100" json:"firstName"`
	LastName    string `gorm:"size:100" json:"lastName"`
	BirthDate   string `gorm:"size:10" json:"birthDate,omitempty"`
	ParentEmail string `gorm:"size:255" json:"parentEmail,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.UserID == "" {
		a.UserID = uuid.New().String()
	}
	return nil
}

// Identity 是一次令牌校验的结果，角色在认证时一次性解析
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// CanAdminister reports whether the identity may mutate the content catalog.
func (i *Identity) CanAdminister() bool {
	return i != nil && i.Role == RoleAdmin
}

// UserView is the account as returned to clients.
type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BirthDate   string `json:"birthDate,omitempty"`
	ParentEmail string `json:"parentEmail,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

func NewUserView(a *Account, role Role) UserView {
	return UserView{
		ID:          a.UserID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		BirthDate:   a.BirthDate,
		ParentEmail: a.ParentEmail,
		IsAdmin:     role == RoleAdmin,
	}
}
