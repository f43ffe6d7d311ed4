package model

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// User 對core來說唯讀 只用來確認caller身分
type User struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	ContactNumber string `json:"contact_number"`
	Role          Role   `json:"role"`
}
