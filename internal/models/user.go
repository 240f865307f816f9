package models

// Role values recognized by the access checks. Staff roles may read and
// manage every return request; customers only their own.
const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User represents an account holder. Guest shoppers have no User row at all;
// their orders carry contact details in the shipping fields instead.
type User struct {
	BaseModel
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `gorm:"uniqueIndex" json:"email"`
	Phone        string  `json:"phone"`
	DisplayName  string  `json:"display_name"`
	PasswordHash string  `json:"-"`
	Role         string  `gorm:"default:customer" json:"role"`
	Orders       []Order `json:"orders,omitempty"`
}

// IsStaff reports whether the user holds an administrative role.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// FullName returns the user's presentable name.
func (u *User) FullName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}
