package domain

import "time"

// Role is derived on every authentication event; it is never stored.
type Role string

const (
	RoleRoot     Role = "root"
	RoleSeller   Role = "seller"
	RoleCustomer Role = "customer"
)

// Identity is what the identity provider vouches for.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// User is the ephemeral view of an authenticated caller.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Role           Role   `json:"role"`
	ManagedStoreID string `json:"managed_store_id,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
}

// IsRoot reports whether u is a root operator.
func (u *User) IsRoot() bool {
	return u != nil && u.Role == RoleRoot
}

// CanManage reports whether u may run seller actions on the given store.
func (u *User) CanManage(storeSlug string) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleRoot:
		return true
	case RoleSeller:
		return u.ManagedStoreID != "" && u.ManagedStoreID == storeSlug
	}
	return false
}

// Session is the application context opened on sign in and torn down on sign out.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
