package entities

type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleCarrier  Role = "carrier"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleCarrier:
		return true
	default:
		return false
	}
}

type User struct {
	ID     string
	Role   Role
	Banned bool
}

// Contact - адрес доставки уведомлений (email или телефон).
type Contact struct {
	UserID      string
	Name        string
	Destination string
}
