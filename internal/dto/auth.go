package dto

// LoginRequest is the admin credential check.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AutologinRequest exchanges a one-time worker token for an identity.
type AutologinRequest struct {
	Token string `json:"token" binding:"required"`
}

// AutologinResponse is the resolved worker identity.
type AutologinResponse struct {
	OrgID      string `json:"orgId"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	CanPunch   bool   `json:"canPunch"`
}
