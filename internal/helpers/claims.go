package helpers

import "github.com/golang-jwt/jwt/v5"

const RoleAdmin = "admin"

type AdminClaims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) IsAdmin() bool {
	return c.IsSuperuser || c.HasRole(RoleAdmin)
}

func (c *AdminClaims) HasRole(role string) bool {
	return c.Role == role
}
