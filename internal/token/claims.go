package token

// UserClaims is the identity a bearer token asserts.
type UserClaims struct {
	UID string `json:"sub"`
}
