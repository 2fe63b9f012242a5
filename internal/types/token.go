package types

import "github.com/google/uuid"

// TokenClaims is the validated identity carried through the request
// context: who the subject is and whether they hold the admin flag.
type TokenClaims struct {
	UserID  uuid.UUID
	IsAdmin bool
}
