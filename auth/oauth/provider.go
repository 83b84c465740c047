package oauth

import "context"

// Scopes requested from the provider. The bot only reads courses and
// materials and posts announcements.
var Scopes = []string{
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.announcements",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",
}

type Provider interface {
	// ExchangeCode trades an authorization code for a serialized credential
	// that is stored verbatim.
	ExchangeCode(ctx context.Context, code string) (credential string, err error)
	AuthCodeURL(state string) string
}
