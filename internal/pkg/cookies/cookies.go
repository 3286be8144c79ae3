package cookies

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const CookieName = "lead-chat-visitor"

// MaxAge is the lifetime of the visitor cookie in seconds.
const MaxAge = 3600

// Jar issues and reads the signed visitor id cookie.
type Jar struct {
	signer *Signer
	secure bool
}

func NewJar(secretKey string, secure bool) (*Jar, error) {
	signer, err := NewSigner([]byte(secretKey))
	if err != nil {
		return nil, err
	}
	return &Jar{signer: signer, secure: secure}, nil
}

// VisitorID returns uuid.Nil when the request carries no valid cookie.
func (instance *Jar) VisitorID(request *http.Request) uuid.UUID {
	cookie, err := request.Cookie(CookieName)
	if err != nil {
		log.Debug().Err(err).Msg("visitor id cookie can't be retrieved")
		return uuid.Nil
	}

	visitorID, err := instance.signer.Verify(cookie.Name, cookie.Value)
	if err != nil {
		log.Error().Err(err).Msg("visitor id cookie value can't be verified")
		return uuid.Nil
	}

	id, err := uuid.Parse(visitorID)
	if err != nil {
		log.Error().Err(err).Msg("visitor id cookie contains invalid id")
		return uuid.Nil
	}
	return id
}

func (instance *Jar) Cookie(id uuid.UUID) *http.Cookie {
	value, err := instance.signer.Sign(CookieName, id.String())
	if err != nil {
		log.Error().Err(err).Msg("cookies.Signer.Sign() failed")
		return nil
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		Secure:   instance.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
