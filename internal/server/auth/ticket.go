// Package auth issues and checks invite tickets: short-lived HS256 tokens
// that tie an invitation in progress to one inviter, invitee and page.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const ticketIssuer = "pagekeeper/invite"

// Ticket is what the server remembers between the candidate check and the
// submission of the wrapped key.
type Ticket struct {
	InviterID int64
	Invitee   string
	PageID    int64
}

// Claims embeds the registered claims. Subject holds the invitee username.
type Claims struct {
	jwt.RegisteredClaims
	InviterID int64 `json:"inv"`
	PageID    int64 `json:"pid"`
}

func IssueTicket(t Ticket, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ticketIssuer,
			Subject:   t.Invitee,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		InviterID: t.InviterID,
		PageID:    t.PageID,
	})

	return token.SignedString(secretKey)
}

// ParseTicket verifies signature, issuer and expiry. Expired tickets yield
// common.ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func ParseTicket(tokenString string, secretKey []byte) (*Ticket, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(ticketIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return &Ticket{InviterID: claims.InviterID, Invitee: claims.Subject, PageID: claims.PageID}, nil
}
