package video

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTIssuer mints room-grant access tokens the way hosted video
// providers do: an HS256 JWT whose claims carry the participant
// identity and a grants map naming the room.
type JWTIssuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewJWTIssuer(signingKey, issuer string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

func (i *JWTIssuer) IssueCredential(roomName, identity string) (string, error) {
	if len(i.signingKey) == 0 {
		return "", fmt.Errorf("video signing key not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.NewString(),
		"iss": i.issuer,
		"sub": identity,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
		"grants": map[string]interface{}{
			"identity": identity,
			"video": map[string]interface{}{
				"room": roomName,
			},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return signed, nil
}
