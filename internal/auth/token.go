package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SettingsTokenDuration bounds how long a passed gate stays usable. Long
// enough to edit the library, short enough that a tablet left unlocked does
// not hold the door open all day.
const SettingsTokenDuration = 15 * time.Minute

const settingsScope = "settings"

type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateSettingsToken mints the token a verified gate hands to the
// management surface.
func GenerateSettingsToken(secret string) (string, error) {
	claims := &Claims{
		Scope: settingsScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SettingsTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateSettingsToken(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Scope != settingsScope {
		return nil, fmt.Errorf("wrong token scope %q", claims.Scope)
	}
	return claims, nil
}
