package services

import (
	"fmt"
	"time"

	"reservas/errors"
	"reservas/types"

	"github.com/dgrijalva/jwt-go"
)

// ParseToken verifies an HS256 token signed with secret and reads the
// userinfo claim into a Session.
func ParseToken(tokenString, secret string) (types.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return types.Session{}, errors.NewAppError(errors.ErrCodeInvalidToken, "Token no válido", err)
	}

	claimsMap, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return types.Session{}, errors.NewAppError(errors.ErrCodeInvalidToken, "No se pudo leer el token", nil)
	}

	userInfo, ok := claimsMap["userinfo"].(map[string]interface{})
	if !ok {
		return types.Session{}, errors.NewAppError(errors.ErrCodeInvalidToken, "El token no contiene datos de usuario", nil)
	}

	userID, okID := userInfo["userid"].(float64)
	if !okID || userID <= 0 {
		return types.Session{}, errors.NewAppError(errors.ErrCodeInvalidToken, "El token no contiene el ID de usuario", nil)
	}

	role, okRole := userInfo["role"].(float64)
	if !okRole {
		return types.Session{}, errors.NewAppError(errors.ErrCodeInvalidToken, "El token no contiene el rol", nil)
	}

	return types.Session{UserID: uint(userID), Role: int(role), Token: tokenString}, nil
}

// GenerateToken signs a token in the shape ParseToken reads
func GenerateToken(secret string, userID uint, role int, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userinfo": map[string]interface{}{
			"userid": userID,
			"role":   role,
		},
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
