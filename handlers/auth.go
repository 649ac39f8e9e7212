package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/evoblast/evoblast-backend/game"
	"github.com/evoblast/evoblast-backend/models"
	"github.com/evoblast/evoblast-backend/responses"
	"github.com/evoblast/evoblast-backend/utils"
)

var jwtSecret []byte

// SetJWTSecret installs the key guest tokens are signed and verified with.
// Called once at startup, before the router is up.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// Guest issues a short-lived session token. There are no accounts; the
// token just binds a fresh session id and display name to the websocket
// the client opens next.
func Guest(w http.ResponseWriter, r *http.Request) {
	var req models.SetNameMessage
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		},
		ID:       uuid.New().String(),
		Username: game.SanitizeName(req.Name),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to generate token."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(map[string]string{
		"access_token": tokenString,
		"session_id":   claims.ID,
	}))
}

// ValidateToken parses and verifies a session token from the websocket URL.
func ValidateToken(tokenStr string) (*models.CustomClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	claims := &models.CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
