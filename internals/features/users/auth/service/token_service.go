package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"library_backend/internals/configs"
	userModel "library_backend/internals/features/users/user/model"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CreateAccessToken signs a short-lived HS256 token carrying the verified
// identity triple (sub, role, library_id).
func CreateAccessToken(u *userModel.UserModel) (string, error) {
	return signToken(u, "access", configs.JWTSecret, AccessTokenTTL)
}

func CreateRefreshToken(u *userModel.UserModel) (string, error) {
	return signToken(u, "refresh", configs.JWTRefreshSecret, RefreshTokenTTL)
}

func signToken(u *userModel.UserModel, typ, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(u.ID), 10),
		"role": u.Role,
		"typ":  typ,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if u.LibraryID != nil {
		claims["library_id"] = *u.LibraryID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
