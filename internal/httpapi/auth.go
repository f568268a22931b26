package httpapi

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ponselpos/backend/internal/domain"
)

// AuthManager authenticates the counter terminal. A deployment registers
// one device id and a bcrypt hash of its key; login exchanges the pair
// for a bearer token. With no key hash configured login is disabled
// outright, there is no development fallback credential.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	deviceID string
	keyHash  string
}

type deviceClaims struct {
	jwtlib.RegisteredClaims
}

func NewAuthManager(secret string, tokenTTL time.Duration, deviceID, keyHash string) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		deviceID: strings.TrimSpace(deviceID),
		keyHash:  strings.TrimSpace(keyHash),
	}
}

func (a *AuthManager) Login(req domain.LoginRequest) (domain.LoginResponse, error) {
	if !isKeyHash(a.keyHash) {
		return domain.LoginResponse{}, errors.New("device login is not configured")
	}
	if strings.TrimSpace(req.DeviceID) != a.deviceID || a.deviceID == "" {
		return domain.LoginResponse{}, errors.New("invalid device credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(a.keyHash), []byte(req.DeviceKey)) != nil {
		return domain.LoginResponse{}, errors.New("invalid device credentials")
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(a.deviceID, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (string, error) {
	claims := &deviceClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("invalid token subject")
	}
	return sub, nil
}

func (a *AuthManager) sign(deviceID string, expiresAt time.Time) (string, error) {
	claims := deviceClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "ponselpos",
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// HashDeviceKey is used by the provisioning CLI path to mint the hash an
// operator puts in the environment.
func HashDeviceKey(key string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isKeyHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
