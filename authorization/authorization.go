package authorization

import (
	"booking_service/domain"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cristalhq/jwt/v4"
)

const TokenTTL = 60 * time.Minute

var (
	ErrInvalidTokenFormat = errors.New("invalid token format")
	ErrTokenExpired       = errors.New("token expired")
)

type TokenManager struct {
	signer   jwt.Signer
	verifier jwt.Verifier
	now      func() time.Time
}

func NewTokenManager(secretKey string) (*TokenManager, error) {
	key := []byte(secretKey)
	signer, err := jwt.NewSignerHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key)
	if err != nil {
		return nil, err
	}
	return &TokenManager{
		signer:   signer,
		verifier: verifier,
		now:      time.Now,
	}, nil
}

func (manager *TokenManager) GenerateJWT(user *domain.User) (string, error) {
	builder := jwt.NewBuilder(manager.signer)

	claims := &domain.Claims{
		UserID:    user.ID.Hex(),
		Email:     user.Email,
		Role:      user.UserType,
		ExpiresAt: manager.now().Add(TokenTTL).UTC(),
	}

	token, err := builder.Build(claims)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

func (manager *TokenManager) GetClaims(tokenString string) (*domain.Claims, error) {
	var claims domain.Claims
	if err := jwt.ParseClaims([]byte(tokenString), manager.verifier, &claims); err != nil {
		return nil, err
	}
	if !claims.ExpiresAt.IsZero() && manager.now().After(claims.ExpiresAt) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

// GetToken returns the bearer token of a request, or "" when there is none.
func GetToken(r *http.Request) (string, error) {
	bearer := r.Header.Get("Authorization")
	if bearer == "" {
		return "", nil
	}

	bearerToken := strings.Split(bearer, "Bearer ")
	if len(bearerToken) != 2 || bearerToken[1] == "" {
		return "", ErrInvalidTokenFormat
	}
	return bearerToken[1], nil
}

// Identity resolves the caller of a request. Requests without a token are
// anonymous; malformed, forged or expired tokens are an error.
func (manager *TokenManager) Identity(r *http.Request) (domain.Identity, error) {
	tokenString, err := GetToken(r)
	if err != nil {
		return domain.Identity{}, err
	}
	if tokenString == "" {
		return domain.AnonymousIdentity(), nil
	}

	claims, err := manager.GetClaims(tokenString)
	if err != nil {
		return domain.Identity{}, err
	}

	role := claims.Role
	if role == "" {
		role = domain.Unauthenticated
	}
	return domain.Identity{
		UserID:   claims.UserID,
		Email:    claims.Email,
		UserType: role,
	}, nil
}
