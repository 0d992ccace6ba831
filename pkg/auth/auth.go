package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Secret   string        `yaml:"secret" envconfig:"JWT_SECRET" default:"dev-secret-key-change-in-production"`
	TokenTTL time.Duration `yaml:"tokenTTL" envconfig:"JWT_TTL" default:"24h"`
}

type Claims struct {
	UserID  int64 `json:"uid"`
	IsAdmin bool  `json:"adm"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		key: []byte(cfg.Secret),
		ttl: cfg.TokenTTL,
		now: time.Now,
	}
}

func (i *Issuer) Issue(userID int64, isAdmin bool) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return token, exp, nil
}

func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type ctxKey int

const actorKey ctxKey = iota + 1

type Actor struct {
	UserID  int64
	IsAdmin bool
}

func SetAuthContext(ctx context.Context, userID int64, isAdmin bool) context.Context {
	return context.WithValue(ctx, actorKey, Actor{UserID: userID, IsAdmin: isAdmin})
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

func IsAdmin(ctx context.Context) bool {
	a, ok := FromContext(ctx)
	return ok && a.IsAdmin
}
