package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trailfeed/trailfeed-backend/internal/database"
	"github.com/trailfeed/trailfeed-backend/internal/models"
	"github.com/trailfeed/trailfeed-backend/internal/store"
	"github.com/trailfeed/trailfeed-backend/pkg/utils"
)

const (
	// TokenDuration is how long an issued bearer token stays valid.
	TokenDuration = 7 * 24 * time.Hour
	// ResetTokenDuration is how long a password reset token stays valid.
	ResetTokenDuration = time.Hour
	// ResetTokenKeyPrefix is the Redis key prefix for reset tokens.
	ResetTokenKeyPrefix = "pwreset:"

	minPasswordLength = 6
)

// UserService handles registration, login, profiles, and bearer tokens.
type UserService struct {
	users     store.UserStore
	jwtSecret string
}

func NewUserService(users store.UserStore, jwtSecret string) *UserService {
	return &UserService{users: users, jwtSecret: jwtSecret}
}

// Register creates an account and its profile record. bio and location start
// empty; the profile picture defaults to a generated avatar URL.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, validationErrorf("name, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationErrorf("please provide a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, validationErrorf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		CreatedAt:      now,
		UpdatedAt:      now,
		Name:           name,
		Email:          email,
		Password:       hashed,
		ProfilePicture: "https://ui-avatars.com/api/?name=" + url.QueryEscape(name),
		Bio:            "",
		Location:       "",
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A racing registration can slip past the pre-check and hit the
		// store's unique email constraint instead.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login validates credentials. Every failure maps to ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns a user's profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile merges the provided fields into the stored profile.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, validationErrorf("name cannot be empty")
	}

	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	invalidateAuthor(id)
	return user, nil
}

// GenerateToken issues a signed bearer token for a user.
func (s *UserService) GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a bearer token and returns the user ID it carries.
func (s *UserService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}
	return userID, nil
}

// CreateResetToken generates a password reset token for the account with the
// given email and stores it in Redis with a 1 hour TTL. Delivery of the token
// (reset email) happens out of band.
func (s *UserService) CreateResetToken(ctx context.Context, email string) (string, error) {
	if database.RedisClient == nil {
		return "", fmt.Errorf("password reset unavailable: redis not connected")
	}

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	err = database.RedisClient.Set(ctx, ResetTokenKeyPrefix+token, user.ID, ResetTokenDuration).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if database.RedisClient == nil {
		return fmt.Errorf("password reset unavailable: redis not connected")
	}
	if len(newPassword) < minPasswordLength {
		return validationErrorf("password must be at least %d characters", minPasswordLength)
	}

	key := ResetTokenKeyPrefix + token
	userID, err := database.RedisClient.Get(ctx, key).Result()
	if err != nil || userID == "" {
		return ErrInvalidResetToken
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	// Single use
	database.RedisClient.Del(ctx, key)
	return nil
}
