package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRegistrationDisabled = errors.New("new registration is currently disabled")
	ErrPasswordRequired     = errors.New("password is required")
)

type AuthService struct {
	db         *gorm.DB
	cfg        *config.Config
	settings   *SettingsService
	googleJWKS *GoogleJWKSClient
}

func NewAuthService(db *gorm.DB, cfg *config.Config, settings *SettingsService) *AuthService {
	return &AuthService{
		db:         db,
		cfg:        cfg,
		settings:   settings,
		googleJWKS: NewGoogleJWKSClient(),
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !s.settings.Bool(ctx, models.SettingAllowNewRegistration) {
		return nil, ErrRegistrationDisabled
	}
	if len(req.Email) == 0 || len(req.Password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.Split(req.Email, "@")[0]
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Password:     string(hash),
		DisplayName:  displayName,
		AuthProvider: "email",
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Password == "" {
		// OAuth-only account; no password to compare.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

// GoogleSignIn verifies a Google ID token and signs the user in, lazily
// creating the account on first sign-in. Profile defaults come from the
// token claims; a missing email falls back to a relay-style address so a
// row can always be created.
func (s *AuthService) GoogleSignIn(ctx context.Context, req *dto.GoogleSignInRequest) (*dto.AuthResponse, error) {
	if req.IDToken == "" {
		return nil, errors.New("id token is required")
	}

	claims, err := s.googleJWKS.VerifyToken(req.IDToken, s.cfg.GoogleClientID)
	if err != nil {
		slog.Error("google token verification failed", "error", err)
		return nil, fmt.Errorf("failed to verify Google ID token: %w", err)
	}

	user, err := s.findOrCreateGoogleUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	return s.generateTokenPair(user)
}

// findOrCreateGoogleUser resolves the account for verified claims: match
// by Google subject or email, link the subject to an existing email
// account, or lazily create on first sign-in. Only a definitive
// record-not-found triggers creation; transient lookup errors surface.
func (s *AuthService) findOrCreateGoogleUser(ctx context.Context, claims *GoogleJWTClaims) (*models.User, error) {
	googleUserID := claims.Sub
	email := claims.Email
	if email == "" {
		email = googleUserID + "@users.noreply.google.com"
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("google_user_id = ? OR email = ?", googleUserID, email).First(&user).Error

	switch {
	case err == nil:
		if user.GoogleUserID == nil {
			if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
				"google_user_id": googleUserID,
				"auth_provider":  "google",
			}).Error; err != nil {
				return nil, fmt.Errorf("failed to link Google account: %w", err)
			}
			user.GoogleUserID = &googleUserID
			user.AuthProvider = "google"
		}
		return &user, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		displayName := claims.Name
		if displayName == "" {
			displayName = strings.Split(email, "@")[0]
		}

		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			Password:     "",
			DisplayName:  displayName,
			AvatarURL:    claims.Picture,
			AuthProvider: "google",
			GoogleUserID: &googleUserID,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create Google user: %w", err)
		}
		return &user, nil

	default:
		return nil, err
	}
}

func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.WithContext(ctx).Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.WithContext(ctx).Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// DeleteAccount removes the account and its private rows; diary entries
// and comments are anonymized (user_id -> NULL) so threads stay intact.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if user.AuthProvider != "google" {
		if password == "" {
			return ErrPasswordRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{})
		tx.Where("user_id = ?", userID).Delete(&models.Like{})
		tx.Where("reporter_id = ?", userID).Delete(&models.Report{})
		tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Delete(&models.UserBlock{})
		tx.Model(&models.DiaryEntry{}).Where("user_id = ?", userID).Update("user_id", nil)
		tx.Model(&models.Comment{}).Where("user_id = ?", userID).Update("user_id", nil)
		return tx.Delete(&user).Error
	})
}

// Me returns the current user row.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         UserToResponse(user),
	}, nil
}

// UserToResponse shapes a user row for API responses.
func UserToResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		IsAdmin:     user.IsAdmin(),
		IsBlocked:   user.IsBlocked,
		CreatedAt:   user.CreatedAt,
	}
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	tokenHash := hashToken(rawToken)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
