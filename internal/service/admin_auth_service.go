package service

import (
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/catalog_sync/internal/config"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// AdminTokenTTL is the lifetime of an admin JWT.
const AdminTokenTTL = 24 * time.Hour

// AdminAuthService checks the configured admin account and issues tokens.
type AdminAuthService struct {
	cfg config.AdminConfig
}

func NewAdminAuthService(cfg config.AdminConfig) *AdminAuthService {
	return &AdminAuthService{cfg: cfg}
}

func (s *AdminAuthService) Login(email, password string) (string, error) {
	log.Debug().Str("email", email).Msg("Login attempt")

	if s.cfg.Email == "" || s.cfg.PasswordHash == "" || s.cfg.JWTSecret == "" {
		log.Warn().Msg("Admin login is not configured")
		return "", utils.ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(email), []byte(s.cfg.Email)) != 1 {
		log.Warn().Str("email", email).Msg("Unknown admin email")
		return "", utils.ErrInvalidCredentials
	}

	// Verify password using bcrypt
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Password verification failed")
		return "", utils.ErrInvalidCredentials
	}

	log.Info().Str("email", email).Msg("Login successful")

	return utils.GenerateJWT(email, s.cfg.JWTSecret, AdminTokenTTL)
}
