package services

import (
	"time"

	"portfolio/internal/db"
	"portfolio/internal/types"
	"portfolio/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const invalidCredentials = "Invalid email or password"

type AuthService struct {
	store   *db.Store
	signKey []byte
	ttl     time.Duration
	log     *zap.Logger
}

func NewAuthService(store *db.Store, signKey []byte, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{store: store, signKey: signKey, ttl: ttl, log: log}
}

// Session is what a successful login returns to the client.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     *db.Admin `json:"admin"`
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

func (s *AuthService) Login(email, password string) (*Session, error) {
	admin, err := s.store.GetAdminByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.Unauthorized(invalidCredentials)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		s.log.Warn("failed login", zap.String("email", email))
		return nil, types.Unauthorized(invalidCredentials)
	}
	token, err := utils.GenerateToken(s.signKey, admin.ID.String(), admin.Email, s.ttl)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &Session{Token: token, ExpiresAt: time.Now().Add(s.ttl), Admin: admin}, nil
}

// Admin resolves the adminId claim of a verified token.
func (s *AuthService) Admin(adminID string) (*db.Admin, error) {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return nil, types.Unauthorized("Invalid authentication token")
	}
	admin, err := s.store.GetAdmin(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.Unauthorized("Admin not found")
		}
		return nil, err
	}
	return admin, nil
}

func (s *AuthService) ChangePassword(admin *db.Admin, current, next string) error {
	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(current)) != nil {
		return types.Unauthorized("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	return errors.Wrap(s.store.UpdateAdminPassword(admin, string(hash)), "update password")
}
