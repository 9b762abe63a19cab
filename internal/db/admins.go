package db

import (
	"strings"

	"github.com/google/uuid"
)

func (s *Store) GetAdmin(id uuid.UUID) (*Admin, error) {
	var a Admin
	if err := s.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAdminByEmail matches case-insensitively.
func (s *Store) GetAdminByEmail(email string) (*Admin, error) {
	var a Admin
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAdminPassword stores an already hashed password.
func (s *Store) UpdateAdminPassword(a *Admin, hash string) error {
	if err := s.db.Model(a).Update("password", hash).Error; err != nil {
		return err
	}
	a.Password = hash
	return nil
}
