package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (s *Store) CreateContact(c *Contact) error {
	return s.db.Create(c).Error
}

// ListContacts returns messages newest first, optionally only unread ones.
func (s *Store) ListContacts(unreadOnly bool) ([]Contact, error) {
	q := s.db.Model(&Contact{})
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	contacts := []Contact{}
	err := q.Order("created_at DESC").Find(&contacts).Error
	return contacts, errors.Wrap(err, "list contacts")
}

func (s *Store) RecentContacts(n int) ([]Contact, error) {
	contacts := []Contact{}
	err := s.db.Order("created_at DESC").Limit(n).Find(&contacts).Error
	return contacts, errors.Wrap(err, "recent contacts")
}

func (s *Store) GetContact(id uuid.UUID) (*Contact, error) {
	var c Contact
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetContactRead(c *Contact, read bool) error {
	return s.db.Model(c).Update("is_read", read).Error
}

func (s *Store) DeleteContact(id uuid.UUID) error {
	res := s.db.Delete(&Contact{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
