package services

import (
	"strings"

	"portfolio/internal/db"
	"portfolio/internal/mail"
	"portfolio/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resourceContact = "Contact message"
	defaultSubject  = "Contact Form Submission"
)

// Enqueuer hands a notification to the background mailer.
type Enqueuer interface {
	Enqueue(msg mail.ContactMessage) bool
}

type ContactService struct {
	store *db.Store
	mail  Enqueuer
	log   *zap.Logger
}

func NewContactService(store *db.Store, queue Enqueuer, log *zap.Logger) *ContactService {
	return &ContactService{store: store, mail: queue, log: log}
}

// Submit stores the message first; the email goes out asynchronously and its
// failure never reaches the visitor.
func (s *ContactService) Submit(req validation.CreateContact) (*db.Contact, error) {
	c := &db.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if c.Subject == "" {
		c.Subject = defaultSubject
	}
	if err := persist(s.store.CreateContact(c), resourceContact); err != nil {
		return nil, err
	}
	if s.mail != nil && !s.mail.Enqueue(mail.ContactMessage{
		Name:    c.Name,
		Email:   c.Email,
		Subject: c.Subject,
		Message: c.Message,
	}) {
		s.log.Warn("mail queue closed, contact notification skipped", zap.String("contactId", c.ID.String()))
	}
	return c, nil
}

func (s *ContactService) List(unreadOnly bool) ([]db.Contact, error) {
	return s.store.ListContacts(unreadOnly)
}

// Get returns the message and marks it read.
func (s *ContactService) Get(id uuid.UUID) (*db.Contact, error) {
	c, err := s.store.GetContact(id)
	if err != nil {
		return nil, lookup(err, resourceContact)
	}
	if !c.Read {
		if err := s.store.SetContactRead(c, true); err != nil {
			return nil, err
		}
		c.Read = true
	}
	return c, nil
}

func (s *ContactService) SetRead(id uuid.UUID, read bool) (*db.Contact, error) {
	c, err := s.store.GetContact(id)
	if err != nil {
		return nil, lookup(err, resourceContact)
	}
	if err := s.store.SetContactRead(c, read); err != nil {
		return nil, err
	}
	c.Read = read
	return c, nil
}

func (s *ContactService) Delete(id uuid.UUID) error {
	return lookup(s.store.DeleteContact(id), resourceContact)
}
