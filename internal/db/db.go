package db

import (
	"portfolio/internal/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the gorm-backed repository for every table the site uses.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Connect opens the database named by cfg.DBDriver/cfg.DBDSN.
func Connect(cfg *config.Config, log *zap.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	level := logger.Silent
	if cfg.IsDev() {
		level = logger.Warn
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return New(gdb, log), nil
}

func New(gdb *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: gdb, log: log}
}

// DB exposes the underlying handle for callers that need a raw query.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(&Admin{}, &Project{}, &BlogPost{}, &Contact{})
	return errors.Wrap(err, "auto migrate")
}

// EnsureAdmin creates the admin account on first boot. An existing row with
// the same email is left untouched.
func (s *Store) EnsureAdmin(email, password, name string) (*Admin, error) {
	if email == "" || password == "" {
		return nil, errors.New("admin email and password are required")
	}
	existing, err := s.GetAdminByEmail(email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash admin password")
	}
	admin := &Admin{Email: email, Password: string(hash), Name: name}
	if err := s.db.Create(admin).Error; err != nil {
		return nil, errors.Wrap(err, "create admin")
	}
	s.log.Info("created admin account", zap.String("email", email))
	return admin, nil
}

func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
