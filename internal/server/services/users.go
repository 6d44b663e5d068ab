// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and profile lookups.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/cryptox"
	"github.com/dmitrijs2005/pagekeeper/internal/server/models"
	"github.com/dmitrijs2005/pagekeeper/internal/server/repositories/repomanager"
)

const (
	minUserNameLen = 2
	maxUserNameLen = 20
	aesSaltLen     = 16
	browserKeyBits = 256
	reservedName   = "admin"
	forbiddenChars = "!\"#$%&'()*+,/:;<=>?@[\\]^`{|}~"
)

// Registration is the sign-up form. Password is whatever digest the client
// derived from the user's password; it is bcrypt-hashed again here.
type Registration struct {
	UserName            string
	Email               string
	Password            string
	ConfirmPassword     string
	PublicKey           string
	EncryptedPrivateKey string
	AESSalt             string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	databaseKey []byte
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, databaseKey []byte) *UserService {
	return &UserService{db: db, repomanager: m, databaseKey: databaseKey}
}

// Register validates r and stores a new user with a fresh browser key.
// Duplicates are reported as common.ErrUsernameTaken or common.ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, r Registration) (*models.User, error) {
	if err := validateRegistration(r); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	emailHash := cryptox.HashEmail(r.Email)

	if _, err := repo.GetByUserName(ctx, r.UserName); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if _, err := repo.GetByEmailHash(ctx, emailHash); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	encryptedEmail, err := cryptox.Seal(cryptox.NormalizeEmail(r.Email), s.databaseKey)
	if err != nil {
		return nil, fmt.Errorf("error encrypting email: %w", err)
	}
	passwordHash, err := cryptox.HashPassword(r.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	browserKey, err := cryptox.GenerateKey(browserKeyBits)
	if err != nil {
		return nil, fmt.Errorf("error generating browser key: %w", err)
	}

	user := &models.User{
		UserName:            r.UserName,
		EmailHash:           emailHash,
		EncryptedEmail:      encryptedEmail,
		PasswordHash:        passwordHash,
		PublicKey:           r.PublicKey,
		EncryptedPrivateKey: r.EncryptedPrivateKey,
		AESSalt:             r.AESSalt,
		BrowserKey:          cryptox.KeyToString(browserKey),
	}

	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Authenticate looks the user up by e-mail, or by e-mail hash when given a
// 64 character hex string, and checks the password.
func (s *UserService) Authenticate(ctx context.Context, emailOrHash, password string) (*models.User, error) {
	key := strings.ToLower(strings.TrimSpace(emailOrHash))
	if !cryptox.IsEmailHash(key) {
		key = cryptox.HashEmail(key)
	}

	user, err := s.repomanager.Users(s.db).GetByEmailHash(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// Profile returns the stored user record.
func (s *UserService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DecryptEmail returns the user's address for display.
func (s *UserService) DecryptEmail(user *models.User) (string, error) {
	return cryptox.Open(user.EncryptedEmail, s.databaseKey)
}

func validateRegistration(r Registration) error {
	if err := validateUserName(r.UserName); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(r.Email))
	if err != nil || addr.Address != strings.TrimSpace(r.Email) {
		return common.NewValidationError("Invalid email address")
	}
	if r.Password == "" {
		return common.NewValidationError("Password is required")
	}
	if r.Password != r.ConfirmPassword {
		return common.NewValidationError("Passwords must match")
	}
	if r.PublicKey == "" || r.EncryptedPrivateKey == "" {
		return common.NewValidationError("Key pair is required")
	}
	if len(r.AESSalt) != aesSaltLen {
		return common.NewValidationError("AES salt must be %d characters", aesSaltLen)
	}
	return nil
}

func validateUserName(name string) error {
	if n := utf8.RuneCountInString(name); n < minUserNameLen || n > maxUserNameLen {
		return common.NewValidationError("Username must be between %d and %d characters", minUserNameLen, maxUserNameLen)
	}
	if strings.EqualFold(name, reservedName) {
		return common.NewValidationError("Invalid username")
	}
	if strings.ContainsAny(name, forbiddenChars) || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return common.NewValidationError("Username contains invalid characters")
	}
	return nil
}
