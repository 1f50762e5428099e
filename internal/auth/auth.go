// Package auth keeps the local account registry and the signed-in user.
// Accounts and the current session live in the same blob store as boards.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/dori/kanbo/internal/model"
	"github.com/dori/kanbo/internal/storage"
)

const (
	accountKeyPrefix = "kanban_users::"
	sessionKey       = "kanban_session"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned when email or password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service registers accounts and tracks who is logged in
type Service struct {
	store storage.BlobStore
	log   log.FieldLogger
	cost  int
	now   func() time.Time
}

// NewService creates an account service over store
func NewService(store storage.BlobStore, logger log.FieldLogger) *Service {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Service{
		store: store,
		log:   logger,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

func accountKey(email string) string {
	return accountKeyPrefix + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and logs it in
func (s *Service) Register(ctx context.Context, name, email, password string) (model.Identity, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return model.Anonymous, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	case !strings.Contains(email, "@"):
		return model.Anonymous, &model.ValidationError{Field: "email", Reason: "must be an email address"}
	case strings.TrimSpace(password) == "":
		return model.Anonymous, &model.ValidationError{Field: "password", Reason: "must not be empty"}
	}

	if _, err := s.account(ctx, email); err == nil {
		return model.Anonymous, ErrEmailTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Anonymous, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.Anonymous, fmt.Errorf("failed to hash password: %w", err)
	}
	acct := model.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	data, err := json.Marshal(acct)
	if err != nil {
		return model.Anonymous, fmt.Errorf("failed to encode account: %w", err)
	}
	if err := s.store.Put(ctx, accountKey(email), data); err != nil {
		return model.Anonymous, &storage.PersistenceError{Op: "save", Key: accountKey(email), Err: err}
	}
	s.log.WithField("user_id", acct.ID).Info("account registered")

	id := acct.Identity()
	if err := s.setCurrent(ctx, id); err != nil {
		return model.Anonymous, err
	}
	return id, nil
}

// Login checks the credentials and makes the account current
func (s *Service) Login(ctx context.Context, email, password string) (model.Identity, error) {
	acct, err := s.account(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.Anonymous, ErrInvalidCredentials
	}
	if err != nil {
		return model.Anonymous, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return model.Anonymous, ErrInvalidCredentials
	}

	id := acct.Identity()
	if err := s.setCurrent(ctx, id); err != nil {
		return model.Anonymous, err
	}
	s.log.WithField("user_id", id.UserID).Info("logged in")
	return id, nil
}

// Logout forgets the current user
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		return &storage.PersistenceError{Op: "clear", Key: sessionKey, Err: err}
	}
	return nil
}

// Current returns the logged-in identity, or Anonymous. A session pointing
// at an account that no longer exists counts as logged out.
func (s *Service) Current(ctx context.Context) model.Identity {
	data, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrBlobNotFound) {
			s.log.WithError(err).Warn("failed to read session")
		}
		return model.Anonymous
	}
	var id model.Identity
	if err := json.Unmarshal(data, &id); err != nil || !id.IsAuthenticated() {
		s.log.WithError(err).Warn("discarding unreadable session")
		return model.Anonymous
	}
	acct, err := s.account(ctx, id.Email)
	if err != nil || acct.ID != id.UserID {
		return model.Anonymous
	}
	return acct.Identity()
}

func (s *Service) account(ctx context.Context, email string) (model.Account, error) {
	key := accountKey(email)
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return model.Account{}, model.ErrNotFound
	}
	if err != nil {
		return model.Account{}, &storage.PersistenceError{Op: "load", Key: key, Err: err}
	}
	var acct model.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return model.Account{}, &storage.PersistenceError{Op: "decode", Key: key, Err: err}
	}
	return acct, nil
}

func (s *Service) setCurrent(ctx context.Context, id model.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Put(ctx, sessionKey, data); err != nil {
		return &storage.PersistenceError{Op: "save", Key: sessionKey, Err: err}
	}
	return nil
}
