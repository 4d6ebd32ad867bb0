package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/persistence"
)

// AccountService owns user records and credential checks.
//
// Credentials are sha256 digests computed client-side and stored verbatim;
// the service only ever compares digests, never plaintext.
type AccountService struct {
	store  persistence.Store
	logger *slog.Logger
}

// NewAccountService wires dependencies for the account service.
func NewAccountService(store persistence.Store, logger *slog.Logger) *AccountService {
	return &AccountService{store: store, logger: defaultLogger(logger)}
}

func (s *AccountService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AccountService", operation, attrs...)
}

// Create registers a new account. The username is the primary key; an
// existing record is never overwritten.
func (s *AccountService) Create(ctx context.Context, user models.User) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("account service not configured")
	}

	logger := s.log(ctx, "Create", "username", user.Username)

	vErr := &ValidationError{}
	if strings.TrimSpace(user.Username) == "" {
		vErr.add("username", "username is required")
	}
	if vErr.HasErrors() {
		return vErr
	}

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		if _, err := tx.GetUser(user.Username); err == nil {
			return ErrUserAlreadyExists
		}
		record := user.Clone()
		if record.Groups == nil {
			record.Groups = make(map[string]bool)
		}
		if record.Events == nil {
			record.Events = make(map[string]models.Event)
		}
		return tx.PutUser(record)
	})
	if err != nil {
		logger.ErrorContext(ctx, "account creation failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "account created")
	return nil
}

// Authenticate compares the supplied digest against the stored one and, on
// success, returns the complete stored record including group and event maps.
func (s *AccountService) Authenticate(ctx context.Context, username, passwordHash string) (models.User, error) {
	if s == nil || s.store == nil {
		return models.User{}, fmt.Errorf("account service not configured")
	}

	logger := s.log(ctx, "Authenticate", "username", username)

	var user models.User
	err := s.store.View(ctx, func(tx persistence.Tx) error {
		stored, err := tx.GetUser(username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}
		if subtle.ConstantTimeCompare([]byte(stored.PasswordHash), []byte(passwordHash)) != 1 {
			return ErrInvalidCredentials
		}
		user = stored
		return nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
		return models.User{}, err
	}

	logger.InfoContext(ctx, "authentication succeeded")
	return user, nil
}

// Get returns the profile for username with the password digest redacted.
func (s *AccountService) Get(ctx context.Context, username string) (models.User, error) {
	if s == nil || s.store == nil {
		return models.User{}, fmt.Errorf("account service not configured")
	}

	var user models.User
	err := s.store.View(ctx, func(tx persistence.Tx) error {
		stored, err := tx.GetUser(username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}
		user = stored.Redacted()
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update merges the incoming record into the stored one. Empty incoming
// fields keep their stored values, so omitting a field never clears it;
// intentional clearing is not supported through this operation.
func (s *AccountService) Update(ctx context.Context, user models.User) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("account service not configured")
	}

	logger := s.log(ctx, "Update", "username", user.Username)

	err := s.store.Update(ctx, func(tx persistence.Tx) error {
		stored, err := tx.GetUser(user.Username)
		if err != nil {
			if isMissing(err) {
				return ErrUserNotFound
			}
			return err
		}

		merged := stored.Clone()
		if user.DisplayName != "" {
			merged.DisplayName = user.DisplayName
		}
		if user.PasswordHash != "" {
			merged.PasswordHash = user.PasswordHash
		}
		if user.School != "" {
			merged.School = user.School
		}
		if len(user.Groups) > 0 {
			merged.Groups = user.Clone().Groups
		}
		if len(user.Events) > 0 {
			merged.Events = user.Clone().Events
		}
		return tx.PutUser(merged)
	})
	if err != nil {
		logger.ErrorContext(ctx, "account update failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "account updated")
	return nil
}
