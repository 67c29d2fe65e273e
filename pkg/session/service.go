package session

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/checkin-tools/checkin-manager/pkg/model"
)

const (
	keyToken      = "token"
	keyExpiryTime = "expiryTime"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository Repository) *service {
	return &service{
		logger:     logger,
		repository: repository,
		now:        time.Now,
	}
}

type service struct {
	logger     *slog.Logger
	repository Repository
	// now is replaced in tests
	now func() time.Time
}

// SaveSession persists the access token and its expiry. The expiry is stored
// as string-encoded epoch milliseconds.
func (s service) SaveSession(ctx context.Context, token string, expiry time.Time) error {
	if err := s.repository.Save(ctx, keyToken, token); err != nil {
		return err
	}
	return s.repository.Save(ctx, keyExpiryTime, strconv.FormatInt(expiry.UnixMilli(), 10))
}

// Session returns the persisted session. An absent or unreadable value
// resolves to a zero field, never to an error, so a broken session simply
// fails validation.
func (s service) Session(ctx context.Context) (model.Session, error) {
	var session model.Session

	token, ok, err := s.repository.Get(ctx, keyToken)
	if err != nil {
		return session, err
	}
	if ok {
		session.Token = token
	}

	expiry, ok, err := s.repository.Get(ctx, keyExpiryTime)
	if err != nil {
		return session, err
	}
	if ok {
		millis, err := strconv.ParseInt(expiry, 10, 64)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to parse stored expiry time", "error", err, "value", expiry)
			return session, nil
		}
		session.ExpiryTime = time.UnixMilli(millis)
	}

	return session, nil
}

// IsValid reports whether a token is present and not yet expired.
func (s service) IsValid(ctx context.Context) bool {
	session, err := s.Session(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load session", "error", err)
		return false
	}
	return session.IsValid(s.now())
}

// SignOut removes the persisted token and expiry.
func (s service) SignOut(ctx context.Context) error {
	if err := s.repository.Remove(ctx, keyToken); err != nil {
		return err
	}
	return s.repository.Remove(ctx, keyExpiryTime)
}

type Repository interface {
	Save(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
