package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/pkg/token"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

// ThrottleConfig bounds failed login attempts per username+address key.
type ThrottleConfig struct {
	MaxFailures int
	Window      time.Duration
}

type UseCase struct {
	users    repository.UserRepository
	tokens   *token.Service
	throttle repository.LoginThrottle
	throtCfg ThrottleConfig
	audit    usecase.AuditSink
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	tokens *token.Service,
	throttle repository.LoginThrottle,
	throtCfg ThrottleConfig,
	audit usecase.AuditSink,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if throtCfg.MaxFailures <= 0 {
		throtCfg.MaxFailures = 10
	}
	if throtCfg.Window <= 0 {
		throtCfg.Window = 15 * time.Minute
	}
	return &UseCase{
		users:    users,
		tokens:   tokens,
		throttle: throttle,
		throtCfg: throtCfg,
		audit:    audit,
		logger:   logger,
	}
}

// Register creates a new user with a bcrypt-hashed password. A taken username
// yields domain.ErrUserExists and no second row. Registration does not log
// the user in.
func (uc *UseCase) Register(ctx context.Context, userName, mail, password string) error {
	if userName == "" || password == "" {
		return domain.ErrInvalidPayload
	}

	if _, err := uc.users.GetByUserName(ctx, userName); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		UserName: userName,
		Mail:     mail,
		Password: string(hashed),
	}
	// The unique index closes the race between the lookup and the insert.
	created, err := uc.users.Create(ctx, user)
	if err != nil {
		return err
	}

	uc.record(ctx, domain.Event{
		ActorID:  created.ID,
		Action:   domain.AuditUserRegistered,
		Entity:   "user",
		EntityID: created.ID,
	})
	return nil
}

// Login verifies credentials and returns a signed assertion. Both an unknown
// username and a wrong password yield domain.ErrInvalidCredentials so the
// response does not reveal which field was wrong.
func (uc *UseCase) Login(ctx context.Context, userName, password, clientAddr string) (string, error) {
	throttleKey := userName + "@" + clientAddr

	if uc.overBudget(ctx, throttleKey) {
		return "", domain.ErrTooManyAttempts
	}

	user, err := uc.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.fail(ctx, throttleKey)
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		uc.fail(ctx, throttleKey)
		return "", domain.ErrInvalidCredentials
	}

	assertion, err := uc.tokens.Issue(user.UserName, user.Mail, user.ID)
	if err != nil {
		return "", err
	}

	uc.reset(ctx, throttleKey)
	uc.record(ctx, domain.Event{
		ActorID:  user.ID,
		Action:   domain.AuditUserLoggedIn,
		Entity:   "user",
		EntityID: user.ID,
	})
	return assertion, nil
}

// overBudget consults the throttle and fails open when it is unreachable.
func (uc *UseCase) overBudget(ctx context.Context, key string) bool {
	if uc.throttle == nil {
		return false
	}
	failures, err := uc.throttle.Failures(ctx, key)
	if err != nil {
		uc.logger.Warn("login throttle unavailable", zap.Error(err))
		return false
	}
	return failures >= int64(uc.throtCfg.MaxFailures)
}

func (uc *UseCase) fail(ctx context.Context, key string) {
	if uc.throttle == nil {
		return
	}
	if err := uc.throttle.RecordFailure(ctx, key, uc.throtCfg.Window); err != nil {
		uc.logger.Warn("failed to record login failure", zap.Error(err))
	}
}

func (uc *UseCase) reset(ctx context.Context, key string) {
	if uc.throttle == nil {
		return
	}
	if err := uc.throttle.Reset(ctx, key); err != nil {
		uc.logger.Warn("failed to reset login throttle", zap.Error(err))
	}
}

func (uc *UseCase) record(ctx context.Context, event domain.Event) {
	if uc.audit == nil {
		return
	}
	if err := uc.audit.Record(ctx, event); err != nil {
		uc.logger.Warn("failed to record audit event", zap.String("action", event.Action), zap.Error(err))
	}
}
