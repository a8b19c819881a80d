package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlibekovAA/membership/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/membership/internal/common/crypto"
	"github.com/AlibekovAA/membership/internal/common/logger"
	"github.com/AlibekovAA/membership/internal/membership/domain"
	"github.com/AlibekovAA/membership/internal/membership/repository"
	"github.com/AlibekovAA/membership/internal/observability/metrics"
)

type PasswordCredential interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) bool
}

type TokenIssuer interface {
	Issue(subject string) (string, error)
	Refresh(subject string) (string, error)
}

// timingPassword is hashed at construction and compared against when the
// email is unknown, so that path costs one bcrypt comparison like a wrong
// password.
const timingPassword = "membership-timing-equalizer"

type MembershipService struct {
	repo                repository.Repository
	credential          PasswordCredential
	tokens              TokenIssuer
	idGenerator         commoncrypto.IDGenerator
	clock               clock.Clock
	defaultProfileImage string
	log                 *logger.Logger
	timingHash          string
}

func NewMembershipService(
	repo repository.Repository,
	credential PasswordCredential,
	tokens TokenIssuer,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	defaultProfileImage string,
	log *logger.Logger,
) (*MembershipService, error) {
	timingHash, err := credential.Hash(timingPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare timing hash: %w", err)
	}

	return &MembershipService{
		repo:                repo,
		credential:          credential,
		tokens:              tokens,
		idGenerator:         idGenerator,
		clock:               clk,
		defaultProfileImage: defaultProfileImage,
		log:                 log,
		timingHash:          timingHash,
	}, nil
}

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type LoginInput struct {
	Email    string
	Password string
}

type ProfileUpdateInput struct {
	FirstName string
	LastName  string
}

func (s *MembershipService) Register(ctx context.Context, input RegisterInput) error {
	fields := logger.Fields{"email": input.Email}
	s.log.WithFields(ctx, withAction(fields, "register_attempt")).Info("register attempt")

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.log.WithFields(ctx, withAction(fields, "register_lookup_failed")).Errorf("register failed: %v", err)
		return registrationFailed(err)
	}
	if exists {
		s.log.WithFields(ctx, withAction(fields, "register_email_exists")).Warn("register failed: email already registered")
		return ErrEmailTaken
	}

	hash, err := s.credential.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, withAction(fields, "register_hash_failed")).Errorf("register failed: password hash error: %v", err)
		return registrationFailed(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, withAction(fields, "register_id_generation_failed")).Errorf("register failed: %v", err)
		return registrationFailed(err)
	}

	now := s.clock.Now().UTC()
	user := domain.User{
		ID:           id,
		Email:        input.Email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hash,
		ProfileImage: s.defaultProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, withAction(fields, "register_email_exists")).Warn("register failed: email registered concurrently")
			return ErrEmailTaken
		}
		s.log.WithFields(ctx, withAction(fields, "register_create_failed")).Errorf("register failed: %v", err)
		return registrationFailed(err)
	}

	metrics.MembershipRegistrationsTotal.Inc()
	s.log.WithFields(ctx, withAction(fields, "register_success")).Info("user registered")
	return nil
}

// Login returns a fresh bearer token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *MembershipService) Login(ctx context.Context, input LoginInput) (string, error) {
	fields := logger.Fields{"email": input.Email}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.credential.Verify(input.Password, s.timingHash)
			metrics.MembershipLoginsTotal.WithLabelValues("invalid_credentials").Inc()
			s.log.WithFields(ctx, withAction(fields, "login_user_not_found")).Warn("login failed: invalid credentials")
			return "", ErrInvalidCredentials
		}
		metrics.MembershipLoginsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, withAction(fields, "login_lookup_failed")).Errorf("login failed: %v", err)
		return "", loginFailed(err)
	}

	if !s.credential.Verify(input.Password, user.PasswordHash) {
		metrics.MembershipLoginsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.WithFields(ctx, withAction(fields, "login_invalid_password")).Warn("login failed: invalid credentials")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		metrics.MembershipLoginsTotal.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, withAction(fields, "login_token_failed")).Errorf("login failed: token issue error: %v", err)
		return "", loginFailed(err)
	}

	metrics.MembershipLoginsTotal.WithLabelValues("success").Inc()
	s.log.WithFields(ctx, withAction(fields, "login_success")).Info("login successful")
	return token, nil
}

func (s *MembershipService) Profile(ctx context.Context, email string) (domain.Profile, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "profile_user_not_found",
			}).Warn("profile lookup failed: user not found")
			return domain.Profile{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "profile_lookup_failed",
		}).Errorf("profile lookup failed: %v", err)
		return domain.Profile{}, profileFailed(err)
	}

	return user.Profile(s.defaultProfileImage), nil
}

func (s *MembershipService) UpdateProfile(ctx context.Context, email string, input ProfileUpdateInput) (domain.Profile, error) {
	fields := logger.Fields{"email": email}

	user, err := s.repo.UpdateProfile(
		ctx,
		email,
		strings.TrimSpace(input.FirstName),
		strings.TrimSpace(input.LastName),
		s.clock.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithFields(ctx, withAction(fields, "profile_update_user_not_found")).Warn("profile update failed: user not found")
			return domain.Profile{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, withAction(fields, "profile_update_failed")).Errorf("profile update failed: %v", err)
		return domain.Profile{}, profileUpdateFailed(err)
	}

	s.log.WithFields(ctx, withAction(fields, "profile_update_success")).Info("profile updated")
	return user.Profile(s.defaultProfileImage), nil
}

// RefreshToken re-issues a token for an already authenticated subject. The
// new token's window starts now; the old one stays valid until its own expiry.
func (s *MembershipService) RefreshToken(ctx context.Context, email string) (string, error) {
	fields := logger.Fields{"email": email}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		s.log.WithFields(ctx, withAction(fields, "token_refresh_lookup_failed")).Errorf("token refresh failed: %v", err)
		return "", tokenRefreshFailed(err)
	}
	if !exists {
		s.log.WithFields(ctx, withAction(fields, "token_refresh_user_not_found")).Warn("token refresh failed: user not found")
		return "", ErrUserNotFound
	}

	token, err := s.tokens.Refresh(email)
	if err != nil {
		s.log.WithFields(ctx, withAction(fields, "token_refresh_failed")).Errorf("token refresh failed: %v", err)
		return "", tokenRefreshFailed(err)
	}

	s.log.WithFields(ctx, withAction(fields, "token_refresh_success")).Info("token refreshed")
	return token, nil
}

func withAction(fields logger.Fields, action string) logger.Fields {
	out := make(logger.Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["action"] = action
	return out
}
