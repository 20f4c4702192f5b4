package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/metrics"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

// Session is an issued credential.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  auth.Identity
}

type AuthService interface {
	Login(ctx context.Context, email, password, role string) (Session, error)
	Logout(ctx context.Context, token string) error
}

type authServiceImpl struct {
	store    repository.Store
	hasher   auth.PasswordHasher
	issuer   *auth.Issuer
	verifier *auth.Verifier
	denylist auth.Denylist
	logger   *zap.Logger
}

// NewAuthService creates an AuthService. denylist may be nil, in which case
// logout only clears the client cookie.
func NewAuthService(store repository.Store, hasher auth.PasswordHasher, issuer *auth.Issuer, verifier *auth.Verifier, denylist auth.Denylist, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		store:    store,
		hasher:   hasher,
		issuer:   issuer,
		verifier: verifier,
		denylist: denylist,
		logger:   logger,
	}
}

// Login checks e-mail and password against the company accounts when role
// is "company" and against the admin accounts otherwise.
func (s *authServiceImpl) Login(ctx context.Context, email, password, role string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperrors.Validation("Email and password are required")
	}

	collection := models.CollectionAdminUsers
	issuedRole := auth.RoleAdmin
	if role == string(auth.RoleCompany) {
		collection = models.CollectionCompanies
		issuedRole = auth.RoleCompany
	}

	docs, err := s.store.Query(ctx, repository.CredentialQuery(collection, email))
	if err != nil {
		return Session{}, storeError(err)
	}
	log := logger.For(ctx, s.logger)
	if len(docs) == 0 {
		metrics.AuthFailures.WithLabelValues("unknown_email").Inc()
		log.Warn("login with unknown email", zap.String("collection", collection))
		return Session{}, apperrors.ErrInvalidCredentials
	}

	account := docs[0]
	hash, _ := account["password"].(string)
	if err := s.hasher.Compare(hash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return Session{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		metrics.AuthFailures.WithLabelValues("bad_password").Inc()
		log.Warn("login with wrong password", zap.String("account_id", account.ID()))
		return Session{}, apperrors.ErrInvalidCredentials
	}

	subject := auth.Subject{
		ID:    account.ID(),
		Email: account.String("email"),
		Name:  account.String("name"),
		Role:  issuedRole,
	}
	if issuedRole == auth.RoleCompany {
		subject.CompanyID = account.ID()
	}

	token, expires, err := s.issuer.Issue(subject)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	log.Info("operator logged in",
		zap.String("account_id", subject.ID),
		zap.String("role", string(issuedRole)))

	return Session{
		Token:     token,
		ExpiresAt: expires,
		Identity: auth.Identity{
			SubjectID: subject.ID,
			Email:     subject.Email,
			Name:      subject.Name,
			Role:      issuedRole,
			ScopeKey:  subject.ID,
			ExpiresAt: expires,
		},
	}, nil
}

// Logout revokes token until it would have expired. Tokens that no longer
// verify need no revocation.
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	if s.denylist == nil || token == "" {
		return nil
	}
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			return err
		}
		return nil
	}
	if id.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	logger.For(ctx, s.logger).Info("operator logged out", zap.String("account_id", id.SubjectID))
	return nil
}
