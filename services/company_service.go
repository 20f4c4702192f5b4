package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"github.com/yashrajoria/lezzetli-admin/sender"
	"go.uber.org/zap"
)

// WelcomeMailer delivers the welcome e-mail of a new company.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, w sender.WelcomeEmail) error
}

// CompanyInput is the submitted company form. IsActive and IsApproved carry
// the raw checkbox values; only "true" means true.
type CompanyInput struct {
	Name        string
	CompanyCode string
	Email       string
	Phone       string
	Password    string
	IsActive    string
	IsApproved  string
	Logo        *Upload
}

type CompanyService interface {
	ListCompanies(ctx context.Context, id auth.Identity) ([]models.Company, error)
	GetCompany(ctx context.Context, id auth.Identity, companyID string) (models.Company, error)
	AddCompany(ctx context.Context, id auth.Identity, in CompanyInput) (string, error)
	EditCompany(ctx context.Context, id auth.Identity, companyID string, in CompanyInput) error
	DeleteCompany(ctx context.Context, id auth.Identity, companyID string) error
	ToggleApproval(ctx context.Context, id auth.Identity, companyID string) (bool, error)
	ToggleStatus(ctx context.Context, id auth.Identity, companyID string) (bool, error)
}

type companyServiceImpl struct {
	store   repository.Store
	hasher  auth.PasswordHasher
	objects ObjectStore
	mailer  WelcomeMailer
	events  EventPublisher
	counter Counter
	logger  *zap.Logger
	now     func() time.Time
}

// NewCompanyService creates a CompanyService. objects, mailer, events and
// counter are optional.
func NewCompanyService(store repository.Store, hasher auth.PasswordHasher, objects ObjectStore, mailer WelcomeMailer, events EventPublisher, counter Counter, logger *zap.Logger) CompanyService {
	return &companyServiceImpl{
		store:   store,
		hasher:  hasher,
		objects: objects,
		mailer:  mailer,
		events:  events,
		counter: counter,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *companyServiceImpl) ListCompanies(ctx context.Context, id auth.Identity) ([]models.Company, error) {
	return listCompanies(ctx, s.store, id)
}

func (s *companyServiceImpl) GetCompany(ctx context.Context, id auth.Identity, companyID string) (models.Company, error) {
	doc, err := getScoped(ctx, s.store, models.CollectionCompanies, id, companyID)
	if err != nil {
		return models.Company{}, err
	}
	var c models.Company
	if err := decode(doc, &c); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// AddCompany registers a tenant. Only admins may do this. The welcome e-mail
// and the registration event are best-effort.
func (s *companyServiceImpl) AddCompany(ctx context.Context, id auth.Identity, in CompanyInput) (string, error) {
	if !id.IsAdmin() {
		return "", apperrors.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return "", apperrors.Validation("Name, email and password are required")
	}

	existing, err := s.store.Query(ctx, repository.CredentialQuery(models.CollectionCompanies, email))
	if err != nil {
		return "", storeError(err)
	}
	if len(existing) > 0 {
		return "", apperrors.Validation("A company with this email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	doc := models.Document{
		"name":         name,
		"company_code": strings.TrimSpace(in.CompanyCode),
		"email":        email,
		"phone":        nil,
		"logo":         nil,
		"password":     hash,
		"is_active":    in.IsActive == "true",
		"is_approved":  in.IsApproved == "true",
		"role":         string(auth.RoleCompany),
		"createdAt":    s.now().UTC(),
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		doc["phone"] = phone
	}
	if url := uploadObject(ctx, s.objects, s.logger, "companies", in.Logo); url != "" {
		doc["logo"] = url
	}

	companyID, err := s.store.Add(ctx, models.CollectionCompanies, doc)
	if err != nil {
		return "", storeError(err)
	}
	log := logger.For(ctx, s.logger)
	log.Info("company registered", zap.String("company_id", companyID))

	if s.mailer != nil {
		welcome := sender.WelcomeEmail{
			To:          email,
			CompanyName: name,
			CompanyCode: doc.String("company_code"),
			Password:    in.Password,
		}
		if err := s.mailer.SendWelcome(ctx, welcome); err != nil {
			log.Warn("welcome email failed", zap.String("company_id", companyID), zap.Error(err))
		} else if s.counter != nil {
			_ = s.counter.RecordCount(ctx, aws_pkg.MetricWelcomeEmailsQueued, nil)
		}
	}
	if s.counter != nil {
		if err := s.counter.RecordCount(ctx, aws_pkg.MetricCompanyRegistered, nil); err != nil {
			log.Warn("failed to record company metric", zap.Error(err))
		}
	}
	if s.events != nil {
		payload := map[string]interface{}{
			"company_id":   companyID,
			"name":         name,
			"company_code": doc["company_code"],
			"email":        email,
			"is_active":    doc["is_active"],
			"is_approved":  doc["is_approved"],
		}
		if err := s.events.Publish(ctx, EventCompanyRegistered, payload); err != nil {
			log.Warn("failed to publish company event", zap.Error(err))
		}
	}
	return companyID, nil
}

// EditCompany applies the submitted fields. An empty password keeps the
// current one; a new logo replaces the old one.
func (s *companyServiceImpl) EditCompany(ctx context.Context, id auth.Identity, companyID string, in CompanyInput) error {
	if !id.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if _, err := getScoped(ctx, s.store, models.CollectionCompanies, id, companyID); err != nil {
		return err
	}

	updates := models.Document{"updated_at": s.now().UTC()}
	if v := strings.TrimSpace(in.Name); v != "" {
		updates["name"] = v
	}
	if v := strings.TrimSpace(in.CompanyCode); v != "" {
		updates["company_code"] = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		existing, err := s.store.Query(ctx, repository.CredentialQuery(models.CollectionCompanies, v))
		if err != nil {
			return storeError(err)
		}
		for _, doc := range existing {
			if doc.ID() != companyID {
				return apperrors.Validation("A company with this email already exists")
			}
		}
		updates["email"] = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		updates["phone"] = v
	}
	if in.IsActive != "" {
		updates["is_active"] = in.IsActive == "true"
	}
	if in.IsApproved != "" {
		updates["is_approved"] = in.IsApproved == "true"
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["password"] = hash
	}
	if url := uploadObject(ctx, s.objects, s.logger, "companies", in.Logo); url != "" {
		updates["logo"] = url
	}

	if err := s.store.Update(ctx, models.CollectionCompanies, companyID, updates); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *companyServiceImpl) DeleteCompany(ctx context.Context, id auth.Identity, companyID string) error {
	if !id.IsAdmin() {
		return apperrors.ErrForbidden
	}
	if err := s.store.Delete(ctx, models.CollectionCompanies, companyID); err != nil {
		return storeError(err)
	}
	logger.For(ctx, s.logger).Info("company deleted", zap.String("company_id", companyID))
	return nil
}

func (s *companyServiceImpl) ToggleApproval(ctx context.Context, id auth.Identity, companyID string) (bool, error) {
	return s.toggle(ctx, id, companyID, "is_approved")
}

func (s *companyServiceImpl) ToggleStatus(ctx context.Context, id auth.Identity, companyID string) (bool, error) {
	return s.toggle(ctx, id, companyID, "is_active")
}

// toggle flips a boolean flag and returns its new value. An absent or
// non-boolean flag counts as false.
func (s *companyServiceImpl) toggle(ctx context.Context, id auth.Identity, companyID, field string) (bool, error) {
	if !id.IsAdmin() {
		return false, apperrors.ErrForbidden
	}
	doc, err := getScoped(ctx, s.store, models.CollectionCompanies, id, companyID)
	if err != nil {
		return false, err
	}
	current, _ := doc[field].(bool)
	next := !current
	if err := s.store.Update(ctx, models.CollectionCompanies, companyID, models.Document{field: next}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.Wrap(apperrors.ErrNotFound, err)
		}
		return false, storeError(err)
	}
	return next, nil
}
