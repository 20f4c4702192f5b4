package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/models"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

type companyDeps struct {
	store   *repository.MemoryStore
	mailer  *fakeMailer
	events  *fakePublisher
	counter *fakeCounter
	objects *fakeObjects
}

func newCompanyService() (CompanyService, companyDeps) {
	d := companyDeps{
		store:   orderFixture(),
		mailer:  &fakeMailer{},
		events:  &fakePublisher{},
		counter: &fakeCounter{},
		objects: &fakeObjects{},
	}
	svc := NewCompanyService(d.store, plainHasher{}, d.objects, d.mailer, d.events, d.counter, zap.NewNop())
	return svc, d
}

func TestAddCompany(t *testing.T) {
	svc, d := newCompanyService()

	companyID, err := svc.AddCompany(context.Background(), adminID, CompanyInput{
		Name:        "Gamma",
		CompanyCode: "GAM",
		Email:       "gamma@test",
		Password:    "s3cret",
		IsActive:    "true",
	})
	require.NoError(t, err)

	doc, err := d.store.Get(context.Background(), models.CollectionCompanies, companyID)
	require.NoError(t, err)
	assert.Equal(t, "hashed:s3cret", doc["password"])
	assert.Equal(t, true, doc["is_active"])
	assert.Equal(t, false, doc["is_approved"])
	assert.Equal(t, "company", doc["role"])
	assert.Nil(t, doc["phone"])

	require.Len(t, d.mailer.sent, 1)
	assert.Equal(t, "gamma@test", d.mailer.sent[0].To)
	assert.Equal(t, "s3cret", d.mailer.sent[0].Password)

	require.Len(t, d.events.events, 1)
	assert.Equal(t, EventCompanyRegistered, d.events.events[0].Type)
	assert.NotContains(t, d.events.events[0].Payload, "password")

	assert.ElementsMatch(t, []string{aws_pkg.MetricWelcomeEmailsQueued, aws_pkg.MetricCompanyRegistered}, d.counter.names)
}

func TestAddCompanyRules(t *testing.T) {
	svc, d := newCompanyService()

	_, err := svc.AddCompany(context.Background(), companyA, CompanyInput{Name: "X", Email: "x@test", Password: "p"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = svc.AddCompany(context.Background(), adminID, CompanyInput{Name: "X", Email: "x@test"})
	assert.Equal(t, "Name, email and password are required", apperrors.Notice(err))

	_, err = svc.AddCompany(context.Background(), adminID, CompanyInput{Name: "Dup", Email: "alpha@test", Password: "p"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	assert.Empty(t, d.mailer.sent)
}

func TestAddCompanySurvivesMailFailure(t *testing.T) {
	svc, d := newCompanyService()
	d.mailer.err = errors.New("queue down")

	companyID, err := svc.AddCompany(context.Background(), adminID, CompanyInput{
		Name:     "Delta",
		Email:    "delta@test",
		Password: "pw",
		Logo:     &Upload{Filename: "logo.png", Body: []byte{1}},
	})
	require.NoError(t, err)

	c, err := svc.GetCompany(context.Background(), adminID, companyID)
	require.NoError(t, err)
	require.NotNil(t, c.Logo)
	assert.Contains(t, *c.Logo, "companies/")
	assert.Equal(t, []string{aws_pkg.MetricCompanyRegistered}, d.counter.names)
}

func TestEditCompanyPartialUpdate(t *testing.T) {
	svc, d := newCompanyService()

	require.NoError(t, svc.EditCompany(context.Background(), adminID, "cA", CompanyInput{Phone: "555"}))

	doc, err := d.store.Get(context.Background(), models.CollectionCompanies, "cA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", doc["name"])
	assert.Equal(t, "555", doc["phone"])
	assert.Equal(t, "hashed:pw", doc["password"], "empty password keeps the current hash")
	assert.NotNil(t, doc["updated_at"])

	err = svc.EditCompany(context.Background(), companyA, "cA", CompanyInput{Name: "Mine"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	err = svc.EditCompany(context.Background(), adminID, "nope", CompanyInput{Name: "Ghost"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.EditCompany(context.Background(), adminID, "cA", CompanyInput{Email: "beta@test"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "A company with this email already exists", apperrors.Notice(err))
	doc, err = d.store.Get(context.Background(), models.CollectionCompanies, "cA")
	require.NoError(t, err)
	assert.Equal(t, "alpha@test", doc["email"])

	require.NoError(t, svc.EditCompany(context.Background(), adminID, "cA", CompanyInput{Email: "alpha@test", Name: "Alpha Two"}),
		"keeping its own e-mail is not a duplicate")
	doc, err = d.store.Get(context.Background(), models.CollectionCompanies, "cA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Two", doc["name"])
}

func TestToggleCompanyFlags(t *testing.T) {
	svc, d := newCompanyService()

	approved, err := svc.ToggleApproval(context.Background(), adminID, "cA")
	require.NoError(t, err)
	assert.True(t, approved)
	approved, err = svc.ToggleApproval(context.Background(), adminID, "cA")
	require.NoError(t, err)
	assert.False(t, approved)

	active, err := svc.ToggleStatus(context.Background(), adminID, "cB")
	require.NoError(t, err)
	assert.True(t, active)
	doc, _ := d.store.Get(context.Background(), models.CollectionCompanies, "cB")
	assert.Equal(t, true, doc["is_active"])

	_, err = svc.ToggleStatus(context.Background(), companyB, "cB")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = svc.ToggleStatus(context.Background(), adminID, "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCompanyOperatorSeesOnlyItself(t *testing.T) {
	svc, _ := newCompanyService()

	companies, err := svc.ListCompanies(context.Background(), companyA)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Alpha", companies[0].Name)
	assert.NotContains(t, companies[0].Extra, "password")

	_, err = svc.GetCompany(context.Background(), companyA, "cB")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, svc.DeleteCompany(context.Background(), adminID, "cB"))
	all, err := svc.ListCompanies(context.Background(), adminID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
