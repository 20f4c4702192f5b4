package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/services"
)

// InitialPasswordLength is the length of the password suggested on the add
// company form.
const InitialPasswordLength = 12

// CompanyController serves tenant administration. Store failures on the
// mutation endpoints are rendered as JSON by the error middleware.
type CompanyController struct {
	companyService services.CompanyService
}

func NewCompanyController(companyService services.CompanyService) *CompanyController {
	return &CompanyController{companyService: companyService}
}

// ListCompanies handles GET /companies.
func (cc *CompanyController) ListCompanies(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	companies, err := cc.companyService.ListCompanies(c.Request.Context(), id)
	if err != nil {
		redirectError(c, "/dashboard", "Unable to fetch companies", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"items": companies})
}

// CompanyForm handles GET /companies/form with a suggested password.
func (cc *CompanyController) CompanyForm(c *gin.Context) {
	password, err := auth.GeneratePassword(InitialPasswordLength)
	if err != nil {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	respond(c, http.StatusOK, gin.H{"data": gin.H{"password": password}, "mode": "add"})
}

// GetCompany handles GET /companies/edit/:id.
func (cc *CompanyController) GetCompany(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	company, err := cc.companyService.GetCompany(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		redirectError(c, "/companies", "Company not found.", err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": company, "mode": "edit"})
}

// AddCompany handles POST /companies/add (multipart, optional "logo").
func (cc *CompanyController) AddCompany(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	in, err := companyInput(c)
	if err == nil {
		_, err = cc.companyService.AddCompany(c.Request.Context(), id, in)
	}
	if err != nil {
		cc.fail(c, err)
		return
	}
	redirectSuccess(c, "/companies", "New company added and email sent successfully.")
}

// EditCompany handles POST /companies/edit/:id.
func (cc *CompanyController) EditCompany(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	in, err := companyInput(c)
	if err == nil {
		err = cc.companyService.EditCompany(c.Request.Context(), id, c.Param("id"), in)
	}
	if err != nil {
		cc.fail(c, err)
		return
	}
	redirectSuccess(c, "/companies", "Company updated successfully.")
}

// DeleteCompany handles POST /companies/delete/:id.
func (cc *CompanyController) DeleteCompany(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	if err := cc.companyService.DeleteCompany(c.Request.Context(), id, c.Param("id")); err != nil {
		cc.fail(c, err)
		return
	}
	redirectSuccess(c, "/companies", "Company deleted successfully.")
}

// ToggleApproval handles POST /companies/toggle-approval/:id.
func (cc *CompanyController) ToggleApproval(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	approved, err := cc.companyService.ToggleApproval(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		cc.fail(c, err)
		return
	}
	word := "disapproved"
	if approved {
		word = "approved"
	}
	redirectSuccess(c, "/companies", "Company has been "+word+".")
}

// ToggleStatus handles POST /companies/toggle-status/:id.
func (cc *CompanyController) ToggleStatus(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	active, err := cc.companyService.ToggleStatus(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		cc.fail(c, err)
		return
	}
	word := "deactivated"
	if active {
		word = "activated"
	}
	redirectSuccess(c, "/companies", "Company has been "+word+".")
}

// fail redirects with a notice for missing companies and invalid forms and
// hands everything else to the JSON error middleware.
func (cc *CompanyController) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		redirectError(c, "/companies", "Company not found.", err)
	case errors.Is(err, apperrors.ErrValidation):
		redirectError(c, "/companies", apperrors.Notice(err), err)
	default:
		_ = c.Error(err)
	}
}

func companyInput(c *gin.Context) (services.CompanyInput, error) {
	form := companyForm{
		Email:       strings.TrimSpace(c.PostForm("email")),
		Phone:       strings.TrimSpace(c.PostForm("phone")),
		CompanyCode: strings.TrimSpace(c.PostForm("company_code")),
	}
	if err := validateForm(form); err != nil {
		return services.CompanyInput{}, err
	}
	logo, err := formUpload(c, "logo")
	if err != nil {
		return services.CompanyInput{}, err
	}
	return services.CompanyInput{
		Name:        c.PostForm("name"),
		CompanyCode: c.PostForm("company_code"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Password:    c.PostForm("password"),
		IsActive:    c.PostForm("is_active"),
		IsApproved:  c.PostForm("is_approved"),
		Logo:        logo,
	}, nil
}
