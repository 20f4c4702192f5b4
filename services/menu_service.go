package services

import (
	"context"
	"strings"
	"time"

	"github.com/yashrajoria/lezzetli-admin/auth"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

// MenuInput is the submitted menu form. CompanyID is ignored for company
// operators, whose menus always belong to their own company.
type MenuInput struct {
	CompanyID  string
	CutoffTime string
	Date       string
	IsActive   *bool
	MealType   string
	MenuItems  []string
	Type       string
}

type MenuService interface {
	ListMenus(ctx context.Context, id auth.Identity) ([]models.MenuView, error)
	MenuForm(ctx context.Context, id auth.Identity, menuID string) (models.MenuForm, error)
	AddMenu(ctx context.Context, id auth.Identity, in MenuInput) (string, error)
	EditMenu(ctx context.Context, id auth.Identity, menuID string, in MenuInput) error
	DeleteMenu(ctx context.Context, id auth.Identity, menuID string) error
}

type menuServiceImpl struct {
	store    repository.Store
	resolver *Resolver
	logger   *zap.Logger
	now      func() time.Time
}

func NewMenuService(store repository.Store, resolver *Resolver, logger *zap.Logger) MenuService {
	return &menuServiceImpl{store: store, resolver: resolver, logger: logger, now: time.Now}
}

// ListMenus returns the scoped menus with display defaults applied and their
// owning company attached. Each distinct company is fetched once.
func (s *menuServiceImpl) ListMenus(ctx context.Context, id auth.Identity) ([]models.MenuView, error) {
	docs, err := s.store.Query(ctx, repository.BuildQuery(models.CollectionMenus, id))
	if err != nil {
		return nil, storeError(err)
	}

	menus := make([]models.Menu, len(docs))
	companyIDs := make([]string, 0, len(docs))
	for i, doc := range docs {
		if err := decode(doc, &menus[i]); err != nil {
			return nil, err
		}
		menus[i].ApplyDefaults()
		companyIDs = append(companyIDs, menus[i].CompanyID)
	}

	companies, err := s.resolver.ResolveIDs(ctx, models.CollectionCompanies, companyIDs)
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]models.MenuView, len(menus))
	for i, m := range menus {
		views[i].Menu = m
		if doc, ok := companies[m.CompanyID]; ok {
			var c models.Company
			if err := decode(doc, &c); err != nil {
				return nil, err
			}
			views[i].Company = &c
		}
	}
	return views, nil
}

// MenuForm returns the scoped menu items and companies the menu form offers,
// plus the menu itself when menuID is set.
func (s *menuServiceImpl) MenuForm(ctx context.Context, id auth.Identity, menuID string) (models.MenuForm, error) {
	var form models.MenuForm

	if menuID != "" {
		doc, err := getScoped(ctx, s.store, models.CollectionMenus, id, menuID)
		if err != nil {
			return models.MenuForm{}, err
		}
		var m models.Menu
		if err := decode(doc, &m); err != nil {
			return models.MenuForm{}, err
		}
		m.ApplyDefaults()
		form.Menu = &m
	}

	items, err := listMenuItems(ctx, s.store, id)
	if err != nil {
		return models.MenuForm{}, err
	}
	form.Items = items

	companies, err := listCompanies(ctx, s.store, id)
	if err != nil {
		return models.MenuForm{}, err
	}
	form.Companies = companies
	return form, nil
}

func (s *menuServiceImpl) AddMenu(ctx context.Context, id auth.Identity, in MenuInput) (string, error) {
	doc := s.menuDocument(id, in)
	doc["createdAt"] = s.now().UTC()

	menuID, err := s.store.Add(ctx, models.CollectionMenus, doc)
	if err != nil {
		return "", storeError(err)
	}
	logger.For(ctx, s.logger).Info("menu created",
		zap.String("menu_id", menuID),
		zap.String("company_id", doc.String("companyId")))
	return menuID, nil
}

func (s *menuServiceImpl) EditMenu(ctx context.Context, id auth.Identity, menuID string, in MenuInput) error {
	if _, err := getScoped(ctx, s.store, models.CollectionMenus, id, menuID); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.CollectionMenus, menuID, s.menuDocument(id, in)); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *menuServiceImpl) DeleteMenu(ctx context.Context, id auth.Identity, menuID string) error {
	if _, err := getScoped(ctx, s.store, models.CollectionMenus, id, menuID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionMenus, menuID); err != nil {
		return storeError(err)
	}
	logger.For(ctx, s.logger).Info("menu deleted", zap.String("menu_id", menuID))
	return nil
}

func (s *menuServiceImpl) menuDocument(id auth.Identity, in MenuInput) models.Document {
	companyID := strings.TrimSpace(in.CompanyID)
	if id.IsCompany() {
		companyID = id.ScopeKey
	}

	items := models.NormalizeList(in.MenuItems)
	list := make([]interface{}, len(items))
	for i, item := range items {
		list[i] = item
	}

	doc := models.Document{
		"companyId":   companyID,
		"cutoff_time": strings.TrimSpace(in.CutoffTime),
		"date":        strings.TrimSpace(in.Date),
		"mealType":    strings.TrimSpace(in.MealType),
		"menu_items":  list,
		"type":        strings.TrimSpace(in.Type),
	}
	if in.IsActive != nil {
		doc["is_active"] = *in.IsActive
	}
	return doc
}

func listMenuItems(ctx context.Context, store repository.Store, id auth.Identity) ([]models.MenuItem, error) {
	docs, err := store.Query(ctx, repository.BuildQuery(models.CollectionMenuItems, id))
	if err != nil {
		return nil, storeError(err)
	}
	items := make([]models.MenuItem, len(docs))
	for i, doc := range docs {
		if err := decode(doc, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func listCompanies(ctx context.Context, store repository.Store, id auth.Identity) ([]models.Company, error) {
	docs, err := store.Query(ctx, repository.BuildQuery(models.CollectionCompanies, id))
	if err != nil {
		return nil, storeError(err)
	}
	companies := make([]models.Company, len(docs))
	for i, doc := range docs {
		if err := decode(doc, &companies[i]); err != nil {
			return nil, err
		}
	}
	return companies, nil
}
