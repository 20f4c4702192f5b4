package services

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

// MenuItemInput is the submitted menu item form. Price is the raw form
// value.
type MenuItemInput struct {
	Name        string
	Description string
	Price       string
	Image       *Upload
}

type MenuItemService interface {
	ListMenuItems(ctx context.Context, id auth.Identity) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id auth.Identity, itemID string) (models.MenuItem, error)
	AddMenuItem(ctx context.Context, id auth.Identity, in MenuItemInput) (string, error)
	EditMenuItem(ctx context.Context, id auth.Identity, itemID string, in MenuItemInput) error
	DeleteMenuItem(ctx context.Context, id auth.Identity, itemID string) error
}

type menuItemServiceImpl struct {
	store   repository.Store
	objects ObjectStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewMenuItemService creates a MenuItemService. objects may be nil, in which
// case uploaded images are dropped.
func NewMenuItemService(store repository.Store, objects ObjectStore, logger *zap.Logger) MenuItemService {
	return &menuItemServiceImpl{store: store, objects: objects, logger: logger, now: time.Now}
}

func (s *menuItemServiceImpl) ListMenuItems(ctx context.Context, id auth.Identity) ([]models.MenuItem, error) {
	return listMenuItems(ctx, s.store, id)
}

func (s *menuItemServiceImpl) GetMenuItem(ctx context.Context, id auth.Identity, itemID string) (models.MenuItem, error) {
	doc, err := getScoped(ctx, s.store, models.CollectionMenuItems, id, itemID)
	if err != nil {
		return models.MenuItem{}, err
	}
	var item models.MenuItem
	if err := decode(doc, &item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

// AddMenuItem stores a new item. Company operators own what they create;
// items created by an admin carry a null companyId. A failed image upload is
// logged and the item is stored without an image.
func (s *menuItemServiceImpl) AddMenuItem(ctx context.Context, id auth.Identity, in MenuItemInput) (string, error) {
	fields, err := menuItemFields(in)
	if err != nil {
		return "", err
	}

	if id.IsCompany() {
		fields["companyId"] = id.ScopeKey
	} else {
		fields["companyId"] = nil
	}
	fields["image"] = nil
	if url := s.upload(ctx, "menu_items", in.Image); url != "" {
		fields["image"] = url
	}
	fields["createdAt"] = s.now().UTC()

	itemID, err := s.store.Add(ctx, models.CollectionMenuItems, fields)
	if err != nil {
		return "", storeError(err)
	}
	logger.For(ctx, s.logger).Info("menu item created", zap.String("item_id", itemID))
	return itemID, nil
}

// EditMenuItem updates name, description and price, and the image when a new
// one is uploaded. Ownership is never reassigned by an edit.
func (s *menuItemServiceImpl) EditMenuItem(ctx context.Context, id auth.Identity, itemID string, in MenuItemInput) error {
	if _, err := getScoped(ctx, s.store, models.CollectionMenuItems, id, itemID); err != nil {
		return err
	}
	fields, err := menuItemFields(in)
	if err != nil {
		return err
	}
	if url := s.upload(ctx, "menu_items", in.Image); url != "" {
		fields["image"] = url
	}
	if err := s.store.Update(ctx, models.CollectionMenuItems, itemID, fields); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *menuItemServiceImpl) DeleteMenuItem(ctx context.Context, id auth.Identity, itemID string) error {
	if _, err := getScoped(ctx, s.store, models.CollectionMenuItems, id, itemID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, models.CollectionMenuItems, itemID); err != nil {
		return storeError(err)
	}
	return nil
}

func (s *menuItemServiceImpl) upload(ctx context.Context, prefix string, file *Upload) string {
	return uploadObject(ctx, s.objects, s.logger, prefix, file)
}

func menuItemFields(in MenuItemInput) (models.Document, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.Validation("Name is required")
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price < 0 {
		return nil, apperrors.Validation("Price must be a non-negative number")
	}
	return models.Document{
		"name":        name,
		"description": strings.TrimSpace(in.Description),
		"price":       price,
	}, nil
}

// uploadObject stores file under prefix/<uuid>_<name> and returns its URL,
// or "" when there is nothing to upload or the upload failed.
func uploadObject(ctx context.Context, objects ObjectStore, log *zap.Logger, prefix string, file *Upload) string {
	if file == nil || len(file.Body) == 0 || objects == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%s_%s", prefix, uuid.NewString(), path.Base(file.Filename))
	url, err := objects.Put(ctx, key, file.Body, file.ContentType)
	if err != nil {
		logger.For(ctx, log).Warn("upload failed, continuing without file",
			zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}
