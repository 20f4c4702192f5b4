package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yashrajoria/lezzetli-admin/auth"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/common/logger"
	"github.com/yashrajoria/lezzetli-admin/models"
	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	"github.com/yashrajoria/lezzetli-admin/repository"
	"go.uber.org/zap"
)

// OrderService lists and updates orders on behalf of an operator.
type OrderService interface {
	ListOrders(ctx context.Context, id auth.Identity, page int) (models.OrderPage, error)
	ViewOrder(ctx context.Context, id auth.Identity, orderID string) (models.OrderView, error)
	UpdateStatus(ctx context.Context, id auth.Identity, orderID, status string) error
	UpdatePayment(ctx context.Context, id auth.Identity, orderID, paymentStatus string) error
}

// OrderConfig carries the order listing and workflow settings.
type OrderConfig struct {
	PageSize        int
	Statuses        []string
	PaymentStatuses []string
}

var (
	DefaultOrderStatuses   = []string{"pending", "confirmed", "preparing", "delivered", "cancelled"}
	DefaultPaymentStatuses = []string{"pending", "paid", "refunded"}
)

type orderServiceImpl struct {
	store           repository.Store
	resolver        *Resolver
	events          EventPublisher
	counter         Counter
	logger          *zap.Logger
	pageSize        int
	statuses        map[string]bool
	paymentStatuses map[string]bool
}

// NewOrderService creates an OrderService. events and counter may be nil.
func NewOrderService(store repository.Store, resolver *Resolver, events EventPublisher, counter Counter, cfg OrderConfig, logger *zap.Logger) OrderService {
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultPageSize
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = DefaultOrderStatuses
	}
	if len(cfg.PaymentStatuses) == 0 {
		cfg.PaymentStatuses = DefaultPaymentStatuses
	}
	return &orderServiceImpl{
		store:           store,
		resolver:        resolver,
		events:          events,
		counter:         counter,
		logger:          logger,
		pageSize:        cfg.PageSize,
		statuses:        setOf(cfg.Statuses),
		paymentStatuses: setOf(cfg.PaymentStatuses),
	}
}

// ListOrders runs the listing pipeline: the scoped query is executed once,
// every candidate is resolved, the views are sorted newest first and then
// cut to the requested page.
func (s *orderServiceImpl) ListOrders(ctx context.Context, id auth.Identity, page int) (models.OrderPage, error) {
	q := repository.BuildQuery(models.CollectionOrders, id)

	docs, err := s.store.Query(ctx, q)
	if err != nil {
		return models.OrderPage{}, stageErr(StageFetching, storeError(err))
	}

	resolved, err := s.resolver.ResolveAll(ctx, docs, OrderRefs)
	if err != nil {
		return models.OrderPage{}, stageErr(StageResolving, storeError(err))
	}

	views := make([]models.OrderView, 0, len(docs))
	for i, doc := range docs {
		view, err := AssembleOrder(doc, resolved[i])
		if err != nil {
			return models.OrderPage{}, stageErr(StageAssembling, err)
		}
		views = append(views, view)
	}

	sortNewestFirst(views, func(v models.OrderView) models.Timestamp { return v.CreatedAt })

	pagination, start, end := Paginate(len(views), page, s.pageSize)
	return models.OrderPage{
		Items:      views[start:end],
		Pagination: pagination,
	}, nil
}

func (s *orderServiceImpl) ViewOrder(ctx context.Context, id auth.Identity, orderID string) (models.OrderView, error) {
	doc, err := s.getScoped(ctx, id, orderID)
	if err != nil {
		return models.OrderView{}, err
	}
	resolved, err := s.resolver.Resolve(ctx, doc, OrderRefs)
	if err != nil {
		return models.OrderView{}, storeError(err)
	}
	return AssembleOrder(doc, resolved)
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id auth.Identity, orderID, status string) error {
	status = strings.TrimSpace(status)
	if !s.statuses[status] {
		return apperrors.Validation("Invalid order status")
	}
	return s.update(ctx, id, orderID, "status", status, EventOrderStatusChanged)
}

func (s *orderServiceImpl) UpdatePayment(ctx context.Context, id auth.Identity, orderID, paymentStatus string) error {
	paymentStatus = strings.TrimSpace(paymentStatus)
	if !s.paymentStatuses[paymentStatus] {
		return apperrors.Validation("Invalid payment status")
	}
	return s.update(ctx, id, orderID, "payment_status", paymentStatus, EventOrderPaymentChanged)
}

func (s *orderServiceImpl) update(ctx context.Context, id auth.Identity, orderID, field, value, eventType string) error {
	doc, err := s.getScoped(ctx, id, orderID)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.CollectionOrders, orderID, models.Document{field: value}); err != nil {
		return storeError(err)
	}

	logger.For(ctx, s.logger).Info("order updated",
		zap.String("order_id", orderID),
		zap.String("field", field),
		zap.String("value", value),
		zap.String("by", id.SubjectID))

	if s.counter != nil {
		if err := s.counter.RecordCount(ctx, aws_pkg.MetricOrderStatusChanged, map[string]string{"Field": field}); err != nil {
			logger.For(ctx, s.logger).Warn("failed to record order metric", zap.Error(err))
		}
	}
	if s.events != nil {
		payload := map[string]interface{}{
			"order_id":   orderID,
			"company_id": doc.String("companyId"),
			field:        value,
			"previous":   doc[field],
			"changed_by": id.SubjectID,
		}
		if err := s.events.Publish(ctx, eventType, payload); err != nil {
			logger.For(ctx, s.logger).Warn("failed to publish order event",
				zap.String("event_type", eventType), zap.Error(err))
		}
	}
	return nil
}

// getScoped fetches an order the identity may act on. Orders outside the
// identity's scope are reported as not found.
func (s *orderServiceImpl) getScoped(ctx context.Context, id auth.Identity, orderID string) (models.Document, error) {
	return getScoped(ctx, s.store, models.CollectionOrders, id, orderID)
}

func getScoped(ctx context.Context, store repository.Store, collection string, id auth.Identity, docID string) (models.Document, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, apperrors.ErrNotFound
	}
	doc, err := store.Get(ctx, collection, docID)
	if err != nil {
		return nil, storeError(err)
	}
	if !repository.Owns(collection, id, doc) {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, errors.New(collection+"/"+docID+" outside caller scope"))
	}
	return doc, nil
}

func setOf(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out[v] = true
		}
	}
	return out
}
