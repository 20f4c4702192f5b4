package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
	"github.com/yashrajoria/lezzetli-admin/models"
	"github.com/yashrajoria/lezzetli-admin/repository"
)

// EventPublisher announces domain events. SNS backs it in production.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{}) error
}

// ObjectStore keeps uploaded images and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Counter records CloudWatch business counters.
type Counter interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Event types published by the services.
const (
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentChanged = "order.payment_changed"
	EventCompanyRegistered   = "company.registered"
)

// storeError maps a store failure to the application error taxonomy.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(apperrors.ErrNotFound, err)
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
}

// decode is models.Decode minus field type mismatches, which only cost the
// mismatched field.
func decode(doc models.Document, dst interface{}) error {
	if err := models.Decode(doc, dst); err != nil && !errors.Is(err, models.ErrFieldType) {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
