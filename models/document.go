package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Collection names as they exist in the document store.
const (
	CollectionOrders     = "orders"
	CollectionCompanies  = "companies"
	CollectionUsers      = "users"
	CollectionMenus      = "menus"
	CollectionMenuItems  = "menu_items"
	CollectionCouples    = "couples"
	CollectionGuests     = "guests"
	CollectionBookings   = "bookings"
	CollectionEvents     = "events"
	CollectionAdminUsers = "admin_user"
)

// Document is a schemaless record as read from or written to the store. Every
// stored document carries its own key under "id".
type Document map[string]interface{}

// ID returns the document key.
func (d Document) ID() string {
	return d.String("id")
}

// String returns the value at key when it is a non-empty string.
func (d Document) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// Clone returns a deep copy, so callers can hand documents across goroutines
// without sharing nested maps or slices.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(Document(t).Clone())
	case Document:
		return t.Clone()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// sensitiveKeys never surface in any decoded entity, including Extra.
var sensitiveKeys = map[string]bool{
	"password": true,
}

// ErrFieldType reports that at least one stored field had an unexpected
// type. The destination is still populated with every field that decoded.
var ErrFieldType = errors.New("document field has unexpected type")

// Decode copies doc into dst, a pointer to an entity struct. Keys that match
// a json tag on dst land in the typed field. All other keys are collected
// into dst's Extra map when it has one.
func Decode(doc Document, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode: destination must be a pointer to struct, got %T", dst)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	var decodeErr error
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return fmt.Errorf("decode: %w", err)
		}
		decodeErr = fmt.Errorf("%w: %s", ErrFieldType, typeErr.Field)
	}

	if extra := rv.Elem().FieldByName("Extra"); extra.IsValid() && extra.CanSet() {
		known := knownKeys(rv.Elem().Type())
		bag := make(map[string]interface{})
		for k, v := range doc {
			if known[k] || sensitiveKeys[k] {
				continue
			}
			bag[k] = cloneValue(v)
		}
		if len(bag) > 0 {
			extra.Set(reflect.ValueOf(bag))
		} else {
			extra.Set(reflect.Zero(extra.Type()))
		}
	}

	return decodeErr
}

var knownKeyCache sync.Map

func knownKeys(t reflect.Type) map[string]bool {
	if cached, ok := knownKeyCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	keys := make(map[string]bool)
	collectKeys(t, keys)
	knownKeyCache.Store(t, keys)
	return keys
}

func collectKeys(t reflect.Type, keys map[string]bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Name == "Extra" {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectKeys(ft, keys)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
}
