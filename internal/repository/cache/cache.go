package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
)

var ErrUnknownCacheType = errors.New("unknown cache type")

type Entry struct {
	Data    []byte
	Expires time.Time
}

// Expired reports whether the entry is past its expiry. A zero Expires never expires.
func (e Entry) Expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// ResourceCache stores resource bytes under their canonical key. A missing
// key is reported as (Entry{}, false, nil), never as an error.
type ResourceCache interface {
	Get(context.Context, resource.Key) (Entry, bool, error)
	Set(context.Context, resource.Key, Entry) error
	Clear(context.Context) error
}
