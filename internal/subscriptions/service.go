package subscriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/tiffino/tiffino-go/pkg/localstore"
	"github.com/tiffino/tiffino-go/pkg/logger"
	"github.com/tiffino/tiffino-go/pkg/types"
)

// activeReferenceKey holds the locally persisted pointer to the user's
// server-side subscription record. Its presence alone triggers discount
// application; the percentage itself is never cached.
const activeReferenceKey = "activeSubscriptionId"

// SubscriptionAPI is the slice of the platform client this service consumes.
type SubscriptionAPI interface {
	SubscriptionByID(ctx context.Context, id string) (*types.Subscription, error)
}

// Service resolves the active subscription reference into a discount.
type Service struct {
	api   SubscriptionAPI
	store *localstore.Store
	logg  *logger.Logger
}

// NewService builds a subscription service.
func NewService(api SubscriptionAPI, store *localstore.Store, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("subscription api required")
	}
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{api: api, store: store, logg: logg}, nil
}

// ActiveReference returns the persisted subscription id, if any.
func (s *Service) ActiveReference() (string, bool) {
	id, ok := s.store.Get(activeReferenceKey)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// SetActiveReference persists the subscription id across restarts.
func (s *Service) SetActiveReference(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("subscription id required")
	}
	return s.store.Set(activeReferenceKey, id)
}

// ClearActiveReference drops the persisted pointer.
func (s *Service) ClearActiveReference() error {
	return s.store.Delete(activeReferenceKey)
}

// FetchActive resolves the persisted reference against the server. No
// reference means no call and no subscription. A fetch failure is logged
// and treated as no subscription so checkout proceeds without the discount.
func (s *Service) FetchActive(ctx context.Context) *types.Subscription {
	id, ok := s.ActiveReference()
	if !ok {
		return nil
	}

	sub, err := s.api.SubscriptionByID(ctx, id)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "subscription_id", id), "subscriptions.fetch_failed")
		return nil
	}
	return sub
}
