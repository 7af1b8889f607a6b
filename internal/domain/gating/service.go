// internal/domain/gating/service.go
package gating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-engine/internal/config"
	"gorm.io/gorm"
)

// Evaluator decides whether a user may purchase or download gated targets.
// External lookups are bounded by a timeout and fail closed: if the provider
// cannot answer in time, access is denied rather than the checkout hanging.
type Evaluator struct {
	db          *gorm.DB
	redisClient *redis.Client
	provider    MembershipProvider
	config      *config.Config
	log         *logrus.Logger
}

// NewEvaluator creates a new gating evaluator
func NewEvaluator(db *gorm.DB, redisClient *redis.Client, provider MembershipProvider, cfg *config.Config, log *logrus.Logger) *Evaluator {
	return &Evaluator{
		db:          db,
		redisClient: redisClient,
		provider:    provider,
		config:      cfg,
		log:         log,
	}
}

// CheckProduct evaluates the gating rule for a single product, if any
func (e *Evaluator) CheckProduct(ctx context.Context, productID uint, externalUserID *string) (*Decision, error) {
	rule, err := e.findRule(ctx, "product_id = ?", productID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, rule, externalUserID, productID)
}

// CheckCategory evaluates the gating rule for a single category, if any
func (e *Evaluator) CheckCategory(ctx context.Context, categoryID uint, externalUserID *string, productID uint) (*Decision, error) {
	rule, err := e.findRule(ctx, "category_id = ?", categoryID)
	if err != nil {
		return nil, err
	}
	return e.evaluate(ctx, rule, externalUserID, productID)
}

// CheckCheckout evaluates every item and every item's category. All blocked
// product IDs are aggregated and the first human-readable reason encountered
// is reported; any blocked item denies the whole checkout.
func (e *Evaluator) CheckCheckout(ctx context.Context, items []Item, externalUserID *string) (*Decision, error) {
	decision := &Decision{Allowed: true}

	for _, item := range items {
		productDecision, err := e.CheckProduct(ctx, item.ProductID, externalUserID)
		if err != nil {
			return nil, err
		}
		if !productDecision.Allowed {
			decision.merge(productDecision)
			continue
		}

		categoryDecision, err := e.CheckCategory(ctx, item.CategoryID, externalUserID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !categoryDecision.Allowed {
			decision.merge(categoryDecision)
		}
	}

	return decision, nil
}

func (d *Decision) merge(blocked *Decision) {
	d.Allowed = false
	if d.Reason == "" {
		d.Reason = blocked.Reason
	}
	d.BlockedItems = append(d.BlockedItems, blocked.BlockedItems...)
}

func (e *Evaluator) findRule(ctx context.Context, query string, arg uint) (*Rule, error) {
	var rule Rule
	result := e.db.WithContext(ctx).Where(query, arg).First(&rule)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load gating rule: %w", result.Error)
	}
	return &rule, nil
}

// evaluate applies one rule. No rule means open access; a rule with no
// linked external identity means the user must link one first.
func (e *Evaluator) evaluate(ctx context.Context, rule *Rule, externalUserID *string, productID uint) (*Decision, error) {
	if rule == nil {
		return &Decision{Allowed: true}, nil
	}

	if externalUserID == nil || *externalUserID == "" {
		return &Decision{
			Allowed:      false,
			Reason:       "this item requires a linked Discord account",
			BlockedItems: []uint{productID},
		}, nil
	}

	member, err := e.checkMembership(ctx, *externalUserID, rule.GuildID)
	if err != nil {
		// Fail closed: a provider we cannot reach is treated as a denial.
		e.log.WithError(err).WithFields(logrus.Fields{
			"guild_id":   rule.GuildID,
			"product_id": productID,
		}).Warn("Membership lookup failed, denying access")
		return &Decision{
			Allowed:      false,
			Reason:       "membership could not be verified, please try again",
			BlockedItems: []uint{productID},
		}, nil
	}
	if !member {
		return &Decision{
			Allowed:      false,
			Reason:       "this item requires membership of the store's Discord server",
			BlockedItems: []uint{productID},
		}, nil
	}

	if rule.RoleID != "" {
		hasRole, err := e.withTimeout(ctx, func(ctx context.Context) (bool, error) {
			return e.provider.HasGuildRole(ctx, *externalUserID, rule.GuildID, rule.RoleID)
		})
		if err != nil {
			e.log.WithError(err).WithFields(logrus.Fields{
				"guild_id": rule.GuildID,
				"role_id":  rule.RoleID,
			}).Warn("Role lookup failed, denying access")
			return &Decision{
				Allowed:      false,
				Reason:       "role could not be verified, please try again",
				BlockedItems: []uint{productID},
			}, nil
		}
		if !hasRole {
			return &Decision{
				Allowed:      false,
				Reason:       "this item requires a specific role in the store's Discord server",
				BlockedItems: []uint{productID},
			}, nil
		}
	}

	return &Decision{Allowed: true}, nil
}

// checkMembership consults the redis cache before the provider. Only
// confirmed memberships are cached; denials always re-check.
func (e *Evaluator) checkMembership(ctx context.Context, externalUserID, guildID string) (bool, error) {
	cacheKey := fmt.Sprintf("gating:member:%s:%s", guildID, externalUserID)

	if e.redisClient != nil {
		if val, err := e.redisClient.Get(ctx, cacheKey).Result(); err == nil && val == "1" {
			return true, nil
		}
	}

	member, err := e.withTimeout(ctx, func(ctx context.Context) (bool, error) {
		return e.provider.IsGuildMember(ctx, externalUserID, guildID)
	})
	if err != nil {
		return false, err
	}

	if member && e.redisClient != nil {
		e.redisClient.Set(ctx, cacheKey, "1", e.config.Gating.MembershipTTL)
	}

	return member, nil
}

// withTimeout bounds a provider call and retries once on transient failures
// only. Authoritative negative answers are never retried.
func (e *Evaluator) withTimeout(ctx context.Context, lookup func(context.Context) (bool, error)) (bool, error) {
	attempt := func() (bool, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, e.config.Gating.LookupTimeout)
		defer cancel()
		return lookup(lookupCtx)
	}

	result, err := attempt()
	if err == nil {
		return result, nil
	}

	var transient *TransientError
	if e.config.Gating.RetryTransient && (errors.As(err, &transient) || errors.Is(err, context.DeadlineExceeded)) {
		time.Sleep(100 * time.Millisecond)
		return attempt()
	}

	return false, err
}
