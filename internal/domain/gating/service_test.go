// internal/domain/gating/service_test.go
package gating

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-engine/internal/config"
)

// fakeProvider scripts membership answers per call
type fakeProvider struct {
	memberResults []result
	roleResults   []result
	memberCalls   int
	roleCalls     int
}

type result struct {
	ok  bool
	err error
}

func (f *fakeProvider) IsGuildMember(ctx context.Context, externalUserID, guildID string) (bool, error) {
	r := f.memberResults[f.memberCalls]
	f.memberCalls++
	return r.ok, r.err
}

func (f *fakeProvider) HasGuildRole(ctx context.Context, externalUserID, guildID, roleID string) (bool, error) {
	r := f.roleResults[f.roleCalls]
	f.roleCalls++
	return r.ok, r.err
}

func newTestEvaluator(provider MembershipProvider, retry bool) *Evaluator {
	cfg := &config.Config{
		Gating: config.GatingConfig{
			LookupTimeout:  time.Second,
			MembershipTTL:  time.Minute,
			RetryTransient: retry,
		},
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewEvaluator(nil, nil, provider, cfg, log)
}

func strptr(s string) *string { return &s }

func TestEvaluateNoRuleIsOpen(t *testing.T) {
	e := newTestEvaluator(&fakeProvider{}, false)

	decision, err := e.evaluate(context.Background(), nil, nil, 1)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluateRequiresLinkedAccount(t *testing.T) {
	e := newTestEvaluator(&fakeProvider{}, false)
	rule := &Rule{GuildID: "guild-1"}

	for _, externalUserID := range []*string{nil, strptr("")} {
		decision, err := e.evaluate(context.Background(), rule, externalUserID, 7)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "linked Discord account")
		assert.Equal(t, []uint{7}, decision.BlockedItems)
	}
}

func TestEvaluateMemberAllowed(t *testing.T) {
	provider := &fakeProvider{memberResults: []result{{ok: true}}}
	e := newTestEvaluator(provider, false)

	decision, err := e.evaluate(context.Background(), &Rule{GuildID: "guild-1"}, strptr("discord-123"), 7)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluateNonMemberDenied(t *testing.T) {
	provider := &fakeProvider{memberResults: []result{{ok: false}}}
	e := newTestEvaluator(provider, false)

	decision, err := e.evaluate(context.Background(), &Rule{GuildID: "guild-1"}, strptr("discord-123"), 7)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "membership")
	assert.Equal(t, []uint{7}, decision.BlockedItems)
}

func TestEvaluateRoleRequirement(t *testing.T) {
	rule := &Rule{GuildID: "guild-1", RoleID: "role-premium"}

	provider := &fakeProvider{
		memberResults: []result{{ok: true}},
		roleResults:   []result{{ok: false}},
	}
	e := newTestEvaluator(provider, false)

	decision, err := e.evaluate(context.Background(), rule, strptr("discord-123"), 7)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "role")

	provider = &fakeProvider{
		memberResults: []result{{ok: true}},
		roleResults:   []result{{ok: true}},
	}
	e = newTestEvaluator(provider, false)

	decision, err = e.evaluate(context.Background(), rule, strptr("discord-123"), 7)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluateFailsClosedOnProviderError(t *testing.T) {
	provider := &fakeProvider{memberResults: []result{{err: errors.New("discord is down")}}}
	e := newTestEvaluator(provider, false)

	decision, err := e.evaluate(context.Background(), &Rule{GuildID: "guild-1"}, strptr("discord-123"), 7)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, []uint{7}, decision.BlockedItems)
}

func TestWithTimeoutRetriesTransientOnce(t *testing.T) {
	provider := &fakeProvider{memberResults: []result{
		{err: &TransientError{Err: errors.New("rate limited")}},
		{ok: true},
	}}
	e := newTestEvaluator(provider, true)

	member, err := e.checkMembership(context.Background(), "discord-123", "guild-1")
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 2, provider.memberCalls)
}

func TestWithTimeoutNoRetryWhenDisabled(t *testing.T) {
	provider := &fakeProvider{memberResults: []result{
		{err: &TransientError{Err: errors.New("rate limited")}},
	}}
	e := newTestEvaluator(provider, false)

	_, err := e.checkMembership(context.Background(), "discord-123", "guild-1")
	require.Error(t, err)
	assert.Equal(t, 1, provider.memberCalls)
}

func TestWithTimeoutNeverRetriesAuthoritativeAnswers(t *testing.T) {
	// A definite "not a member" is not transient and must not be retried.
	provider := &fakeProvider{memberResults: []result{{ok: false}}}
	e := newTestEvaluator(provider, true)

	member, err := e.checkMembership(context.Background(), "discord-123", "guild-1")
	require.NoError(t, err)
	assert.False(t, member)
	assert.Equal(t, 1, provider.memberCalls)
}

func TestDecisionMergeAggregatesBlockedItems(t *testing.T) {
	decision := &Decision{Allowed: true}
	decision.merge(&Decision{Reason: "first reason", BlockedItems: []uint{1}})
	decision.merge(&Decision{Reason: "second reason", BlockedItems: []uint{2, 3}})

	assert.False(t, decision.Allowed)
	assert.Equal(t, "first reason", decision.Reason)
	assert.Equal(t, []uint{1, 2, 3}, decision.BlockedItems)
}
