package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumenhq/paysvc/internal/domain/model"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestSubscription_IsSubscribed(t *testing.T) {
	tests := []struct {
		status model.PlanStatus
		want   bool
	}{
		{model.PlanStatusActive, true},
		{model.PlanStatusTrialing, true},
		{model.PlanStatusPastDue, false},
		{model.PlanStatusCanceled, false},
		{model.PlanStatusUnpaid, false},
		{model.PlanStatusIncomplete, false},
		{model.PlanStatusIncompleteExpired, false},
		{model.PlanStatusPaused, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sub := &model.Subscription{PlanStatus: tt.status}
			assert.Equal(t, tt.want, sub.IsSubscribed())
		})
	}
}

func TestSubscription_IsOnTrial(t *testing.T) {
	t.Run("trialing with future trial end", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus: model.PlanStatusTrialing,
			TrialEnd:   timePtr(time.Now().Add(48 * time.Hour)),
		}
		assert.True(t, sub.IsOnTrial())
	})

	t.Run("trialing but trial end passed", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus: model.PlanStatusTrialing,
			TrialEnd:   timePtr(time.Now().Add(-time.Hour)),
		}
		assert.False(t, sub.IsOnTrial())
	})

	t.Run("active subscription is not on trial", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus: model.PlanStatusActive,
			TrialEnd:   timePtr(time.Now().Add(48 * time.Hour)),
		}
		assert.False(t, sub.IsOnTrial())
	})

	t.Run("no trial end", func(t *testing.T) {
		sub := &model.Subscription{PlanStatus: model.PlanStatusTrialing}
		assert.False(t, sub.IsOnTrial())
	})
}

func TestSubscription_HasPlan(t *testing.T) {
	t.Run("subscribed with matching plan", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus: model.PlanStatusActive,
			PlanName:   strPtr("pro"),
		}
		assert.True(t, sub.HasPlan("pro"))
		assert.False(t, sub.HasPlan("basic"))
	})

	t.Run("canceled subscription holds no plan", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus: model.PlanStatusCanceled,
			PlanName:   strPtr("pro"),
		}
		assert.False(t, sub.HasPlan("pro"))
	})

	t.Run("no plan name", func(t *testing.T) {
		sub := &model.Subscription{PlanStatus: model.PlanStatusActive}
		assert.False(t, sub.HasPlan("pro"))
	})
}

func TestSubscription_HasAnyPlan(t *testing.T) {
	sub := &model.Subscription{
		PlanStatus: model.PlanStatusTrialing,
		PlanName:   strPtr("team"),
	}

	assert.True(t, sub.HasAnyPlan("pro", "team"))
	assert.False(t, sub.HasAnyPlan("pro", "enterprise"))
	assert.False(t, sub.HasAnyPlan())
}

func TestSubscription_IsCurrent(t *testing.T) {
	t.Run("active within period", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus:       model.PlanStatusActive,
			CurrentPeriodEnd: timePtr(time.Now().Add(24 * time.Hour)),
		}
		assert.True(t, sub.IsCurrent())
	})

	t.Run("active but period ended", func(t *testing.T) {
		sub := &model.Subscription{
			PlanStatus:       model.PlanStatusActive,
			CurrentPeriodEnd: timePtr(time.Now().Add(-time.Minute)),
		}
		assert.False(t, sub.IsCurrent())
	})

	t.Run("no period end", func(t *testing.T) {
		sub := &model.Subscription{PlanStatus: model.PlanStatusActive}
		assert.False(t, sub.IsCurrent())
	})
}

func TestSubscription_DaysUntilRenewal(t *testing.T) {
	t.Run("future period end", func(t *testing.T) {
		sub := &model.Subscription{
			CurrentPeriodEnd: timePtr(time.Now().Add(10*24*time.Hour + time.Hour)),
		}
		assert.Equal(t, 10, sub.DaysUntilRenewal())
	})

	t.Run("period already ended", func(t *testing.T) {
		sub := &model.Subscription{
			CurrentPeriodEnd: timePtr(time.Now().Add(-48 * time.Hour)),
		}
		assert.Equal(t, 0, sub.DaysUntilRenewal())
	})

	t.Run("no period end", func(t *testing.T) {
		sub := &model.Subscription{}
		assert.Equal(t, -1, sub.DaysUntilRenewal())
	})
}
