// Package metrics содержит счётчики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adpilot_ad_generations_total",
		Help: "Total ad generation requests by outcome.",
	}, []string{"outcome"})

	ImageGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adpilot_image_generations_total",
		Help: "Total image generation requests by outcome.",
	}, []string{"outcome"})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adpilot_cache_requests_total",
		Help: "AI response cache lookups by cache name and result.",
	}, []string{"cache", "result"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adpilot_webhook_events_total",
		Help: "Payment webhook events by type and result.",
	}, []string{"type", "result"})

	CreditsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adpilot_credits_spent_total",
		Help: "Total credits deducted from user balances.",
	})

	LoginLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adpilot_login_lockouts_total",
		Help: "Login attempts rejected by the lockout guard.",
	})
)
