package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Yuki-bach/ditationable/internal/ratelimit"
	"github.com/Yuki-bach/ditationable/internal/transcriber"
)

// RateLimitPolicy is the admission policy applied to the transcription
// endpoint, keyed by originating address.
type RateLimitPolicy struct {
	MaxRequests int
	Window      time.Duration
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Service   transcriber.Service
	Limiter   *ratelimit.Store
	Logger    *logrus.Logger
	Validator *validator.Validate
	RateLimit RateLimitPolicy
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(service transcriber.Service, limiter *ratelimit.Store, logger *logrus.Logger, policy RateLimitPolicy) *ApplicationHandler {
	return &ApplicationHandler{
		Service:   service,
		Limiter:   limiter,
		Logger:    logger,
		Validator: validator.New(),
		RateLimit: policy,
	}
}
