package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"auth-service/internal/domain"
)

var authOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_operations_total", Help: "Register/login/logout attempts by outcome"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(authOutcomes) }

func observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = outcomeOf(err)
	}
	authOutcomes.WithLabelValues(op, outcome).Inc()
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrKeyUnavailable):
		return "key_unavailable"
	case errors.Is(err, domain.ErrHashing):
		return "hashing"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	default:
		return "error"
	}
}
