package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ironforge/gym-admin-backend/internal/database"
)

// RateLimitService throttles failed logins per email and per client IP
type RateLimitService struct {
	attempts LoginAttemptStore
	config   RateLimitConfig
	clock    Clock
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxEmailAttempts int           // Max failed logins per email
	MaxIPAttempts    int           // Max failed logins per IP
	Window           time.Duration // Time window for both limits
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxEmailAttempts: 5,
		MaxIPAttempts:    20,
		Window:           15 * time.Minute,
	}
}

// NewRateLimitConfig derives limits from the login settings. An IP may fail
// four times as often as a single email.
func NewRateLimitConfig(maxAttempts, windowMinutes int) RateLimitConfig {
	config := DefaultRateLimitConfig()
	if maxAttempts > 0 {
		config.MaxEmailAttempts = maxAttempts
		config.MaxIPAttempts = maxAttempts * 4
	}
	if windowMinutes > 0 {
		config.Window = time.Duration(windowMinutes) * time.Minute
	}
	return config
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(attempts LoginAttemptStore, config RateLimitConfig, clock Clock) *RateLimitService {
	return &RateLimitService{
		attempts: attempts,
		config:   config,
		clock:    clock,
	}
}

// CheckLogin returns a RateLimitError when the email or IP has too many recent failures
func (s *RateLimitService) CheckLogin(ctx context.Context, email, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	since := s.clock.Current().Add(-s.config.Window)

	// Check email-based rate limit
	if email != "" {
		count, lastAttempt, err := s.attempts.CountSince(ctx, email, database.IdentifierEmail, since)
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}

		if count >= s.config.MaxEmailAttempts {
			retryAfter := lastAttempt.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       database.IdentifierEmail,
			}
		}
	}

	// Check IP-based rate limit
	if ip != "" {
		count, lastAttempt, err := s.attempts.CountSince(ctx, ip, database.IdentifierIP, since)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= s.config.MaxIPAttempts {
			retryAfter := lastAttempt.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed logins from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       database.IdentifierIP,
			}
		}
	}

	return nil
}

// RecordFailure counts a failed login against the email and the IP
func (s *RateLimitService) RecordFailure(ctx context.Context, email, ip string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if email != "" {
		if err := s.attempts.Record(ctx, email, database.IdentifierEmail); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
	}

	if ip != "" {
		if err := s.attempts.Record(ctx, ip, database.IdentifierIP); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}

	return nil
}

// Reset forgets the failures of an email after a successful login
func (s *RateLimitService) Reset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return s.attempts.Clear(ctx, email, database.IdentifierEmail)
}

// CleanupExpired removes attempts older than the window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.clock.Current().Add(-s.config.Window)
	deleted, err := s.attempts.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}
	return deleted, nil
}
