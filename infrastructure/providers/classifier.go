// Package providers implements the vendor adapters behind the failover
// router. Each adapter owns one SDK, paces its outbound calls, and maps
// every vendor failure onto the normalized provider error taxonomy.
package providers

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/swanstudios/plangate/internal/domain"
)

// classifier maps transport and HTTP failures onto the normalized
// error codes for one provider.
type classifier struct {
	provider string
}

// classifyHTTP builds a ProviderError from an HTTP status code.
func (c classifier) classifyHTTP(statusCode int, message string) *domain.ProviderError {
	if message == "" {
		message = "provider request failed"
	}

	switch {
	case statusCode == 401 || statusCode == 403:
		return domain.NewProviderError(c.provider, domain.ErrAuth, statusCode,
			c.provider+" authentication failed")
	case statusCode == 408:
		return domain.NewProviderError(c.provider, domain.ErrTimeout, statusCode,
			c.provider+" request timed out")
	case statusCode == 429:
		return domain.NewProviderError(c.provider, domain.ErrRateLimit, statusCode,
			c.provider+" rate limit exceeded")
	case statusCode >= 500:
		return domain.NewProviderError(c.provider, domain.ErrUnavailable, statusCode, message)
	case looksLikeContentPolicy(message):
		return domain.NewProviderError(c.provider, domain.ErrContentFilter, statusCode,
			"request blocked by provider safety filters")
	default:
		return domain.NewProviderError(c.provider, domain.ErrUnknown, statusCode, message)
	}
}

// classifyTransport builds a ProviderError for failures that never
// produced an HTTP status: context expiry, cancellation, and network
// errors.
func (c classifier) classifyTransport(err error) *domain.ProviderError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewProviderError(c.provider, domain.ErrTimeout, 0,
			c.provider+" request timed out")
	case errors.Is(err, context.Canceled):
		return domain.NewProviderError(c.provider, domain.ErrTimeout, 0,
			c.provider+" request canceled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.NewProviderError(c.provider, domain.ErrTimeout, 0,
				c.provider+" request timed out")
		}
		return domain.NewProviderError(c.provider, domain.ErrNetwork, 0,
			"network error reaching "+c.provider)
	}

	return domain.NewProviderError(c.provider, domain.ErrUnknown, 0, "provider request failed")
}

// invalidResponse builds the error for a structurally empty or
// unusable provider response.
func (c classifier) invalidResponse(detail string) *domain.ProviderError {
	return domain.NewProviderError(c.provider, domain.ErrInvalidResponse, 0, detail)
}

func looksLikeContentPolicy(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "safety") ||
		strings.Contains(lower, "content policy") ||
		strings.Contains(lower, "content_policy") ||
		strings.Contains(lower, "blocked")
}
