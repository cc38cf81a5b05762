// Package roster resolves which crisis responders are paged at each
// escalation scope. Scopes come from an on-call roster service when one
// is configured, with the static scope list from configuration as the
// fallback, so alert dispatch keeps working while the roster is down.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	axonetRedis "github.com/jaxron/axonet/middleware/redis"
	"github.com/jaxron/axonet/middleware/retry"
	"github.com/jaxron/axonet/middleware/singleflight"
	"github.com/jaxron/axonet/pkg/client"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"github.com/trygglabs/trygg/internal/redis"
	"github.com/trygglabs/trygg/internal/setup/config"
	"github.com/trygglabs/trygg/internal/setup/telemetry/logger"
	"go.uber.org/zap"
)

var (
	// ErrNoScopes is returned when neither the roster service nor the
	// static configuration has any responder scopes.
	ErrNoScopes = errors.New("no responder scopes configured")
	// ErrRosterFetch is returned when the roster service responds with a
	// non-success status.
	ErrRosterFetch = errors.New("roster service request failed")
)

// Scope is one responder tier of the paging ladder.
type Scope struct {
	Level    int      `json:"level"`
	Name     string   `json:"name"`
	Webhooks []string `json:"webhooks"`
}

// Service looks up responder scopes for alert broadcasts.
type Service struct {
	client *client.Client
	cfg    *config.Roster
	logger *zap.Logger
}

// New builds a roster service. With no roster URL configured the service
// runs purely on the static scopes. The Redis manager feeds the HTTP
// response cache; passing nil disables caching.
func New(
	cfg *config.CommonConfig, redisManager *redis.Manager, zapLogger *zap.Logger, requestTimeout time.Duration,
) (*Service, error) {
	s := &Service{
		cfg:    &cfg.Roster,
		logger: zapLogger.Named("roster"),
	}

	if cfg.Roster.URL == "" {
		return s, nil
	}

	// Build middleware chain - order matters!
	middlewares := []middleware.Middleware{
		circuitbreaker.New(
			cfg.CircuitBreaker.MaxRequests,
			time.Duration(cfg.CircuitBreaker.Interval)*time.Millisecond,
			time.Duration(cfg.CircuitBreaker.Timeout)*time.Millisecond,
		),
		retry.New(
			cfg.Retry.MaxRetries,
			time.Duration(cfg.Retry.Delay)*time.Millisecond,
			time.Duration(cfg.Retry.MaxDelay)*time.Millisecond,
		),
		singleflight.New(),
	}

	if redisManager != nil {
		redisClient, err := redisManager.GetClient(redis.CacheDBIndex)
		if err != nil {
			return nil, err
		}

		cacheTTL := time.Duration(cfg.Roster.CacheTTL) * time.Second
		if cacheTTL <= 0 {
			cacheTTL = 1 * time.Hour
		}

		middlewares = append(middlewares, axonetRedis.New(redisClient, cacheTTL))
	}

	s.client = client.NewClient(
		client.WithMarshalFunc(sonic.Marshal),
		client.WithUnmarshalFunc(sonic.Unmarshal),
		client.WithLogger(logger.New(zapLogger)),
		client.WithTimeout(requestTimeout),
		client.WithMiddleware(middlewares...),
	)

	return s, nil
}

// Scopes returns the paging ladder sorted by level. Remote failures fall
// back to the static configuration with a warning; an outage in the
// roster service must never stall alert dispatch.
func (s *Service) Scopes(ctx context.Context) []Scope {
	if s.client != nil {
		scopes, err := s.fetchScopes(ctx)

		switch {
		case err != nil:
			s.logger.Warn("Falling back to static roster after fetch failure", zap.Error(err))
		case len(scopes) == 0:
			s.logger.Warn("Roster service returned no scopes, using static roster")
		default:
			return scopes
		}
	}

	return s.staticScopes()
}

// ForLevel returns the responder pool for one escalation level. Levels
// are cumulative: paging supervisors also pages the on-duty pool, and
// levels past the widest scope clamp to it.
func (s *Service) ForLevel(ctx context.Context, level int) (Scope, error) {
	scopes := s.Scopes(ctx)
	if len(scopes) == 0 {
		return Scope{}, ErrNoScopes
	}

	if level < scopes[0].Level {
		level = scopes[0].Level
	}

	var (
		result Scope
		seen   = make(map[string]struct{})
	)

	for _, scope := range scopes {
		if scope.Level > level && result.Level != 0 {
			break
		}

		result.Level = scope.Level
		result.Name = scope.Name

		for _, webhook := range scope.Webhooks {
			if _, ok := seen[webhook]; ok {
				continue
			}

			seen[webhook] = struct{}{}
			result.Webhooks = append(result.Webhooks, webhook)
		}
	}

	return result, nil
}

// MaxLevel returns the widest configured scope level.
func (s *Service) MaxLevel(ctx context.Context) int {
	scopes := s.Scopes(ctx)
	if len(scopes) == 0 {
		return 0
	}

	return scopes[len(scopes)-1].Level
}

// fetchScopes pulls the ladder from the roster service. Responses are
// cached by the Redis middleware for the configured TTL.
func (s *Service) fetchScopes(ctx context.Context) ([]Scope, error) {
	req := s.client.NewRequest().
		Method(http.MethodGet).
		URL(s.cfg.URL + "/v1/scopes")

	if s.cfg.APIKey != "" {
		req = req.Query("api_key", s.cfg.APIKey)
	}

	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRosterFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var scopes []Scope
	if err := sonic.Unmarshal(body, &scopes); err != nil {
		return nil, err
	}

	sortScopes(scopes)

	return scopes, nil
}

// staticScopes converts the configured scope list.
func (s *Service) staticScopes() []Scope {
	scopes := make([]Scope, 0, len(s.cfg.Scopes))
	for _, scope := range s.cfg.Scopes {
		scopes = append(scopes, Scope{
			Level:    scope.Level,
			Name:     scope.Name,
			Webhooks: scope.Webhooks,
		})
	}

	sortScopes(scopes)

	return scopes
}

func sortScopes(scopes []Scope) {
	sort.Slice(scopes, func(i, j int) bool {
		return scopes[i].Level < scopes[j].Level
	})
}
