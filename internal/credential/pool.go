package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/anshaggr/foliochat/internal/provider"
)

// ErrNoCredential is returned when no usable credential became available
// within the wait timeout. It is distinct from upstream API errors so
// callers can tell "we never got to call" from "the call failed".
var ErrNoCredential = errors.New("no API credential available")

// Limits bounds per-credential usage and the retry behaviour of the pool.
type Limits struct {
	RequestsPerMinute int
	RequestsPerDay    int
	Cooldown          time.Duration // applied after a 429
	WaitTimeout       time.Duration // max time to wait for a credential
	PollInterval      time.Duration
	MaxRetries        int
}

// DefaultLimits matches the free-tier quotas of the upstream API.
func DefaultLimits() Limits {
	return Limits{
		RequestsPerMinute: 15,
		RequestsPerDay:    1500,
		Cooldown:          time.Minute,
		WaitTimeout:       30 * time.Second,
		PollInterval:      time.Second,
		MaxRetries:        3,
	}
}

// Credential is one API key with its health and usage state. All fields are
// guarded by the owning pool's mutex.
type Credential struct {
	id     string
	secret string

	healthy        bool
	lastUsed       time.Time
	windowCount    int // requests in the current minute window
	totalRequests  int
	errorCount     int
	dailyCount     int
	lastDailyReset time.Time
	cooldownUntil  time.Time
}

// ID returns the credential's identifier (key_1, key_2, ...).
func (c *Credential) ID() string { return c.id }

// Stats is a point-in-time snapshot of one credential's counters.
type Stats struct {
	ID            string  `json:"id"`
	Healthy       bool    `json:"healthy"`
	Requests      int     `json:"requests"`
	Errors        int     `json:"errors"`
	DailyRequests int     `json:"daily_requests"`
	ErrorRate     float64 `json:"error_rate"`
}

// Pool holds interchangeable API credentials and picks a usable one per
// call. It is shared across sessions and safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	creds   []*Credential
	next    int
	factory provider.Factory
	limits  Limits
	now     func() time.Time
	logger  *slog.Logger
}

// NewPool creates a pool from the given secrets. Fails fast when no
// secrets are configured.
func NewPool(secrets []string, factory provider.Factory, limits Limits) (*Pool, error) {
	if len(secrets) == 0 {
		return nil, errors.New("no API credentials configured")
	}
	if limits.MaxRetries <= 0 {
		limits.MaxRetries = 3
	}
	if limits.PollInterval <= 0 {
		limits.PollInterval = time.Second
	}
	if limits.WaitTimeout <= 0 {
		limits.WaitTimeout = 30 * time.Second
	}

	p := &Pool{
		factory: factory,
		limits:  limits,
		now:     time.Now,
		logger:  slog.Default(),
	}
	start := p.now()
	for i, secret := range secrets {
		p.creds = append(p.creds, &Credential{
			id:             fmt.Sprintf("key_%d", i+1),
			secret:         secret,
			healthy:        true,
			lastDailyReset: start,
		})
	}
	return p, nil
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// HealthyCount returns the number of currently healthy credentials.
func (p *Pool) HealthyCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.creds {
		if c.healthy {
			n++
		}
	}
	return n
}

// Select picks a usable credential: healthy, under daily quota, not cooling
// down, and under the per-minute threshold. Round-robin among candidates.
// When no credential qualifies, falls back to the healthy credential with
// the oldest lastUsed. Returns nil only when every credential is unhealthy.
func (p *Pool) Select() *Credential {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectLocked()
}

func (p *Pool) selectLocked() *Credential {
	now := p.now()

	var available []*Credential
	for _, c := range p.creds {
		if now.Sub(c.lastDailyReset) >= 24*time.Hour {
			c.dailyCount = 0
			c.lastDailyReset = now
		}
		// The minute window is approximated: counts reset once the
		// credential has been idle for a full window.
		if !c.lastUsed.IsZero() && now.Sub(c.lastUsed) >= time.Minute {
			c.windowCount = 0
		}

		if !c.healthy {
			continue
		}
		if c.dailyCount >= p.limits.RequestsPerDay {
			continue
		}
		if c.cooldownUntil.After(now) {
			continue
		}
		if c.windowCount >= p.limits.RequestsPerMinute {
			continue
		}
		available = append(available, c)
	}

	if len(available) == 0 {
		// Fall back to the healthy credential closest to becoming usable.
		var oldest *Credential
		for _, c := range p.creds {
			if !c.healthy {
				continue
			}
			if oldest == nil || c.lastUsed.Before(oldest.lastUsed) {
				oldest = c
			}
		}
		return oldest
	}

	c := available[p.next%len(available)]
	p.next = (p.next + 1) % len(p.creds)
	return c
}

// acquire waits up to WaitTimeout for Select to yield a credential.
func (p *Pool) acquire(ctx context.Context) (*Credential, error) {
	deadline := p.now().Add(p.limits.WaitTimeout)
	for {
		if c := p.Select(); c != nil {
			return c, nil
		}
		if p.now().After(deadline) {
			return nil, fmt.Errorf("timed out after %s: %w", p.limits.WaitTimeout, ErrNoCredential)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.limits.PollInterval):
		}
	}
}

// record updates usage counters after a call and applies the error-rate
// quarantine rule.
func (p *Pool) record(c *Credential, callErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	c.lastUsed = now
	c.windowCount++
	c.totalRequests++
	c.dailyCount++

	if callErr == nil {
		return
	}
	c.errorCount++
	if c.totalRequests >= 10 && float64(c.errorCount)/float64(c.totalRequests) > 0.5 {
		c.healthy = false
		p.logger.Warn("credential quarantined for high error rate",
			"credential", c.id,
			"errors", c.errorCount,
			"requests", c.totalRequests,
		)
	}
}

// penalize applies status-specific handling: 429 starts a cooldown, 401/403
// disables the credential, 5xx and everything else is left to the generic
// error-rate rule.
func (p *Pool) penalize(c *Credential, callErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch status := provider.StatusOf(callErr); {
	case status == http.StatusTooManyRequests:
		c.cooldownUntil = p.now().Add(p.limits.Cooldown)
		p.logger.Info("credential rate limited, cooling down",
			"credential", c.id, "cooldown", p.limits.Cooldown)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.healthy = false
		p.logger.Error("credential disabled after auth failure", "credential", c.id)
	case status >= 500:
		p.logger.Warn("upstream server error", "credential", c.id, "status", status)
	}
}

// ExecuteWithRetry runs op with a selected credential, retrying on failure
// with a different credential when one is available. After MaxRetries
// failed attempts the last error is returned. A wait timeout surfaces as
// ErrNoCredential.
func ExecuteWithRetry[T any](ctx context.Context, p *Pool, op func(context.Context, provider.Provider) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < p.limits.MaxRetries; attempt++ {
		cred, err := p.acquire(ctx)
		if err != nil {
			return zero, err
		}

		result, opErr := op(ctx, p.factory(cred.secret))
		p.record(cred, opErr)
		if opErr == nil {
			return result, nil
		}

		lastErr = opErr
		p.penalize(cred, opErr)
		p.logger.Warn("API call failed", "credential", cred.id, "attempt", attempt+1, "error", opErr)
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", p.limits.MaxRetries, lastErr)
}

// Embed runs the embed operation through the pool's retry loop, making the
// pool itself usable wherever a provider.Provider is expected.
func (p *Pool) Embed(ctx context.Context, text string) ([]float32, error) {
	return ExecuteWithRetry(ctx, p, func(ctx context.Context, prov provider.Provider) ([]float32, error) {
		return prov.Embed(ctx, text)
	})
}

// Generate runs the generate operation through the pool's retry loop.
func (p *Pool) Generate(ctx context.Context, prompt string) (string, error) {
	return ExecuteWithRetry(ctx, p, func(ctx context.Context, prov provider.Provider) (string, error) {
		return prov.Generate(ctx, prompt)
	})
}

// Stats returns a snapshot of per-credential counters.
func (p *Pool) Stats() []Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Stats, len(p.creds))
	for i, c := range p.creds {
		rate := 0.0
		if c.totalRequests > 0 {
			rate = float64(c.errorCount) / float64(c.totalRequests)
		}
		out[i] = Stats{
			ID:            c.id,
			Healthy:       c.healthy,
			Requests:      c.totalRequests,
			Errors:        c.errorCount,
			DailyRequests: c.dailyCount,
			ErrorRate:     rate,
		}
	}
	return out
}

// RunHealthChecks probes unhealthy credentials every interval until ctx is
// cancelled. A credential whose probe call succeeds is restored with fresh
// counters; one whose secret is still rejected stays quarantined.
func (p *Pool) RunHealthChecks(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CheckUnhealthy(ctx)
		}
	}
}

// CheckUnhealthy probes each unhealthy credential with a trivial generation
// call and restores the ones that succeed.
func (p *Pool) CheckUnhealthy(ctx context.Context) {
	p.mu.Lock()
	var unhealthy []*Credential
	for _, c := range p.creds {
		if !c.healthy {
			unhealthy = append(unhealthy, c)
		}
	}
	p.mu.Unlock()

	for _, c := range unhealthy {
		probeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		_, err := p.factory(c.secret).Generate(probeCtx, "ping")
		cancel()

		if err != nil {
			p.logger.Debug("credential still unhealthy", "credential", c.id, "error", err)
			continue
		}

		p.mu.Lock()
		c.healthy = true
		c.errorCount = 0
		c.totalRequests = 0
		c.windowCount = 0
		c.cooldownUntil = time.Time{}
		p.mu.Unlock()
		p.logger.Info("credential restored after health check", "credential", c.id)
	}
}
