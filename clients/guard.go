package clients

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Policy bounds every call made through Guarded.
type Policy struct {
	Timeout         time.Duration // per attempt
	MaxRetries      int
	InitialInterval time.Duration
	RatePerSecond   float64 // <= 0 disables rate limiting
}

// Guarded wraps a Completer with a per-attempt timeout, a rate limit and
// exponential-backoff retries.
type Guarded struct {
	next    Completer
	policy  Policy
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

func NewGuarded(next Completer, p Policy, log logrus.FieldLogger) *Guarded {
	limit := rate.Inf
	if p.RatePerSecond > 0 {
		limit = rate.Limit(p.RatePerSecond)
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = time.Second
	}
	return &Guarded{next: next, policy: p, limiter: rate.NewLimiter(limit, 1), log: log}
}

func (g *Guarded) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	var out Completion
	attempt := 0
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		actx, cancel := g.attemptContext(ctx)
		defer cancel()
		c, err := g.next.Complete(actx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.policy.InitialInterval
	var bo backoff.BackOff = b
	if g.policy.MaxRetries >= 0 {
		bo = backoff.WithMaxRetries(b, uint64(g.policy.MaxRetries))
	}
	err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		g.log.WithError(err).WithField("attempt", attempt).WithField("wait", wait).Warn("completion failed, retrying")
	})
	if err != nil {
		return Completion{}, err
	}
	return out, nil
}

func (g *Guarded) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.policy.Timeout)
}

// retryable treats 4xx replies other than 429 as final; everything else (timeouts,
// connection errors, 5xx) is worth another attempt.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var oe *openai.APIError
	if errors.As(err, &oe) && oe.HTTPStatusCode > 0 {
		return temporaryStatus(oe.HTTPStatusCode)
	}
	var ae *anthropic.Error
	if errors.As(err, &ae) && ae.StatusCode > 0 {
		return temporaryStatus(ae.StatusCode)
	}
	return true
}
