package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymlog-session||"
	tokensSetKey     = "gymlog-sessions"
	tokenBytes       = 36
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps login sessions in redis: a token key holding the user id
// (expiring after ttl), plus a set of all issued tokens used for cleanup.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (as *Service) Login(ctx context.Context, userID uuid.UUID) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := as.RandStringFunc(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKey(token), userID.String(), as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("add session token: %w", err)
	}

	return token, nil
}

// Logout drops the session. Returns false if the token was not (or no longer) valid.
func (as *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, fmt.Errorf("remove session token: %w", err)
	}

	return deleted > 0, nil
}

// UserForToken resolves the user owning the session token.
func (as *Service) UserForToken(ctx context.Context, token string) (_ uuid.UUID, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.userForToken")
	defer func() {
		if errors.Is(err, ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := as.redisClient.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrSessionNotFound
		}
		return uuid.Nil, fmt.Errorf("get session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("session user id [%s]: %w", val, err)
	}
	return userID, nil
}

// ScanAndClean drops tokens from the sessions set whose session key already expired.
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	cleaned := 0
	for _, token := range sessionTokens {
		exists, err := as.redisClient.Exists(ctx, sessionKey(token)).Result()
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}
		if exists > 0 {
			continue
		}

		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean token: %s", err)
			continue
		}
		cleaned++
	}
	log.Debugf("auth service, scan and clean done, removed %d expired sessions", cleaned)
}

// RunCleanup calls ScanAndClean every interval until ctx is done.
func (as *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			as.ScanAndClean(ctx)
		}
	}
}
