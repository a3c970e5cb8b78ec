package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bitwise74/demo-app/internal/store"

	"github.com/jellydator/ttlcache/v2"
)

var ErrResendTooSoon = errors.New("verification email was resent recently")

// ResendLimiter allows one resend per email every cooldown
type ResendLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	recent   *ttlcache.Cache
}

func NewResendLimiter(cooldown time.Duration) *ResendLimiter {
	recent := ttlcache.NewCache()
	recent.SkipTTLExtensionOnHit(true)

	return &ResendLimiter{
		cooldown: cooldown,
		recent:   recent,
	}
}

// Allow reports whether a mail can be sent to email now and starts the
// cooldown if it can
func (r *ResendLimiter) Allow(email string) bool {
	if r.cooldown <= 0 {
		return true
	}

	email = store.NormaliseEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.recent.Get(email); err == nil {
		return false
	}

	r.recent.SetWithTTL(email, struct{}{}, r.cooldown)
	return true
}

// Forget ends the cooldown for email, used when the mail it was started
// for never went out
func (r *ResendLimiter) Forget(email string) {
	if r.cooldown <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.recent.Remove(store.NormaliseEmail(email))
}

func (r *ResendLimiter) Close() error {
	return r.recent.Close()
}

// ResendVerification sends a fresh link to an unverified account. Unknown
// and already verified emails return nil without sending anything so
// callers can't tell them apart.
func ResendVerification(ctx context.Context, users store.UserStore, m Mailer, l *ResendLimiter, email string) error {
	if !l.Allow(email) {
		return ErrResendTooSoon
	}

	user, err := users.FindUser(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil
		}

		return err
	}

	if user.Verified {
		return nil
	}

	if err := m.SendVerificationMail(ctx, user.Username, user.Email); err != nil {
		l.Forget(email)
		return err
	}

	return nil
}
