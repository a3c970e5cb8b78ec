// Package internal holds the dependencies shared by every handler
package internal

import (
	"errors"

	"bitwise74/demo-app/internal/service"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/security"
	"bitwise74/demo-app/pkg/session"
)

type Deps struct {
	Users    store.UserStore
	Hasher   *security.Hasher
	Mailer   service.Mailer
	Sessions *session.Manager
	Resends  *service.ResendLimiter
}

// Close stops the background expiry of the session and resend caches
func (d *Deps) Close() error {
	var errs []error

	if d.Sessions != nil {
		errs = append(errs, d.Sessions.Close())
	}

	if d.Resends != nil {
		errs = append(errs, d.Resends.Close())
	}

	return errors.Join(errs...)
}
