package app

import (
	"fmt"
	"time"

	"bitwise74/demo-app/db"
	"bitwise74/demo-app/internal"
	"bitwise74/demo-app/internal/service"
	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/security"
	"bitwise74/demo-app/pkg/session"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewDeps builds the handler dependencies from the loaded configuration
func NewDeps() (*internal.Deps, error) {
	users, err := newUserStore()
	if err != nil {
		return nil, err
	}

	d := &internal.Deps{
		Users:  users,
		Hasher: security.NewHasher(),
		Mailer: service.NewSMTPMailer(service.MailerOptions{
			Host:        viper.GetString("mail.host"),
			Port:        viper.GetInt("mail.port"),
			Password:    viper.GetString("mail.password"),
			FromAddress: viper.GetString("mail.sender_address"),
			FromName:    viper.GetString("mail.sender_name"),
			BaseURL:     viper.GetString("host.base_url"),
			MaxRetries:  uint64(viper.GetInt("mail.max_retries")),
		}),
		Sessions: session.NewManager(session.Options{
			Secret: viper.GetString("security.session_secret"),
			MaxAge: time.Second * time.Duration(viper.GetInt("security.session_max_age")),
			Domain: viper.GetString("host.domain"),
			Secure: viper.GetBool("host.ssl.enabled"),
		}),
		Resends: service.NewResendLimiter(time.Second * time.Duration(viper.GetInt("security.resend_cooldown"))),
	}

	return d, nil
}

func newUserStore() (store.UserStore, error) {
	driver := viper.GetString("db.driver")
	if driver == "memory" {
		zap.L().Warn("Using the in-memory user store, accounts are lost on restart")
		return store.NewMemoryStore(), nil
	}

	conn, err := db.New(driver, viper.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	return store.NewGormStore(conn), nil
}
