package service

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"bitwise74/demo-app/internal/store"
	"bitwise74/demo-app/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func testHasher() *security.Hasher {
	return &security.Hasher{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func testMailer(send func(m ...*gomail.Message) error) *SMTPMailer {
	s := NewSMTPMailer(MailerOptions{
		Host:        "smtp.example.com",
		Port:        587,
		Password:    "secret",
		FromAddress: "noreply@example.com",
		FromName:    "Demo App",
		BaseURL:     "http://localhost:8080",
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	})
	s.send = send

	return s
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) CheckRecipient(email string) error {
	return nil
}

func (f *fakeMailer) SendVerificationMail(ctx context.Context, username, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, email)
	return nil
}

func TestVerificationLink(t *testing.T) {
	assert.Equal(t,
		"http://localhost:8080/email-verification?email=a%40x.com",
		VerificationLink("http://localhost:8080/", "a@x.com"),
	)

	assert.Equal(t,
		"https://demo.app/email-verification?email=a%2Bb%40x.com",
		VerificationLink("https://demo.app", "a+b@x.com"),
	)
}

func TestSendVerificationMail_Message(t *testing.T) {
	var got []*gomail.Message

	m := testMailer(func(msgs ...*gomail.Message) error {
		got = append(got, msgs...)
		return nil
	})

	require.NoError(t, m.SendVerificationMail(context.Background(), "alice", "a@x.com"))
	require.Len(t, got, 1)

	assert.Equal(t, []string{"Confirm your email address"}, got[0].GetHeader("Subject"))
	assert.Equal(t, []string{"a@x.com"}, got[0].GetHeader("To"))
	assert.Contains(t, got[0].GetHeader("From")[0], "noreply@example.com")
}

func TestRenderBodies(t *testing.T) {
	m := testMailer(nil)

	text, html, err := m.renderBodies("<alice>", "a@x.com")
	require.NoError(t, err)

	link := "http://localhost:8080/email-verification?email=a%40x.com"

	assert.Contains(t, text, "Hello <alice>,")
	assert.Contains(t, text, link)

	assert.Contains(t, html, "Hello &lt;alice&gt;,")
	assert.Contains(t, html, `href="`+link+`"`)
}

func TestSendVerificationMail_RejectsSender(t *testing.T) {
	m := testMailer(func(...*gomail.Message) error {
		t.Fatal("nothing should be sent")
		return nil
	})

	err := m.SendVerificationMail(context.Background(), "me", "NoReply@example.com")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestCheckRecipient(t *testing.T) {
	m := testMailer(nil)

	assert.ErrorIs(t, m.CheckRecipient(""), ErrInvalidRecipient)
	assert.ErrorIs(t, m.CheckRecipient(" noreply@EXAMPLE.com"), ErrInvalidRecipient)
	assert.NoError(t, m.CheckRecipient("a@x.com"))
}

// stallingSMTP accepts connections and never sends the greeting
func stallingSMTP(t *testing.T) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}

			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		ln.Close()

		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestSendVerificationMail_StalledServerHonoursDeadline(t *testing.T) {
	host, port := stallingSMTP(t)

	m := NewSMTPMailer(MailerOptions{
		Host:        host,
		Port:        port,
		Password:    "secret",
		FromAddress: "noreply@example.com",
		BaseURL:     "http://localhost:8080",
		MaxRetries:  2,
		RetryDelay:  time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := m.SendVerificationMail(ctx, "alice", "a@x.com")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSendVerificationMail_RetriesTransientErrors(t *testing.T) {
	calls := 0
	m := testMailer(func(...*gomail.Message) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, m.SendVerificationMail(context.Background(), "alice", "a@x.com"))
	assert.Equal(t, 3, calls)
}

func TestSendVerificationMail_GivesUp(t *testing.T) {
	calls := 0
	m := testMailer(func(...*gomail.Message) error {
		calls++
		return errors.New("connection refused")
	})

	err := m.SendVerificationMail(context.Background(), "alice", "a@x.com")
	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 3, calls)
}

func TestSendVerificationMail_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	m := testMailer(func(...*gomail.Message) error {
		calls++
		return &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	})

	err := m.SendVerificationMail(context.Background(), "alice", "a@x.com")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	h := testHasher()
	users := store.NewMemoryStore()

	hash, err := h.Hash("p1")
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, store.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: hash})
	require.NoError(t, err)

	_, err = Authenticate(ctx, users, h, "a@x.com", "p1")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = Authenticate(ctx, users, h, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Authenticate(ctx, users, h, "nobody@x.com", "p1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, users.VerifyUser(ctx, "a@x.com"))

	u, err := Authenticate(ctx, users, h, "A@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	// An unverified account with the wrong password must not reveal its state
	_, err = users.CreateUser(ctx, store.NewUser{Username: "bob", Email: "b@x.com", PasswordHash: hash})
	require.NoError(t, err)

	_, err = Authenticate(ctx, users, h, "b@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResendLimiter(t *testing.T) {
	l := NewResendLimiter(time.Hour)
	t.Cleanup(func() { l.Close() })

	assert.True(t, l.Allow("a@x.com"))
	assert.False(t, l.Allow("A@x.com "))
	assert.True(t, l.Allow("b@x.com"))
}

func TestResendLimiter_NoCooldown(t *testing.T) {
	l := NewResendLimiter(0)
	t.Cleanup(func() { l.Close() })

	assert.True(t, l.Allow("a@x.com"))
	assert.True(t, l.Allow("a@x.com"))
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemoryStore()
	mailer := &fakeMailer{}
	l := NewResendLimiter(time.Hour)
	t.Cleanup(func() { l.Close() })

	_, err := users.CreateUser(ctx, store.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, store.NewUser{Username: "bob", Email: "b@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NoError(t, users.VerifyUser(ctx, "b@x.com"))

	require.NoError(t, ResendVerification(ctx, users, mailer, l, "a@x.com"))
	require.NoError(t, ResendVerification(ctx, users, mailer, l, "b@x.com"))
	require.NoError(t, ResendVerification(ctx, users, mailer, l, "ghost@x.com"))

	assert.Equal(t, []string{"a@x.com"}, mailer.sent)

	err = ResendVerification(ctx, users, mailer, l, "a@x.com")
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Len(t, mailer.sent, 1)
}

func TestResendVerification_FailedSendEndsCooldown(t *testing.T) {
	ctx := context.Background()
	users := store.NewMemoryStore()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	l := NewResendLimiter(time.Hour)
	t.Cleanup(func() { l.Close() })

	_, err := users.CreateUser(ctx, store.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	err = ResendVerification(ctx, users, mailer, l, "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrResendTooSoon)

	mailer.err = nil
	require.NoError(t, ResendVerification(ctx, users, mailer, l, "A@x.com"))
	assert.Equal(t, []string{"a@x.com"}, mailer.sent)

	err = ResendVerification(ctx, users, mailer, l, "a@x.com")
	assert.ErrorIs(t, err, ErrResendTooSoon)
}

func TestResendLimiter_Forget(t *testing.T) {
	l := NewResendLimiter(time.Hour)
	t.Cleanup(func() { l.Close() })

	require.True(t, l.Allow("a@x.com"))
	l.Forget("A@X.com")
	assert.True(t, l.Allow("a@x.com"))
}
