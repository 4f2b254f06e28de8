package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	jwtinfra "github.com/rdzcn/weight-tracker/internal/infrastructure/jwt"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/smtp"

	"github.com/rdzcn/weight-tracker/internal/domain"
	"github.com/rdzcn/weight-tracker/internal/pkg/id"
	pkgtoken "github.com/rdzcn/weight-tracker/internal/pkg/token"
	"github.com/rdzcn/weight-tracker/internal/pkg/validate"
)

type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Service is the auth engine: it issues and redeems magic-link tokens,
// mints session credentials, and resolves identities on every request.
type Service interface {
	RequestLink(ctx context.Context, req MagicLinkRequest) error
	RedeemLink(ctx context.Context, token string) (bearer string, user *domain.User, err error)
	Authenticate(ctx context.Context, bearer string) (*domain.Identity, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// UserStore is the minimal user persistence surface the engine needs.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// LinkStore persists magic-link tokens. Consume must be atomic: of two
// racing calls for the same token, exactly one may succeed.
type LinkStore interface {
	Put(ctx context.Context, t *domain.MagicLinkToken) error
	Get(ctx context.Context, token string) (*domain.MagicLinkToken, error)
	Consume(ctx context.Context, token string) error
}

// CredentialSigner mints and verifies self-contained session credentials.
type CredentialSigner interface {
	Sign(userID, email string) (string, error)
	Verify(tokenStr string) (*jwtinfra.Claims, error)
}

type ServiceDeps struct {
	Users          UserStore
	Links          LinkStore
	Mailer         smtp.Mailer
	Signer         CredentialSigner
	LinkTTL        time.Duration
	FrontendOrigin string
}

type service struct {
	users          UserStore
	links          LinkStore
	mailer         smtp.Mailer
	signer         CredentialSigner
	linkTTL        time.Duration
	frontendOrigin string
}

func NewService(d ServiceDeps) Service {
	return &service{
		users:          d.Users,
		links:          d.Links,
		mailer:         d.Mailer,
		signer:         d.Signer,
		linkTTL:        d.LinkTTL,
		frontendOrigin: d.FrontendOrigin,
	}
}

// RequestLink looks up or lazily creates the user, persists a fresh
// single-use token and dispatches the link. It never reports whether the
// email was already registered. Older unconsumed tokens for the same user
// stay valid; each request simply adds one more.
func (s *service) RequestLink(ctx context.Context, req MagicLinkRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		u = &domain.User{
			UserID:    id.New(),
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.users.Put(ctx, u); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	tok, err := pkgtoken.NewMagicLinkToken()
	if err != nil {
		return err
	}
	link := &domain.MagicLinkToken{
		Token:     tok,
		UserID:    u.UserID,
		ExpiresAt: time.Now().Add(s.linkTTL).Unix(),
		Consumed:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.links.Put(ctx, link); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/login?token=%s", s.frontendOrigin, tok)
	body := "Click the link to sign in to your weight tracker: " + url +
		fmt.Sprintf("\n\nThe link expires in %d minutes.", int(s.linkTTL.Minutes()))
	if err := s.mailer.SendEmail(email, "Your sign-in link", body); err != nil {
		// Best-effort delivery: the token stays redeemable even if the
		// email never goes out.
		slog.Warn("magic link delivery failed", "err", err)
	}
	return nil
}

// RedeemLink validates and atomically consumes a magic-link token, then
// mints a session credential bound to the owning user.
func (s *service) RedeemLink(ctx context.Context, token string) (string, *domain.User, error) {
	if token == "" {
		return "", nil, fmt.Errorf("token required: %w", domain.ErrInvalidToken)
	}
	link, err := s.links.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, fmt.Errorf("unknown token: %w", domain.ErrInvalidToken)
	}
	if err != nil {
		return "", nil, err
	}
	if link.Consumed {
		return "", nil, fmt.Errorf("token already used: %w", domain.ErrInvalidToken)
	}
	if time.Now().Unix() > link.ExpiresAt {
		return "", nil, fmt.Errorf("token expired: %w", domain.ErrExpiredToken)
	}
	// Consume is conditional at the store layer; if a concurrent
	// redemption won the race the condition fails and we report
	// ErrInvalidToken, never a second credential.
	if err := s.links.Consume(ctx, token); err != nil {
		return "", nil, err
	}
	u, err := s.users.Get(ctx, link.UserID)
	if err != nil {
		return "", nil, err
	}
	bearer, err := s.signer.Sign(u.UserID, u.Email)
	if err != nil {
		return "", nil, err
	}
	return bearer, u, nil
}

// Authenticate verifies the bearer credential and confirms the referenced
// user still exists. It performs no writes.
func (s *service) Authenticate(ctx context.Context, bearer string) (*domain.Identity, error) {
	claims, err := s.signer.Verify(bearer)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired credential: %w", domain.ErrUnauthenticated)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthenticated)
	}
	return &domain.Identity{UserID: u.UserID, Email: u.Email}, nil
}

// CurrentUser returns the public view of an authenticated user.
func (s *service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthenticated)
	}
	return u, nil
}
