package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/Sunny-JP/hw-ba-cafe/internal/email"
	"github.com/Sunny-JP/hw-ba-cafe/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	magicTokenTTL = 15 * time.Minute
	sessionTTL    = 24 * time.Hour
)

// AuthUsecase implements passwordless sign-in. Only the SHA-256 of a link
// token is stored, so a leaked magic_tokens table cannot be replayed; the
// raw token exists only in the emailed link.
type AuthUsecase struct {
	profiles      repository.ProfileRepository
	email         email.Sender
	jwtKey        []byte
	tokenTTL      time.Duration
	jwtTTL        time.Duration
	magicLinkBase string
}

func NewAuthUsecase(profiles repository.ProfileRepository, emailSender email.Sender, jwtKey []byte, magicLinkBase string) *AuthUsecase {
	return &AuthUsecase{
		profiles:      profiles,
		email:         emailSender,
		jwtKey:        jwtKey,
		tokenTTL:      magicTokenTTL,
		jwtTTL:        sessionTTL,
		magicLinkBase: magicLinkBase,
	}
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

// RequestMagicLink resolves the email to a profile (creating one for a
// first-time address), mints a single-use token, and mails the link.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, emailAddr string) error {
	profile, err := u.profiles.FindOrCreate(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("find or create profile: %w", err)
	}

	raw := make([]byte, 32)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(u.tokenTTL)
	if err = u.profiles.CreateMagicToken(ctx, profile.ID, hashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("store magic token: %w", err)
	}

	link := u.magicLinkBase + "/auth/verify?token=" + rawToken
	subject := "Café Timer sign-in link"
	body := fmt.Sprintf(
		`<p>先生、おかえりなさい！ Tap the link to sign in — it expires in 15 minutes.</p><p><a href="%s">%s</a></p>`,
		link, link,
	)
	if err = u.email.Send(ctx, emailAddr, subject, body); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}
	return nil
}

// VerifyMagicLink claims the token behind a clicked link and returns a
// signed session JWT whose sub is the profile id. Claiming is atomic in
// the store, so a link can only ever be exchanged once.
func (u *AuthUsecase) VerifyMagicLink(ctx context.Context, rawToken string) (string, error) {
	mt, err := u.profiles.ClaimMagicToken(ctx, hashToken(rawToken))
	if err != nil {
		return "", domain.ErrTokenInvalid
	}

	profile, err := u.profiles.FindByID(ctx, mt.ProfileID)
	if err != nil {
		return "", fmt.Errorf("find profile: %w", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}
