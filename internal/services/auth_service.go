package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LogickStudio/demaincloset/internal/auth"
	"github.com/LogickStudio/demaincloset/internal/domain"
	applog "github.com/LogickStudio/demaincloset/internal/log"
	"github.com/LogickStudio/demaincloset/internal/repos"
)

var (
	ErrBadCreds    = errors.New("invalid email or password")
	ErrEmailTaken  = errors.New("an account with this email already exists")
	ErrBadReferral = errors.New("referral code not recognized")
)

type SignupInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService covers signup, login and token resolution. Referral
// rewards are issued on signup but never block it: a customer with a
// valid account and a missing reward beats no account at all.
type AuthService struct {
	Users     *repos.UserRepo
	Tokens    *auth.TokenService
	Referrals *ReferralService
	Carts     *CartService
}

func NewAuthService(users *repos.UserRepo, tokens *auth.TokenService, referrals *ReferralService, carts *CartService) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Referrals: referrals, Carts: carts}
}

func newReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "DEMAIN-" + raw[:6]
}

func (s *AuthService) Signup(in SignupInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.Users.ByEmail(email)
	if err != nil {
		return Session{}, err
	}
	if existing != nil {
		return Session{}, ErrEmailTaken
	}

	var referrer *domain.User
	if code := strings.TrimSpace(in.ReferralCode); code != "" {
		referrer, err = s.Users.ByReferralCode(code)
		if err != nil {
			return Session{}, err
		}
		if referrer == nil {
			return Session{}, ErrBadReferral
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Hash:         hash,
		Role:         "USER",
		ReferralCode: newReferralCode(),
	}
	if referrer != nil {
		u.ReferredByCode = referrer.ReferralCode
	}
	if err := s.Users.Create(u); err != nil {
		return Session{}, err
	}

	if referrer != nil {
		if _, _, err := s.Referrals.IssueRewardPair(referrer, u); err != nil {
			applog.Warn(nil, "signup.referral_rewards", err, map[string]any{
				"user_id": u.ID, "referrer_id": referrer.ID,
			})
		}
	}

	return s.session(u)
}

func (s *AuthService) Login(email, password string) (Session, error) {
	u, err := s.Users.ByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Session{}, err
	}
	if u == nil || !auth.CheckPassword(password, u.Hash) {
		return Session{}, ErrBadCreds
	}
	return s.session(u)
}

func (s *AuthService) session(u *domain.User) (Session, error) {
	token, exp, err := s.Tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Logout clears server-held cart state; the token itself simply lapses.
func (s *AuthService) Logout(userID string) error {
	return s.Carts.Clear(userID)
}

// CurrentUser resolves a bearer token to its account.
func (s *AuthService) CurrentUser(token string) (*domain.User, error) {
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, auth.ErrInvalidToken
	}
	return u, nil
}
