package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yahyalegrini24/AttendEase/internal/config"
	"github.com/yahyalegrini24/AttendEase/internal/identity"
	"github.com/yahyalegrini24/AttendEase/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUnknownTeacher     = errors.New("auth: no teacher account for this email")
	ErrRevoked            = errors.New("auth: session signed out")
	ErrWrongTokenType     = errors.New("auth: wrong token type")
	ErrGoogleDisabled     = errors.New("auth: google sign-in is not configured")
	ErrEmptyName          = errors.New("auth: name is empty")
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type TeacherStore interface {
	TeacherByEmail(ctx context.Context, email string) (*models.Teacher, error)
	UpdateTeacherName(ctx context.Context, teacherID, name string) error
}

// Service signs teachers in and out and validates their tokens.
type Service struct {
	teachers TeacherStore
	tokens   *Tokens
	revoker  Revoker
	bus      *Bus
	logger   *zap.Logger

	refreshTTL  time.Duration
	google      *oauth2.Config
	userInfoURL string
}

func NewService(cfg *config.Config, teachers TeacherStore, revoker Revoker, bus *Bus, logger *zap.Logger) *Service {
	s := &Service{
		teachers:    teachers,
		tokens:      NewTokens(cfg.JWT_SECRET, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		revoker:     revoker,
		bus:         bus,
		logger:      logger,
		refreshTTL:  cfg.RefreshTokenTTL,
		userInfoURL: googleUserInfoURL,
	}
	if cfg.GoogleClientID != "" {
		s.google = &oauth2.Config{
			RedirectURL:  cfg.GoogleRedirectURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}
	return s
}

// Bus exposes the event bus identity contexts subscribe to.
func (s *Service) Bus() *Bus { return s.bus }

func (s *Service) signIn(t *models.Teacher) (*TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens.Pair(t.TeacherID, t.Email, sid)
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}
	s.bus.Publish(identity.Event{Kind: identity.SignedIn, SessionID: sid, Subject: t.TeacherID, Email: t.Email})
	s.logger.Info("teacher signed in", zap.String("teacher_id", t.TeacherID), zap.String("sid", sid))
	return pair, nil
}

// Login checks an email and password against the teacher's bcrypt hash.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *models.Teacher, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	teacher, err := s.teachers.TeacherByEmail(ctx, email)
	if err != nil || teacher == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if teacher.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.signIn(teacher)
	if err != nil {
		return nil, nil, err
	}
	return pair, teacher, nil
}

// GoogleAuthURL is where the browser goes to start Google sign-in.
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// LoginWithGoogle exchanges an authorization code and signs in the teacher
// whose email Google reports. Only existing teachers can sign in.
func (s *Service) LoginWithGoogle(ctx context.Context, code string) (*TokenPair, *models.Teacher, error) {
	if s.google == nil {
		return nil, nil, ErrGoogleDisabled
	}
	tok, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.google.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch user info: status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, nil, fmt.Errorf("decode user info: %w", err)
	}

	teacher, err := s.teachers.TeacherByEmail(ctx, strings.ToLower(info.Email))
	if err != nil || teacher == nil {
		return nil, nil, ErrUnknownTeacher
	}
	pair, err := s.signIn(teacher)
	if err != nil {
		return nil, nil, err
	}
	return pair, teacher, nil
}

// Refresh issues a new pair for the same sign-in session.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validate(ctx, refreshToken, RefreshToken)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Pair(claims.Subject, claims.Email, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("sign tokens: %w", err)
	}
	s.bus.Publish(identity.Event{Kind: identity.TokenRefreshed, SessionID: claims.SessionID, Subject: claims.Subject, Email: claims.Email})
	return pair, nil
}

// Logout revokes the sign-in session of claims.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if err := s.revoker.Revoke(ctx, claims.SessionID, s.refreshTTL); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.bus.Publish(identity.Event{Kind: identity.SignedOut, SessionID: claims.SessionID, Subject: claims.Subject, Email: claims.Email})
	s.logger.Info("teacher signed out", zap.String("teacher_id", claims.Subject), zap.String("sid", claims.SessionID))
	return nil
}

// UpdateProfile renames the teacher. Every open sign-in of the teacher
// reloads its profile.
func (s *Service) UpdateProfile(ctx context.Context, teacherID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := s.teachers.UpdateTeacherName(ctx, teacherID, name); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.bus.Publish(identity.Event{Kind: identity.UserUpdated, Subject: teacherID})
	s.logger.Info("teacher profile updated", zap.String("teacher_id", teacherID))
	return nil
}

// Authenticate validates an access token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	return s.validate(ctx, accessToken, AccessToken)
}

func (s *Service) validate(ctx context.Context, raw, kind string) (*Claims, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Type != kind {
		return nil, ErrWrongTokenType
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Scope narrows the service to one sign-in session so it can back an
// identity.Context.
func (s *Service) Scope(claims *Claims) identity.Authenticator {
	return &scoped{svc: s, claims: *claims}
}

type scoped struct {
	svc    *Service
	claims Claims
}

func (a *scoped) CurrentIdentity(ctx context.Context) (*identity.Identity, error) {
	revoked, err := a.svc.revoker.IsRevoked(ctx, a.claims.SessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}
	return &identity.Identity{Subject: a.claims.Subject, Email: a.claims.Email}, nil
}

func (a *scoped) Subscribe(fn func(identity.Event)) func() {
	return a.svc.bus.Subscribe(func(ev identity.Event) {
		switch {
		case ev.SessionID == a.claims.SessionID:
		case ev.SessionID == "" && (ev.Subject == "" || ev.Subject == a.claims.Subject):
		default:
			return
		}
		fn(ev)
	})
}
