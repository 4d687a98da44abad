package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	oauthStatePrefix  = "proviquiz-oauth-state-"
)

type oauthState struct {
	Redirect string `json:"redirect"`
	Nonce    string `json:"nonce"`
}

type googleProfile struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type GoogleService struct {
	oauth       *oauth2.Config
	userInfoURL string
	users       UserStore
	cache       Cache
	jwt         *JWTService
	publisher   event.Publisher
	frontendURL string
	stateTTL    time.Duration
}

func NewGoogleService(cfg config.GoogleConfig, frontendURL string, users UserStore, cache Cache, jwt *JWTService, publisher event.Publisher) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		users:       users,
		cache:       cache,
		jwt:         jwt,
		publisher:   publisher,
		frontendURL: frontendURL,
		stateTTL:    cfg.StateTTL,
	}
}

func (s *GoogleService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL builds the consent URL. The state carries the post-login redirect and
// a nonce that must be presented back exactly once.
func (s *GoogleService) AuthURL(ctx context.Context, redirect string) (string, error) {
	if !s.configured() {
		return "", ErrGoogleNotConfigured
	}
	if redirect == "" {
		redirect = "/"
	}

	st := oauthState{Redirect: redirect, Nonce: uuid.NewString()}
	raw, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("failed to encode oauth state: %w", err)
	}
	if err := s.cache.SetString(ctx, oauthStatePrefix+st.Nonce, redirect, s.stateTTL); err != nil {
		return "", err
	}

	state := base64.RawURLEncoding.EncodeToString(raw)
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	), nil
}

func decodeState(state string) (*oauthState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(state)
	if err != nil {
		return nil, ErrInvalidState
	}
	var st oauthState
	if err := json.Unmarshal(raw, &st); err != nil || st.Nonce == "" {
		return nil, ErrInvalidState
	}
	if st.Redirect == "" {
		st.Redirect = "/"
	}
	return &st, nil
}

// Callback completes the code exchange and returns the frontend URL to redirect to.
func (s *GoogleService) Callback(ctx context.Context, code, state string) (string, error) {
	if !s.configured() {
		return "", ErrGoogleNotConfigured
	}
	if code == "" {
		return "", ErrMissingCode
	}

	st, err := decodeState(state)
	if err != nil {
		return "", err
	}
	key := oauthStatePrefix + st.Nonce
	if _, err := s.cache.GetString(ctx, key); err != nil {
		return "", ErrInvalidState
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Printf("Warning: failed to drop oauth state: %v", err)
	}

	profile, err := s.fetchProfile(ctx, code)
	if err != nil {
		return "", err
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return "", err
	}
	if err := checkStanding(user); err != nil {
		return "", err
	}

	token, err := s.jwt.GenerateToken(user.ID.Hex())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/oauth/callback?token=%s&redirect=%s",
		s.frontendURL, url.QueryEscape(token), url.QueryEscape(st.Redirect)), nil
}

func (s *GoogleService) fetchProfile(ctx context.Context, code string) (*googleProfile, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("Failed to exchange google code: %v", err)
		return nil, ErrGoogleExchange
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		log.Printf("Failed to fetch google userinfo: %v", err)
		return nil, ErrGoogleExchange
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Google userinfo returned status %d", resp.StatusCode)
		return nil, ErrGoogleExchange
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, ErrGoogleProfile
	}
	if profile.Email == "" || profile.Sub == "" {
		return nil, ErrGoogleProfile
	}
	profile.Email = normalizeEmail(profile.Email)
	return &profile, nil
}

// findOrCreate matches by email and links the Google id to an existing account.
func (s *GoogleService) findOrCreate(ctx context.Context, profile *googleProfile) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		if !user.HasGoogle() {
			return s.users.Update(ctx, user.ID, &models.UserPatch{GoogleID: &profile.Sub})
		}
		return user, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	googleID := profile.Sub
	user, err = s.users.Create(ctx, &models.User{
		Email:    profile.Email,
		Name:     profile.Name,
		GoogleID: &googleID,
		Role:     models.RoleStudent,
		Active:   true,
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		ev := event.NewUserEvent(event.EventTypeUserRegistered, user.ID.Hex(), user.Email, string(user.Role), "google")
		if err := s.publisher.PublishUserEvent(ev); err != nil {
			log.Printf("Warning: Failed to publish %s event: %v", ev.EventType, err)
		}
	}
	return user, nil
}
