// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/oauth"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/internal/infrastructure/zoom/token"
	"github.com/linuxfoundation/lfx-v2-zoom-admin/pkg/utils"
)

const (
	defaultPort    = "8080"
	defaultNatsURL = "nats://localhost:4222"

	tokenStoreFile = "file"
	tokenStoreNats = "nats"
)

// environment are the environment variables for the zoom admin tool.
type environment struct {
	Port string

	ClientID     string
	ClientSecret string
	RedirectURI  string

	TokenFile    string
	APIBaseURL   string
	TokenURL     string
	AuthorizeURL string
	Scopes       []string

	HTTPTimeout        time.Duration
	InsecureSkipVerify bool
	AutoRefresh        bool

	TokenStore    string
	NatsURL       string
	SessionSecret string
}

// parseEnv reads the environment. tokenFile, when set, wins over ZOOM_TOKEN_FILE.
func parseEnv(tokenFile string) (environment, error) {
	env := environment{
		Port:          utils.CoalesceString(os.Getenv("PORT"), defaultPort),
		ClientID:      os.Getenv("ZOOM_CLIENT_ID"),
		ClientSecret:  os.Getenv("ZOOM_CLIENT_SECRET"),
		RedirectURI:   os.Getenv("ZOOM_REDIRECT_URI"),
		TokenFile:     utils.CoalesceString(tokenFile, os.Getenv("ZOOM_TOKEN_FILE"), token.DefaultFilename),
		APIBaseURL:    utils.CoalesceString(os.Getenv("ZOOM_API_BASE_URL"), api.BaseURL),
		TokenURL:      utils.CoalesceString(os.Getenv("ZOOM_OAUTH_TOKEN_URL"), oauth.TokenURL),
		AuthorizeURL:  utils.CoalesceString(os.Getenv("ZOOM_OAUTH_AUTHORIZE_URL"), oauth.AuthorizeURL),
		Scopes:        strings.Fields(os.Getenv("ZOOM_SCOPES")),
		HTTPTimeout:   api.DefaultClientTimeout,
		TokenStore:    strings.ToLower(utils.CoalesceString(os.Getenv("TOKEN_STORE"), tokenStoreFile)),
		NatsURL:       utils.CoalesceString(os.Getenv("NATS_URL"), defaultNatsURL),
		SessionSecret: os.Getenv("SESSION_SECRET"),
	}

	if raw := os.Getenv("ZOOM_HTTP_TIMEOUT"); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return environment{}, fmt.Errorf("invalid ZOOM_HTTP_TIMEOUT: %w", err)
		}
		env.HTTPTimeout = timeout
	}

	var err error
	if env.InsecureSkipVerify, err = parseBoolEnv("ZOOM_INSECURE_SKIP_VERIFY", false); err != nil {
		return environment{}, err
	}
	if env.AutoRefresh, err = parseBoolEnv("ZOOM_AUTO_REFRESH", true); err != nil {
		return environment{}, err
	}

	switch env.TokenStore {
	case tokenStoreFile, tokenStoreNats:
	default:
		return environment{}, fmt.Errorf("invalid TOKEN_STORE %q, expected %s or %s", env.TokenStore, tokenStoreFile, tokenStoreNats)
	}

	for key, raw := range map[string]string{
		"ZOOM_API_BASE_URL":        env.APIBaseURL,
		"ZOOM_OAUTH_TOKEN_URL":     env.TokenURL,
		"ZOOM_OAUTH_AUTHORIZE_URL": env.AuthorizeURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return environment{}, fmt.Errorf("invalid %s %q", key, raw)
		}
	}

	return env, nil
}

// requireCredentials reports the Zoom app settings a command cannot run without.
func (e environment) requireCredentials() error {
	var missing []string
	if e.ClientID == "" {
		missing = append(missing, "ZOOM_CLIENT_ID")
	}
	if e.ClientSecret == "" {
		missing = append(missing, "ZOOM_CLIENT_SECRET")
	}
	if e.RedirectURI == "" {
		missing = append(missing, "ZOOM_REDIRECT_URI")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// apiConfig maps the environment onto the Zoom client configuration.
func (e environment) apiConfig() api.Config {
	return api.Config{
		Credentials: oauth.Credentials{
			ClientID:     e.ClientID,
			ClientSecret: e.ClientSecret,
			RedirectURI:  e.RedirectURI,
		},
		TokenFile:          e.TokenFile,
		AutoRefresh:        e.AutoRefresh,
		BaseURL:            e.APIBaseURL,
		TokenURL:           e.TokenURL,
		AuthorizeURL:       e.AuthorizeURL,
		Scopes:             e.Scopes,
		Timeout:            e.HTTPTimeout,
		InsecureSkipVerify: e.InsecureSkipVerify,
	}
}

// secureCookies reports whether the OAuth state cookie should be HTTPS only.
func (e environment) secureCookies() bool {
	return strings.HasPrefix(strings.ToLower(e.RedirectURI), "https://")
}

// parseTimeout accepts a Go duration ("45s") or a number of seconds ("45").
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
