// Command example runs a small feed-style API on top of relay,
// exercising engine selection, shared state, schema validation,
// groups, the auth deriver, and the cache and oauth utilities.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"

	"github.com/pulsefeed/relay"
	"github.com/pulsefeed/relay/middlewares"
	"github.com/pulsefeed/relay/pkg/cache"
	"github.com/pulsefeed/relay/pkg/logger"
	"github.com/pulsefeed/relay/pkg/oauth"
	"github.com/pulsefeed/relay/pkg/token"
)

type appConfig struct {
	Engine      relay.Engine `envconfig:"RELAY_ENGINE" default:"chi"`
	Addr        string       `envconfig:"ADDR" default:":8080"`
	JWTSecret   string       `envconfig:"JWT_SECRET" default:"change-me-in-production-please-now"`
	DatabaseURL string       `envconfig:"DATABASE_URL"`
	SentryDSN   string       `envconfig:"SENTRY_DSN"`

	GithubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURL  string `envconfig:"GITHUB_REDIRECT_URL"`
}

// memoryUsers is a throwaway user store for the example.
type memoryUsers map[int]middlewares.User

func (m memoryUsers) FindByID(_ context.Context, id int) (*middlewares.User, error) {
	if u, ok := m[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func main() {
	var cfg appConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.WithSentry(cfg.SentryDSN, "example"))

	router, err := relay.New(relay.Config{Engine: cfg.Engine, Logger: log})
	if err != nil {
		log.Error("router construction failed", "error", err)
		os.Exit(1)
	}

	tokens, err := token.New(cfg.JWTSecret)
	if err != nil {
		log.Error("token service failed", "error", err)
		os.Exit(1)
	}

	users := memoryUsers{
		7: {ID: 7, Username: "ada", Permission: middlewares.DefaultAdminPermission},
		8: {ID: 8, Username: "lin", Permission: 1},
	}

	// Shared state: the persistence handle is opaque to the core.
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		router.State("db", pool)
	}
	store := cache.NewMemory()
	router.State("cache", store)

	router.Use(middlewares.Logging(log))
	router.Use(middlewares.Auth(tokens, users))

	router.Get("/healthz", func(c *relay.Context) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	// Login issues the cookie token the auth deriver falls back to.
	router.Post("/login", func(c *relay.Context) (any, error) {
		id, ok := c.BodyValue("id").(float64)
		if !ok {
			return nil, relay.ErrValidation("id is required", relay.WithDetails("id must be of type number"))
		}
		signed, err := tokens.Sign(token.Claims{"id": id})
		if err != nil {
			return nil, err
		}
		c.Cookies().Set("auth_token", signed,
			relay.WithCookiePath("/"),
			relay.WithHTTPOnly(),
			relay.WithExpires(time.Now().Add(7*24*time.Hour)),
		)
		return map[string]bool{"ok": true}, nil
	}, relay.Object(map[string]relay.Property{
		"id": relay.Required(relay.TypeNumber),
	}))

	if cfg.GithubClientID != "" {
		github := oauth.NewGitHub(cfg.GithubClientID, cfg.GithubClientSecret, cfg.GithubRedirectURL)
		router.Get("/auth/github", func(c *relay.Context) (any, error) {
			state, err := oauth.GenerateState()
			if err != nil {
				return nil, err
			}
			c.Cookies().Set("oauth_state", state, relay.WithHTTPOnly())
			return relay.Redirect(http.StatusFound, github.AuthCodeURL(state)), nil
		})
		router.Get("/auth/github/callback", func(c *relay.Context) (any, error) {
			if err := oauth.VerifyState(c.Cookies().Get("oauth_state").Value, c.Query("state")); err != nil {
				return nil, relay.ErrForbidden("state mismatch")
			}
			info, err := github.Authorize(c.Request().Context(), c.Query("code"))
			if err != nil {
				return nil, relay.ErrUnauthorized("authorization failed", relay.WithError(err))
			}
			return info, nil
		})
	}

	router.Group("/api/v1", func(r relay.Router) {
		r.Get("/feed", func(c *relay.Context) (any, error) {
			store := c.State().Get("cache").(cache.Cache)
			body, err := store.GetOrSet(c.Request().Context(), "feed", time.Minute, func(ctx context.Context) ([]byte, error) {
				return json.Marshal([]map[string]any{{"id": 1, "title": "hello"}})
			})
			if err != nil {
				return nil, err
			}
			return relay.NewResponse(http.StatusOK, body), nil
		})

		r.Post("/posts", func(c *relay.Context) (any, error) {
			uid, ok := c.UserID()
			if !ok {
				return nil, relay.ErrUnauthorized("login required")
			}
			return map[string]any{
				"title":   c.BodyValue("title"),
				"content": c.BodyValue("content"),
				"author":  uid,
			}, nil
		}, relay.Object(map[string]relay.Property{
			"title":   relay.Required(relay.TypeString),
			"content": relay.Required(relay.TypeString),
			"tags":    relay.Optional(relay.TypeArray),
		}))

		r.Delete("/posts/:id", func(c *relay.Context) (any, error) {
			if !c.IsAdmin() {
				return nil, relay.ErrForbidden("admin only")
			}
			return map[string]string{"deleted": c.Param("id")}, nil
		})
	})

	log.Info("listening", "addr", cfg.Addr, "engine", string(cfg.Engine))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
