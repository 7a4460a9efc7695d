package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	"github.com/goliatone/go-logger/glog"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	secrets "github.com/JulijaJermolajeva/Authentication-Secrets"
	"github.com/JulijaJermolajeva/Authentication-Secrets/social"
	"github.com/JulijaJermolajeva/Authentication-Secrets/social/providers/facebook"
	"github.com/JulijaJermolajeva/Authentication-Secrets/social/providers/google"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("secrets"),
	)

	if err := run(lgr); err != nil {
		lgr.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*secrets.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	accounts := secrets.NewAccountsRepository(db)

	store, err := buildSessionStore(cfg)
	if err != nil {
		return err
	}

	sessions := secrets.NewSessionManager(store, accounts,
		secrets.WithSessionTTL(cfg.SessionTTL),
		secrets.WithSessionLogger(lgr.GetLogger("sessions")),
	)

	auther := secrets.NewRouteAuthenticator(sessions, cfg)
	auther.Logger = lgr.GetLogger("gate")

	verifier := secrets.NewCredentialVerifier(accounts,
		secrets.WithVerifierLogger(lgr.GetLogger("credentials")),
	)

	authenticator := social.NewAuthenticator(accounts, social.Config{
		DefaultRedirectURL: "/secrets",
		StateEncryptionKey: []byte(cfg.StateEncryptionKey),
		StateHMACKey:       []byte(cfg.StateHMACKey),
	},
		social.WithLogger(lgr.GetLogger("social")),
		social.WithProvider(google.New(google.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})),
		social.WithProvider(facebook.New(facebook.Config{
			AppID:       cfg.FacebookAppID,
			AppSecret:   cfg.FacebookAppSecret,
			CallbackURL: cfg.FacebookCallbackURL,
		})),
	)

	engine := django.New(cfg.ViewsDir, ".html")

	app := fiber.New(fiber.Config{
		Views:             engine,
		PassLocalsToViews: true,
	})

	secrets.RegisterAuthRoutes(app,
		secrets.WithAuthVerifier(verifier),
		secrets.WithAuthRouteAuthenticator(auther),
		secrets.WithAuthLogger(lgr.GetLogger("auth")),
		secrets.WithAuthDebug(cfg.Debug),
	)

	secrets.RegisterSecretsRoutes(app,
		secrets.WithSecretsAccounts(accounts),
		secrets.WithSecretsRouteAuthenticator(auther),
		secrets.WithSecretsLogger(lgr.GetLogger("secrets")),
		secrets.WithSecretsDebug(cfg.Debug),
	)

	social.RegisterRoutes(app,
		social.WithHTTPAuthenticator(authenticator),
		social.WithHTTPRouteAuthenticator(auther),
		social.WithHTTPLogger(lgr.GetLogger("social.http")),
	)

	lgr.Info("listening", "port", cfg.Port)

	return app.Listen(fmt.Sprintf(":%d", cfg.Port))
}

func buildSessionStore(cfg *Config) (secrets.SessionStore, error) {
	if cfg.RedisAddr == "" {
		return secrets.NewMemorySessionStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return secrets.NewRedisSessionStore(client, ""), nil
}
