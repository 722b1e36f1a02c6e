// Command adduser creates a login for the sketchbook server.
//
//	adduser --username ada --email ada@example.com --password secret
//
// Every flag may also be given as SKETCHBOOK_<FLAG>, e.g. SKETCHBOOK_PASSWORD.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/database"
	"github.com/sketchbook/sketchbook/internal/users"
	"github.com/sketchbook/sketchbook/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type options struct {
	Username string
	Email    string
	Password string
}

func parseOptions(args []string) (options, error) {
	flags := pflag.NewFlagSet("adduser", pflag.ContinueOnError)
	flags.StringP("username", "u", "", "login name (required)")
	flags.StringP("email", "e", "", "email address, also accepted as login")
	flags.StringP("password", "p", "", "password (or SKETCHBOOK_PASSWORD)")
	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("SKETCHBOOK")
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return options{}, err
	}

	opts := options{
		Username: v.GetString("username"),
		Email:    v.GetString("email"),
		Password: v.GetString("password"),
	}
	if opts.Username == "" || opts.Password == "" {
		return opts, fmt.Errorf("username and password are required")
	}
	return opts, nil
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "adduser:", err)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("DB_URL is required; for an in-memory server set SEED_USERNAME and SEED_PASSWORD instead")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := users.NewMongoUserRepository(client.Database(cfg.MongoDB.Database).Collection(database.UsersCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("ensure indexes: %v", err)
	}
	u, err := users.NewService(repo).Create(ctx, opts.Username, opts.Email, opts.Password)
	if err != nil {
		logger.Fatalf("create user: %v", err)
	}
	logger.Infof("created user %s (%s)", u.Username, u.ID.Hex())
}
