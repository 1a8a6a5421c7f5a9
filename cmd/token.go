package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hubscout/pkg/config"
	"github.com/rubiojr/hubscout/pkg/credstore"
	"github.com/urfave/cli/v3"
)

// TokenCommand creates the token command and its subcommands
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage the stored GitHub API token",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store a GitHub API token",
				ArgsUsage: "TOKEN",
				Action: func(ctx context.Context, c *cli.Command) error {
					token := c.Args().First()
					if token == "" {
						return fmt.Errorf("token argument is required")
					}
					return withCredentials(c.String("config"), func(store *credstore.Store) error {
						if err := store.SetToken(token); err != nil {
							return err
						}
						fmt.Println("Token stored")
						return nil
					})
				},
			},
			{
				Name:  "show",
				Usage: "Show whether a token is stored",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCredentials(c.String("config"), func(store *credstore.Store) error {
						token, err := store.Token()
						if err != nil {
							return err
						}
						if token == "" {
							fmt.Println("No token stored")
							return nil
						}
						fmt.Printf("Token stored (%s)\n", maskToken(token))
						return nil
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove the stored token",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCredentials(c.String("config"), func(store *credstore.Store) error {
						if err := store.ClearToken(); err != nil {
							return err
						}
						fmt.Println("Token cleared")
						return nil
					})
				},
			},
		},
	}
}

func withCredentials(configPath string, fn func(*credstore.Store) error) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	return fn(store)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
