package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hubscout/pkg/github"
	"github.com/urfave/cli/v3"
)

// UserCommand creates the user command
func UserCommand() *cli.Command {
	return &cli.Command{
		Name:      "user",
		Usage:     "Show a single user profile",
		ArgsUsage: "LOGIN",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showUser(ctx, c.String("config"), c.Args().First())
		},
	}
}

func showUser(ctx context.Context, configPath, login string) error {
	client, _, cleanup, err := newClientFromConfig(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	profile, err := client.FetchUserData(ctx, login)
	if err != nil {
		if github.IsCancelled(err) {
			return nil
		}
		return err
	}

	fmt.Println(renderProfile(profile))
	fmt.Println(metaStyle.Render(renderRateLimit(client.RateLimit())))
	return nil
}
