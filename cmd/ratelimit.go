package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// RateLimitCommand creates the ratelimit command
func RateLimitCommand() *cli.Command {
	return &cli.Command{
		Name:  "ratelimit",
		Usage: "Show the current API rate limit",
		Action: func(ctx context.Context, c *cli.Command) error {
			return showRateLimit(ctx, c.String("config"))
		},
	}
}

func showRateLimit(ctx context.Context, configPath string) error {
	client, _, cleanup, err := newClientFromConfig(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	rateLimit, err := client.CurrentRateLimit(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Limit:     %d\n", rateLimit.Limit)
	fmt.Printf("Remaining: %d\n", rateLimit.Remaining)
	fmt.Printf("Used:      %d\n", rateLimit.Used)
	if !rateLimit.Reset.IsZero() {
		fmt.Printf("Resets:    %s\n", rateLimit.Reset.Local().Format("15:04:05"))
	}
	return nil
}
