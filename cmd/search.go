package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/hubscout/pkg/github"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search GitHub users",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "user",
				Usage: "Login or name fragment",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Filter by location",
			},
			&cli.IntFlag{
				Name:  "min-repos",
				Usage: "Minimum public repository count",
			},
			&cli.IntFlag{
				Name:  "max-repos",
				Usage: "Maximum public repository count",
			},
			&cli.IntFlag{
				Name:  "min-followers",
				Usage: "Minimum follower count",
			},
			&cli.IntFlag{
				Name:  "max-followers",
				Usage: "Maximum follower count",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Filter by primary language",
			},
			&cli.StringFlag{
				Name:  "created",
				Usage: "Filter by account creation date, e.g. '>=2020-01-01'",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Account type (user or org)",
			},
			&cli.BoolFlag{
				Name:  "hireable",
				Usage: "Only users open to work",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "per-page",
				Usage: "Results per page (1-100)",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort key: relevance, followers, repositories, joined",
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "Sort order: asc or desc",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			params := github.SearchParams{
				Username:     c.String("user"),
				Location:     c.String("location"),
				MinRepos:     c.Int("min-repos"),
				MaxRepos:     c.Int("max-repos"),
				MinFollowers: c.Int("min-followers"),
				MaxFollowers: c.Int("max-followers"),
				Language:     c.String("language"),
				Created:      c.String("created"),
				AccountType:  c.String("type"),
				Hireable:     c.Bool("hireable"),
				Page:         c.Int("page"),
				PerPage:      c.Int("per-page"),
				Sort:         c.String("sort"),
				Order:        c.String("order"),
			}
			return searchUsers(ctx, c.String("config"), params)
		},
	}
}

func searchUsers(ctx context.Context, configPath string, params github.SearchParams) error {
	client, cfg, cleanup, err := newClientFromConfig(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if params.PerPage == 0 {
		params.PerPage = cfg.PerPage
	}

	page, err := client.SearchUsers(ctx, params)
	if err != nil {
		if github.IsCancelled(err) {
			return nil
		}
		return err
	}

	fmt.Println(renderSearchPage(page))
	return nil
}
