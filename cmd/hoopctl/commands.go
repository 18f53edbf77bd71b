package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	repository "github.com/okian/hoopmatch/internal/adapters/repository"
	"github.com/okian/hoopmatch/internal/domain/types"
)

func (c *cli) similarCmd() *cobra.Command {
	var (
		k            int
		samePosition bool
	)
	cmd := &cobra.Command{
		Use:   "similar <player>",
		Short: "List the players with the closest Career Score",
		Example: `  hoopctl similar LeBron James
  hoopctl similar "Stephen Curry" -k 5 --same-position`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			if k == 0 {
				k = svc.DefaultSimilar()
			}
			player := strings.Join(args, " ")
			resp, err := svc.FindSimilar(cmd.Context(), types.SimilarRequest{Player: player, K: k, SamePosition: samePosition})
			if err != nil {
				return err
			}
			if resp.Target == nil {
				return fmt.Errorf("player %q: %w", player, repository.ErrNotFound)
			}
			return c.render(resp)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of similar players (default from config)")
	cmd.Flags().BoolVar(&samePosition, "same-position", false, "only compare against players in the same position")
	return cmd
}

func (c *cli) playerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <name>",
		Short: "Show the Career Score, rank and key stats of a player",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			p, err := svc.Player(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("player %q: %w", name, err)
			}
			return c.render(p)
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Describe the dataset: columns, positions and top players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			if top < 0 {
				return fmt.Errorf("--top must not be negative, got %d", top)
			}
			sum, err := svc.Summary(cmd.Context(), top)
			if err != nil {
				return err
			}
			return c.render(sum)
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "size of the top table (default from config)")
	return cmd
}

func (c *cli) playersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List every player in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.loadService(cmd.Context())
			if err != nil {
				return err
			}
			players, err := svc.Players(cmd.Context())
			if err != nil {
				return err
			}
			return c.render(players)
		},
	}
}
