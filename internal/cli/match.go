package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match registry and lifecycle commands",
	}

	cmd.AddCommand(newMatchListCmd())
	cmd.AddCommand(newMatchOpenCmd())
	cmd.AddCommand(newMatchGetCmd())
	cmd.AddCommand(newMatchCreateCmd())
	cmd.AddCommand(newMatchDeleteCmd())
	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchLeaveCmd())
	cmd.AddCommand(newMatchStartCmd())
	cmd.AddCommand(newMatchFinishCmd())
	cmd.AddCommand(newMatchHistoryCmd())

	return cmd
}

// matchesCmd builds a command that prints a list of matches from path
func matchesCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Match

			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newMatchListCmd() *cobra.Command {
	return matchesCmd("list", "List all matches", "/matches")
}

func newMatchOpenCmd() *cobra.Command {
	return matchesCmd("open", "List matches waiting for players", "/matches/open")
}

func newMatchGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <match-id>",
		Short: "Show a match and its roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Get(cmd.Context(), pathf("/matches/%s", args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newMatchCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new match",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Post(cmd.Context(), "/matches", map[string]string{"name": name}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Unique match name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newMatchDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <match-id>",
		Short: "Delete a match with an empty roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Message

			if err := client.Delete(cmd.Context(), pathf("/matches/%s", args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

// lifecycleCmd builds a command that posts to a lifecycle endpoint and prints the match
func lifecycleCmd(use, short string, nargs int, path func(args []string) string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Match

			if err := client.Post(cmd.Context(), path(args), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	return lifecycleCmd("join <match-id> <player-id>", "Add a player to a waiting match", 2, func(args []string) string {
		return pathf("/matches/%s/join/%s", args[0], args[1])
	})
}

func newMatchLeaveCmd() *cobra.Command {
	return lifecycleCmd("leave <match-id> <player-id>", "Remove a player from a match", 2, func(args []string) string {
		return pathf("/matches/%s/leave/%s", args[0], args[1])
	})
}

func newMatchStartCmd() *cobra.Command {
	return lifecycleCmd("start <match-id>", "Start a waiting match", 1, func(args []string) string {
		return pathf("/matches/%s/start", args[0])
	})
}

func newMatchFinishCmd() *cobra.Command {
	var scores map[string]string

	cmd := &cobra.Command{
		Use:   "finish <match-id>",
		Short: "Finish a match, recording a score for every player on the roster",
		Example: `  gamematch match finish 6f1c... --score p1=10 --score p2=20
  gamematch match finish 6f1c... --score p1=10,p2=20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseScores(scores)
			if err != nil {
				return err
			}

			var result Match
			req := map[string]any{"scores": parsed}
			if err := client.Post(cmd.Context(), pathf("/matches/%s/finish", args[0]), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&scores, "score", nil, "Score per player as player-id=value (repeatable)")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func parseScores(raw map[string]string) (map[string]float64, error) {
	scores := make(map[string]float64, len(raw))
	for id, value := range raw {
		score, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid score %q for player %s: must be a number", value, id)
		}
		scores[id] = score
	}
	return scores, nil
}

func newMatchHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <player-id>",
		Short: "List finished matches a player has a score in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Match

			if err := client.Get(cmd.Context(), pathf("/matches/history/%s", args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
