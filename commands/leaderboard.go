// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/cognumbers/cognumbers/common"
	"github.com/cognumbers/cognumbers/node"
	"github.com/cognumbers/cognumbers/registry"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// LeaderboardCmd winners ranked by earnings
func LeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the winners of finished games",
		Run:   leaderboard,
	}
	cmd.Flags().IntP("top", "t", 10, "number of players to show, 0 for all")
	cmd.Flags().Bool("full", false, "print full addresses instead of masked ones")
	return cmd
}

func leaderboard(cmd *cobra.Command, args []string) {
	top, _ := cmd.Flags().GetInt("top")
	full, _ := cmd.Flags().GetBool("full")
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		games, err := n.Registry.ListGames(ctx)
		if err != nil {
			return err
		}
		lb := registry.BuildLeaderboard(games)
		pterm.Info.Printfln("%d finished games, %s ETH paid out", lb.FinishedGames, common.FormatEther(lb.TotalPrizes, 4))
		if len(lb.Standings) == 0 {
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(leaderboardRows(lb, top, full)).Render()
	})
}

func leaderboardRows(lb *registry.Leaderboard, top int, full bool) pterm.TableData {
	data := pterm.TableData{{"RANK", "PLAYER", "WINS", "EARNINGS"}}
	for i, s := range lb.Standings {
		if top > 0 && i >= top {
			break
		}
		player := common.MaskAddress(s.Player)
		if full {
			player = s.Player.Hex()
		}
		data = append(data, []string{fmt.Sprint(i + 1), player, fmt.Sprint(s.Wins), common.FormatEther(s.Earnings, 4)})
	}
	return data
}
