// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cognumbers/cognumbers/common"
	"github.com/cognumbers/cognumbers/node"
	"github.com/cognumbers/cognumbers/registry"
	"github.com/cognumbers/cognumbers/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// GameCmd game command
func GameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game management",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.AddCommand(
		ListGamesCmd(),
		ShowGameCmd(),
		CreateGameCmd(),
		JoinGameCmd(),
		FinalizeGameCmd(),
		CancelGameCmd(),
		ClaimRefundCmd(),
	)

	return cmd
}

// ListGamesCmd list games, most recent first
func ListGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games",
		Run:   listGames,
	}
	cmd.Flags().StringP("status", "s", "", "comma separated statuses, e.g. open,calculating")
	return cmd
}

func parseStatuses(s string) ([]types.Status, error) {
	var out []types.Status
	for _, label := range strings.Split(s, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		st, err := types.ParseStatusLabel(label)
		if err != nil {
			return nil, errors.Wrapf(err, "status %q", label)
		}
		out = append(out, st)
	}
	return out, nil
}

func listGames(cmd *cobra.Command, args []string) {
	status, _ := cmd.Flags().GetString("status")
	statuses, err := parseStatuses(status)
	if err != nil {
		printErr(err)
		return
	}
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		games, err := n.Registry.ListGames(ctx)
		if err != nil {
			return err
		}
		games = registry.Filter(games, statuses...)
		if len(games) == 0 {
			pterm.Info.Println("no games")
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(gameRows(games, time.Now())).Render()
	})
}

func gameRows(games []*types.Game, now time.Time) pterm.TableData {
	data := pterm.TableData{{"ID", "STATUS", "ENTRY FEE", "PLAYERS", "POOL", "TIME LEFT", "WINNER"}}
	for _, g := range games {
		left := "-"
		if g.Status == types.StatusOpen {
			left = common.FormatRemaining(g.TimeRemaining(now))
		}
		winner := "-"
		if g.HasWinner() {
			winner = fmt.Sprintf("%s (%d)", common.ShortenAddress(g.Winner, 4, 4), g.WinningNumber)
		}
		data = append(data, []string{
			fmt.Sprint(g.ID),
			g.Status.String(),
			common.FormatEther(g.EntryFee, 4),
			fmt.Sprintf("%d/%d", g.PlayerCount, types.MaxPlayers),
			common.FormatEther(g.PrizePool, 4),
			left,
			winner,
		})
	}
	return data
}

// ShowGameCmd game detail
func ShowGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show game detail",
		Run:   showGame,
	}
	cmd.Flags().Uint64P("id", "i", 0, "game id")
	cmd.MarkFlagRequired("id")
	cmd.Flags().StringP("addr", "a", "", "account to show hasJoined/canClaimRefund for, default the configured key")
	return cmd
}

func showGame(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetUint64("id")
	addr, _ := cmd.Flags().GetString("addr")
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		var account ethcommon.Address
		switch {
		case addr != "":
			if !ethcommon.IsHexAddress(addr) {
				return errors.Wrapf(types.ErrInvalidParam, "address %q", addr)
			}
			account = ethcommon.HexToAddress(addr)
		case n.Writable():
			account = n.Client.Account()
		}
		d, err := n.Registry.GameDetail(ctx, id, account)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(d, "", "    ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	})
}

// CreateGameCmd create a game
func CreateGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game",
		Run:   createGame,
	}
	cmd.Flags().StringP("fee", "e", "0.001", "entry fee in ether")
	cmd.Flags().DurationP("duration", "d", time.Hour, "time until the deadline")
	return cmd
}

func createGame(cmd *cobra.Command, args []string) {
	feeStr, _ := cmd.Flags().GetString("fee")
	duration, _ := cmd.Flags().GetDuration("duration")
	fee, err := common.ParseEther(feeStr)
	if err != nil {
		printErr(err)
		return
	}
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		if err := n.RequireWriter(); err != nil {
			return err
		}
		id, rcpt, err := n.Service.CreateGame(ctx, fee, duration)
		if err != nil {
			return err
		}
		printReceipt(fmt.Sprintf("created game %d", id), rcpt)
		return nil
	})
}

// JoinGameCmd join with an encrypted number
func JoinGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a game with a sealed number",
		Run:   joinGame,
	}
	cmd.Flags().Uint64P("id", "i", 0, "game id")
	cmd.MarkFlagRequired("id")
	cmd.Flags().Uint64P("number", "n", 0, fmt.Sprintf("chosen number, %d-%d", types.MinNumber, types.MaxNumber))
	cmd.MarkFlagRequired("number")
	return cmd
}

func joinGame(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetUint64("id")
	number, _ := cmd.Flags().GetUint64("number")
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		if err := n.RequireWriter(); err != nil {
			return err
		}
		rcpt, err := n.Service.JoinGame(ctx, id, number)
		if err != nil {
			return err
		}
		printReceipt(fmt.Sprintf("joined game %d", id), rcpt)
		return nil
	})
}

func gameWriteCmd(use, short string, write func(ctx context.Context, n *node.Node, id uint64) (*types.Receipt, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			id, _ := cmd.Flags().GetUint64("id")
			withNode(cmd, func(ctx context.Context, n *node.Node) error {
				if err := n.RequireWriter(); err != nil {
					return err
				}
				rcpt, err := write(ctx, n, id)
				if err != nil {
					return err
				}
				printReceipt(fmt.Sprintf("%s game %d", use, id), rcpt)
				return nil
			})
		},
	}
	cmd.Flags().Uint64P("id", "i", 0, "game id")
	cmd.MarkFlagRequired("id")
	return cmd
}

// FinalizeGameCmd close joining after the deadline
func FinalizeGameCmd() *cobra.Command {
	return gameWriteCmd("finalize", "Finalize a game after its deadline", func(ctx context.Context, n *node.Node, id uint64) (*types.Receipt, error) {
		return n.Service.FinalizeGame(ctx, id)
	})
}

// CancelGameCmd cancel an open game
func CancelGameCmd() *cobra.Command {
	return gameWriteCmd("cancel", "Cancel an open game (creator or owner)", func(ctx context.Context, n *node.Node, id uint64) (*types.Receipt, error) {
		return n.Service.CancelGame(ctx, id)
	})
}

// ClaimRefundCmd claim the entry fee back
func ClaimRefundCmd() *cobra.Command {
	return gameWriteCmd("refund", "Claim a refund from a cancelled or refunded game", func(ctx context.Context, n *node.Node, id uint64) (*types.Receipt, error) {
		return n.Service.ClaimRefund(ctx, id)
	})
}
