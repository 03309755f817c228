// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"fmt"

	"github.com/cognumbers/cognumbers/common"
	"github.com/cognumbers/cognumbers/node"
	"github.com/cognumbers/cognumbers/resolver"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ResolveCmd run one resolution attempt
func ResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Decrypt every choice of a calculating game and submit the winner",
		Run:   resolve,
	}
	cmd.Flags().Uint64P("id", "i", 0, "game id")
	cmd.MarkFlagRequired("id")
	return cmd
}

func resolve(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetUint64("id")
	withNode(cmd, func(ctx context.Context, n *node.Node) error {
		if err := n.RequireWriter(); err != nil {
			return err
		}
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("resolving game %d", id))
		n.Orchestrator.SetObserver(func(attemptID string, gameID uint64, phase resolver.Phase) {
			if spinner != nil {
				spinner.UpdateText(fmt.Sprintf("game %d: %s", gameID, phase))
			}
		})
		res, err := n.Orchestrator.Resolve(ctx, id)
		if spinner != nil {
			spinner.Stop()
		}
		if err != nil {
			if res != nil {
				pterm.Warning.Printfln("attempt %s failed in %s", res.AttemptID, res.FailedIn)
			}
			return err
		}
		pterm.DefaultTable.WithData(resultRows(res)).Render()
		printReceipt("resolved", res.Receipt)
		return nil
	})
}

func resultRows(res *resolver.Result) pterm.TableData {
	data := pterm.TableData{
		{"attempt", res.AttemptID},
		{"game", fmt.Sprint(res.GameID)},
		{"players", fmt.Sprint(len(res.Players))},
	}
	if res.Predicted.HasWinner() {
		data = append(data, []string{"predicted", fmt.Sprintf("%s (%s)", res.Predicted.Winner.Hex(), res.Predicted.Value)})
	} else {
		data = append(data, []string{"predicted", "no winner"})
	}
	if g := res.Final; g != nil {
		data = append(data, []string{"status", g.Status.String()})
		if g.HasWinner() {
			data = append(data, []string{"winner", fmt.Sprintf("%s (%d)", g.Winner.Hex(), g.WinningNumber)})
			data = append(data, []string{"prize", common.FormatEther(g.ExpectedPrizePool(), 4)})
		}
	}
	return data
}
