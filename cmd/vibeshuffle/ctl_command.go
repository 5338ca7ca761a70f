package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vibeshuffle/internal/ipc"
)

const ctlActions = "toggle, stop, next, similar, previous, like, shuffle, search <query>, select <n>, volume <0-100>, volume-up, volume-down, status, quit"

func newCtlCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ctl <action> [value]",
		Short: "Send one action to the running player",
		Long: "Send one action to the running player over its control socket.\n\n" +
			"Actions: " + ctlActions + "\n\n" +
			"Bind these to desktop hotkeys, e.g. `vibeshuffle ctl similar`.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCtlArgs(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				if req.Action == "status" {
					resp, err := client.Status()
					if err != nil {
						return err
					}
					printPlayerState(out, resp.State)
					return nil
				}
				resp, err := client.Action(req)
				if err != nil {
					return err
				}
				if len(resp.Matches) > 0 {
					printMatches(out, resp.Matches)
				} else if resp.Message != "" {
					fmt.Fprintln(out, resp.Message)
				}
				if resp.Error != "" {
					return errors.New(resp.Error)
				}
				return nil
			})
		},
	}
}

func parseCtlArgs(args []string) (ipc.ActionRequest, error) {
	action := strings.ToLower(strings.TrimSpace(args[0]))
	rest := strings.TrimSpace(strings.Join(args[1:], " "))
	req := ipc.ActionRequest{Action: action}

	switch action {
	case "search":
		if rest == "" {
			return req, errors.New("usage: vibeshuffle ctl search <query>")
		}
		req.Query = rest
	case "select":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return req, errors.New("usage: vibeshuffle ctl select <n> (1 or greater)")
		}
		req.Number = n
	case "volume":
		level, err := strconv.ParseFloat(rest, 64)
		if err != nil || level < 0 || level > 100 {
			return req, errors.New("usage: vibeshuffle ctl volume <0-100>")
		}
		req.Volume = level / 100
	case "toggle", "stop", "next", "similar", "previous", "like", "shuffle", "volume-up", "volume-down", "status", "quit":
		if rest != "" {
			return req, fmt.Errorf("%s takes no value", action)
		}
	default:
		return req, fmt.Errorf("unknown action %q (valid: %s)", action, ctlActions)
	}
	return req, nil
}

func printPlayerState(out io.Writer, state ipc.PlayerState) {
	track := state.Track
	position := "-"
	if state.Index >= 0 {
		position = fmt.Sprintf("%d/%d", state.Index+1, state.Tracks)
	} else {
		track = "(none)"
	}
	rows := [][]string{
		{"Status", state.Status},
		{"Track", track},
		{"Position", position},
		{"Volume", fmt.Sprintf("%d%%", int(math.Round(state.Volume*100)))},
		{"Queued", strconv.Itoa(state.Queued)},
		{"History", strconv.Itoa(state.History)},
		{"PID", strconv.Itoa(state.PID)},
	}
	fmt.Fprintln(out, renderTable([]column{col("Player"), pathCol("Value")}, rows, ""))
}

func printMatches(out io.Writer, matches []ipc.Match) {
	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		rows = append(rows, []string{strconv.Itoa(i + 1), m.Name, strconv.Itoa(m.Score)})
	}
	fmt.Fprintln(out, renderTable([]column{numCol("#"), pathCol("Track"), numCol("Score")}, rows, "Select with: vibeshuffle ctl select <#>"))
}
