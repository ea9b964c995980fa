package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/store"
)

const eventTime = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded AI assistant calls",
}

var llmLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent assistant calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		var rows [][]string
		for _, ev := range events {
			if purpose != "" && ev.Purpose != purpose {
				continue
			}
			status := "ok"
			if !ev.Success {
				status = "failed"
			}
			rows = append(rows, []string{
				strconv.Itoa(ev.ID),
				ev.Timestamp.Local().Format(eventTime),
				ev.Purpose,
				truncate(ev.Model, 28),
				fmt.Sprintf("%d/%d", ev.InputTokens, ev.OutputTokens),
				fmt.Sprintf("%dms", ev.LatencyMs),
				status,
			})
		}
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No assistant calls recorded.")
			return nil
		}
		writeTable(out, []string{"ID", "When", "Purpose", "Model", "Tokens", "Latency", "Status"}, rows)
		return nil
	},
}

var llmShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the prompt and reply of one recorded call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id %q is not a number", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("event %d: %w", id, err)
		}

		out := cmd.OutOrStdout()
		fields := [][2]string{
			{"ID", strconv.Itoa(ev.ID)},
			{"When", ev.Timestamp.Local().Format(eventTime)},
			{"Provider", ev.Provider},
			{"Model", ev.Model},
			{"Purpose", ev.Purpose},
			{"Tokens", fmt.Sprintf("%d in, %d out", ev.InputTokens, ev.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", ev.LatencyMs)},
		}
		if ev.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", ev.ErrorMessage})
		}
		writeFields(out, fields)
		writeSection(out, "PROMPT", ev.RequestBody)
		writeSection(out, "REPLY", ev.ResponseBody)
		return nil
	},
}

var llmUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		events := e.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No assistant calls recorded.")
			return nil
		}

		var total store.LLMUsageRow
		rows := make([][]string, 0, len(byPurpose))
		for _, u := range byPurpose {
			rows = append(rows, usageCells(u))
			total.Calls += u.Calls
			total.Failures += u.Failures
			total.InputTokens += u.InputTokens
			total.OutputTokens += u.OutputTokens
		}
		total.Key = "total"
		writeTable(out, []string{"Purpose", "Calls", "Failed", "Input", "Output"}, rows, usageCells(total)...)

		var (
			sum     float64
			unknown []string
		)
		rows = rows[:0]
		for _, u := range byModel {
			cost := "?"
			if usd, ok := llm.EstimateCost(u.Key, llm.Usage{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}); ok {
				sum += usd
				cost = dollars(usd)
			} else {
				unknown = append(unknown, u.Key)
			}
			rows = append(rows, []string{truncate(u.Key, 32), strconv.Itoa(u.Calls), cost})
		}
		fmt.Fprintln(out)
		writeTable(out, []string{"Model", "Calls", "Est. cost"}, rows, "total", "", dollars(sum))
		if len(unknown) > 0 {
			fmt.Fprintf(out, "\nNo price known for %s; the total leaves them out.\n", strings.Join(unknown, ", "))
		}
		return nil
	},
}

func usageCells(u store.LLMUsageRow) []string {
	return []string{
		u.Key,
		strconv.Itoa(u.Calls),
		strconv.Itoa(u.Failures),
		strconv.Itoa(u.InputTokens),
		strconv.Itoa(u.OutputTokens),
	}
}

func dollars(usd float64) string {
	if usd > 0 && usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmLogCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmLogCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (chat-ask, chat-agent)")

	llmCmd.AddCommand(llmLogCmd, llmShowCmd, llmUsageCmd)
}
