package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/journal"
	"github.com/roach88/multistore/internal/queryir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal   string
	FlowToken string
	Action    string // optional action type filter
	Digest    string // optional action digest filter
	Status    string
	Changed   string
	Paused    string
	After     int64
	Limit     int
	ListFlows bool
}

// TraceRound is one journaled round in the timeline.
type TraceRound struct {
	Seq        int64          `json:"seq"`
	ID         string         `json:"id"`
	FlowToken  string         `json:"flow_token"`
	Attempt    int            `json:"attempt"`
	ActionType string         `json:"action_type"`
	Action     ir.IRObject    `json:"action"`
	Status     journal.Status `json:"status"`
	Stores     []string       `json:"stores"`
	Changed    []string       `json:"changed"`
	Paused     []string       `json:"paused"`
	Error      string         `json:"error,omitempty"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Rounds    int `json:"rounds"`
	Committed int `json:"committed"`
	Paused    int `json:"paused"`
	Failed    int `json:"failed"`
	Flows     int `json:"flows"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	FlowToken string       `json:"flow_token,omitempty"`
	Timeline  []TraceRound `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled rounds",
		Long: `Show the rounds recorded in a round journal.

Without --flow every round is shown in seq order. With --flow only the
rounds of that dispatch are shown: its first round, any resume rounds, and
the final commit or failure.

Examples:
  multistore trace --journal ./rounds.db
  multistore trace --journal ./rounds.db --flow 019237a4-...
  multistore trace --journal ./rounds.db --action INC --format json
  multistore trace --journal ./rounds.db --action-digest 5f1c...
  multistore trace --journal ./rounds.db --status paused --paused counter
  multistore trace --journal ./rounds.db --list-flows`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite round journal (overrides MULTISTORE_JOURNAL)")
	cmd.Flags().StringVar(&opts.FlowToken, "flow", "", "flow token to trace")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to one action type")
	cmd.Flags().StringVar(&opts.Digest, "action-digest", "", "filter to one action by content digest")
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by round status (committed, paused, failed)")
	cmd.Flags().StringVar(&opts.Changed, "changed", "", "only rounds that committed this store")
	cmd.Flags().StringVar(&opts.Paused, "paused", "", "only rounds in which this store paused")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only rounds after this seq")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of rounds (0 = all)")
	cmd.Flags().BoolVar(&opts.ListFlows, "list-flows", false, "list flow tokens instead of rounds")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	query, err := opts.query()
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidQuery, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	path := opts.Journal
	if path == "" {
		path = opts.Config.Journal
	}
	if path == "" {
		_ = formatter.Error(ErrCodeJournal, "no journal: pass --journal or set MULTISTORE_JOURNAL", nil)
		return NewExitError(ExitCommandError, "no journal given")
	}
	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("journal not found: %s", path), nil)
		return WrapExitError(ExitCommandError, "journal not found", err)
	}

	j, err := journal.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.ListFlows {
		return listFlows(ctx, j, formatter)
	}

	rounds, err := j.Query(ctx, query)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := buildTrace(opts.FlowToken, rounds)
	if formatter.JSON() {
		return formatter.Success(result, "")
	}
	return outputTraceText(formatter, result)
}

// query turns the filter flags into a round query.
func (o *TraceOptions) query() (queryir.Select, error) {
	var preds []queryir.Predicate
	if o.FlowToken != "" {
		preds = append(preds, queryir.Equals{Field: queryir.FieldFlowToken, Value: ir.IRString(o.FlowToken)})
	}
	if o.Action != "" {
		preds = append(preds, queryir.Equals{Field: queryir.FieldActionType, Value: ir.IRString(o.Action)})
	}
	if o.Digest != "" {
		preds = append(preds, queryir.Equals{Field: queryir.FieldActionDigest, Value: ir.IRString(o.Digest)})
	}
	if o.Status != "" {
		switch journal.Status(o.Status) {
		case journal.StatusCommitted, journal.StatusPaused, journal.StatusFailed:
		default:
			return queryir.Select{}, fmt.Errorf("unknown status %q (expected committed, paused or failed)", o.Status)
		}
		preds = append(preds, queryir.Equals{Field: queryir.FieldStatus, Value: ir.IRString(o.Status)})
	}
	if o.Changed != "" {
		preds = append(preds, queryir.Includes{Field: queryir.FieldChanged, Name: o.Changed})
	}
	if o.Paused != "" {
		preds = append(preds, queryir.Includes{Field: queryir.FieldPaused, Name: o.Paused})
	}
	if o.After > 0 {
		preds = append(preds, queryir.SeqAfter{Seq: o.After})
	}

	sel := queryir.Select{Filter: queryir.All(preds...), Limit: o.Limit}
	if err := queryir.Validate(sel); err != nil {
		return queryir.Select{}, err
	}
	return sel, nil
}

// buildTrace turns journaled rounds into a timeline with summary stats.
func buildTrace(flowToken string, rounds []journal.Round) TraceResult {
	result := TraceResult{FlowToken: flowToken, Timeline: []TraceRound{}}
	flows := make(map[string]bool)

	for _, r := range rounds {
		result.Timeline = append(result.Timeline, TraceRound{
			Seq:        r.Seq,
			ID:         r.ID(),
			FlowToken:  r.FlowToken,
			Attempt:    r.Attempt,
			ActionType: r.ActionType,
			Action:     r.Action,
			Status:     r.Status,
			Stores:     r.Stores,
			Changed:    r.Changed,
			Paused:     r.Paused,
			Error:      r.Error,
		})
		flows[r.FlowToken] = true

		switch r.Status {
		case journal.StatusCommitted:
			result.Stats.Committed++
		case journal.StatusPaused:
			result.Stats.Paused++
		case journal.StatusFailed:
			result.Stats.Failed++
		}
	}
	result.Stats.Rounds = len(result.Timeline)
	result.Stats.Flows = len(flows)
	return result
}

func outputTraceText(formatter *OutputFormatter, result TraceResult) error {
	w := formatter.Writer
	if len(result.Timeline) == 0 {
		if result.FlowToken != "" {
			fmt.Fprintf(w, "No rounds found for flow: %s\n", result.FlowToken)
		} else {
			fmt.Fprintln(w, "No rounds found.")
		}
		return nil
	}

	if result.FlowToken != "" {
		fmt.Fprintf(w, "Flow: %s\n\n", result.FlowToken)
	}
	for _, r := range result.Timeline {
		fmt.Fprintf(w, "[%d] %s %s attempt=%d %s\n", r.Seq, r.FlowToken, r.ActionType, r.Attempt, r.Status)
		fmt.Fprintf(w, "     stores:  %s\n", strings.Join(r.Stores, ", "))
		if len(r.Changed) > 0 {
			fmt.Fprintf(w, "     changed: %s\n", strings.Join(r.Changed, ", "))
		}
		if len(r.Paused) > 0 {
			fmt.Fprintf(w, "     paused:  %s\n", strings.Join(r.Paused, ", "))
		}
		if r.Error != "" {
			fmt.Fprintf(w, "     error:   %s\n", r.Error)
		}
	}

	s := result.Stats
	fmt.Fprintf(w, "\n%d round(s) in %d flow(s): %d committed, %d paused, %d failed\n",
		s.Rounds, s.Flows, s.Committed, s.Paused, s.Failed)
	return nil
}

func listFlows(ctx context.Context, j *journal.Journal, formatter *OutputFormatter) error {
	flows, err := j.Flows(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	return formatter.Success(map[string]any{"flows": flows}, strings.Join(flows, "\n"))
}
