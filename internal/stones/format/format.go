// Package format renders plan results as plain text tables.
package format

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/rsned/stone-planner-server/pkg/stones"
)

// Result writes a human-readable report of res to w.
func Result(w io.Writer, res *stones.PlanResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	status := "success"
	if !res.Success {
		status = "failed"
	}
	fmt.Fprintf(tw, "Plan %s: %s", orDash(res.PlanID), status)
	if res.Strategy != "" {
		fmt.Fprintf(tw, " via %s", res.Strategy)
	}
	fmt.Fprintf(tw, " in %sms\n", humanize.Comma(res.ElapsedMs))
	if res.Reason != "" {
		fmt.Fprintf(tw, "Reason: %s\n", res.Reason)
	}

	plan := res.Plan
	if plan == nil {
		return tw.Flush()
	}

	fmt.Fprintf(tw, "Sockets: %d of %d defensive, merges: %s\n\n",
		plan.SocketsUsed, plan.SocketsAvailableDefensive, humanize.Comma(int64(plan.MergesUsed)))

	fmt.Fprintln(tw, "#\tStone\tSource\tMerges\tContribution")
	for i, s := range plan.Sockets {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", i+1, s.Label, s.Source, s.MergeCost, statList(s.Contribution))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Stat\tGoal\tAchieved")
	for _, stat := range sortedKeys(plan.Goals) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", stat, num(plan.Goals[stat]), num(plan.Achieved[stat]))
	}

	if len(plan.Merges) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Merge\tParts\tCost")
		for _, m := range plan.Merges {
			parts := []string{m.Primary, m.Secondary}
			if m.Tertiary != "" {
				parts = append(parts, m.Tertiary)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Type, strings.Join(parts, " + "), m.Cost)
		}
	}

	if len(plan.MissingL7) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Missing L7 stones: %s\n", countList(plan.MissingL7))
	}

	return tw.Flush()
}

func num(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func statList(m map[string]float64) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, k+" "+num(m[k]))
	}
	return strings.Join(parts, ", ")
}

func countList(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s x%s", k, humanize.Comma(int64(m[k]))))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
