package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/okian/hoopmatch/internal/domain/types"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q: want table, json or yaml", f)
}

// render writes v to the command output in the selected format.
func (c *cli) render(v any) error {
	switch c.output {
	case formatJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		b, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = c.out.Write(b)
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	writeTable(tw, v)
	return tw.Flush()
}

// toYAML renders v with its JSON field names and order.
func toYAML(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	blockStyle(&node)
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// blockStyle clears the flow and quoting styles JSON input decodes with.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

func writeTable(w io.Writer, v any) {
	switch x := v.(type) {
	case types.SimilarResponse:
		if x.Target != nil {
			fmt.Fprintf(w, "Target:\t%s (%s)\tCareer Score %.2f\tRank %d\n", x.Target.Player, x.Target.Pos, x.Target.CareerScore, x.Target.Rank)
			fmt.Fprintln(w)
		}
		if len(x.Results) == 0 {
			fmt.Fprintln(w, x.Message)
			return
		}
		fmt.Fprintln(w, "#\tPLAYER\tPOS\tCAREER SCORE\tDIFFERENCE\tSIMILARITY\tKEY STATS")
		for i, r := range x.Results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.3f\t%.1f%%\t%s\n", i+1, r.Player, r.Pos, r.CareerScore, r.ScoreDifference, r.ScoreSimilarity, keyStats(r.KeyStats))
		}
	case types.PlayerProfile:
		fmt.Fprintf(w, "Player:\t%s\n", x.Player)
		fmt.Fprintf(w, "Position:\t%s\n", x.Pos)
		fmt.Fprintf(w, "Career Score:\t%.2f\n", x.CareerScore)
		fmt.Fprintf(w, "Rank:\t%d\n", x.Rank)
		for _, s := range x.KeyStats {
			fmt.Fprintf(w, "%s:\t%s\n", s.Name, s.Value)
		}
	case types.DatasetSummary:
		fmt.Fprintf(w, "Source:\t%s\n", x.Source)
		fmt.Fprintf(w, "Total players:\t%d\n", x.TotalPlayers)
		fmt.Fprintf(w, "Available columns:\t%d\n", x.AvailableColumns)
		fmt.Fprintf(w, "Numeric columns:\t%s\n", strings.Join(x.NumericColumns, ", "))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "POS\tPLAYERS")
		for _, p := range x.Positions {
			fmt.Fprintf(w, "%s\t%d\n", p.Pos, p.Count)
		}
		fmt.Fprintln(w)
		writeEntries(w, x.Top)
	case []types.PlayerSummary:
		fmt.Fprintln(w, "PLAYER\tPOS")
		for _, p := range x {
			fmt.Fprintf(w, "%s\t%s\n", p.Player, p.Pos)
		}
	case []types.Entry:
		writeEntries(w, x)
	case probeReport:
		fmt.Fprintf(w, "Players:\t%d\n", x.Players)
		fmt.Fprintf(w, "Profiles retrieved:\t%d\n", x.ProfilesRetrieved)
		fmt.Fprintf(w, "Similar retrieved:\t%d\n", x.SimilarRetrieved)
		fmt.Fprintf(w, "Empty similar:\t%d\n", x.EmptySimilar)
		fmt.Fprintf(w, "Requests failed:\t%d\n", x.RequestsFailed)
		fmt.Fprintf(w, "Leaderboard entries:\t%d\n", x.LeaderboardEntries)
		fmt.Fprintf(w, "Duration:\t%s\n", x.Duration)
		for _, v := range x.Violations {
			fmt.Fprintf(w, "violation:\t%s\n", v)
		}
	default:
		fmt.Fprintf(w, "%v\n", v)
	}
}

func writeEntries(w io.Writer, entries []types.Entry) {
	fmt.Fprintln(w, "RANK\tPLAYER\tPOS\tCAREER SCORE")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", e.Rank, e.Player, e.Pos, e.CareerScore)
	}
}

func keyStats(stats []types.KeyStat) string {
	parts := make([]string, len(stats))
	for i, s := range stats {
		parts[i] = s.Name + " " + s.Value
	}
	return strings.Join(parts, ", ")
}
