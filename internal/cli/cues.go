package cli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/spf13/cobra"
)

const maxCellRunes = 48

var cuesCmd = &cobra.Command{
	Use:   "cues [subtitle_file]",
	Short: "List the cues of a subtitle file",
	Long: `Parse a subtitle file and print its cues as a table, including any
translation paragraph that follows a cue.

With --at, only the cue active at that time and the next cue starting
after it are shown.

Examples:
  recite cues lesson.srt
  recite cues lesson.srt --at 93.5`,
	Args: cobra.ExactArgs(1),
	RunE: runCues,
}

func init() {
	rootCmd.AddCommand(cuesCmd)

	cuesCmd.Flags().
		Float64("at", -1, "Show the cue active at this time in seconds")
}

func runCues(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	if err := fileExists(subtitlePath); err != nil {
		return err
	}

	at, _ := cmd.Flags().GetFloat64("at")

	cues, err := subtitle.ParseFile(subtitlePath)
	if err != nil {
		return err
	}
	logger.Debugw("Parsed subtitle file", "path", subtitlePath, "cues", len(cues))

	out := cmd.OutOrStdout()
	if len(cues) == 0 {
		fmt.Fprintln(out, "No cues found.")
		return nil
	}

	if cmd.Flags().Changed("at") {
		fmt.Fprint(out, describeCuesAt(cues, at))
		return nil
	}

	fmt.Fprintln(out, cueTable(cues))
	fmt.Fprintf(out, "%d cues, %d translated\n", len(cues), countTranslated(cues))
	return nil
}

func cueTable(cues []subtitle.Cue) string {
	rows := make([][]string, 0, len(cues))
	for _, cue := range cues {
		rows = append(rows, []string{
			strconv.Itoa(cue.Index),
			subtitle.FormatTimestamp(cue.Start),
			subtitle.FormatTimestamp(cue.End),
			truncateCell(cue.Text),
			truncateCell(cue.DisplayTranslation()),
		})
	}
	return renderTable(
		[]string{"#", "Start", "End", "Text", "Translation"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func describeCuesAt(cues []subtitle.Cue, t float64) string {
	var sb strings.Builder

	if idx := subtitle.FindActiveCue(cues, t); idx != -1 {
		fmt.Fprintf(&sb, "Active: #%d %s\n", cues[idx].Index, oneLine(cues[idx].Text))
	} else {
		sb.WriteString("Active: none\n")
	}

	if next := subtitle.FindNextCueAfter(cues, t); next != -1 {
		fmt.Fprintf(&sb, "Next:   #%d at %s %s\n",
			cues[next].Index,
			subtitle.FormatTimestamp(cues[next].Start),
			oneLine(cues[next].Text),
		)
	} else {
		sb.WriteString("Next:   none\n")
	}
	return sb.String()
}

func countTranslated(cues []subtitle.Cue) int {
	n := 0
	for _, cue := range cues {
		if cue.DisplayTranslation() != "" {
			n++
		}
	}
	return n
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateCell(s string) string {
	s = oneLine(s)
	if utf8.RuneCountInString(s) <= maxCellRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxCellRunes-1]) + "…"
}
