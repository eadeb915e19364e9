package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mgpai22/recite/internal/media"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "List videos in a library and whether they have subtitles",
	Long: `Walk a directory recursively and list every video found, with the
matching subtitle file when one sits next to it.

Without an argument the active library is scanned (see 'recite library').

Examples:
  recite scan ~/Videos/lessons
  recite scan --missing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().
		Bool("missing", false, "Only list videos without a subtitle")
}

func runScan(cmd *cobra.Command, args []string) error {
	missing, _ := cmd.Flags().GetBool("missing")

	var root string
	if len(args) == 1 {
		root = args[0]
	} else {
		p, err := openStore().Load(cmd.Context())
		if err != nil {
			return err
		}
		lib := p.CurrentLibrary()
		if lib == nil {
			return fmt.Errorf("no library selected: pass a directory or run 'recite library add <dir>'")
		}
		root = lib.Path
	}

	videos, err := media.CollectVideos(root)
	if err != nil {
		return err
	}
	logger.Debugw("Scanned library", "root", root, "videos", len(videos))

	rows := make([][]string, 0, len(videos))
	withSubs := 0
	for _, v := range videos {
		sub := "-"
		if v.HasSubtitle() {
			withSubs++
			if missing {
				continue
			}
			sub = filepath.Base(v.Subtitle)
		}
		rows = append(rows, []string{v.RelPath, sub, humanize.IBytes(uint64(v.Size))})
	}

	out := cmd.OutOrStdout()
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Video", "Subtitle", "Size"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		))
	}
	fmt.Fprintf(out, "%d videos, %d with subtitles\n", len(videos), withSubs)
	return nil
}
