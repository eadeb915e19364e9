package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mgpai22/recite/internal/prefs"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the video libraries recite remembers",
	Long: `Register directories of videos and choose the active one. The active
library is what 'recite scan' lists when no directory is given.

Examples:
  recite library add ~/Videos/spanish
  recite library list
  recite library use spanish
  recite library remove 2`,
}

var libraryAddCmd = &cobra.Command{
	Use:   "add [directory]",
	Short: "Register a directory and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("library not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("library must be a directory: %s", abs)
		}

		var added prefs.Library
		if _, err := openStore().Update(cmd.Context(), func(p *prefs.Prefs) error {
			added = p.AddLibrary(abs)
			return nil
		}); err != nil {
			return err
		}

		logger.Infow("Library added", "name", added.Name, "path", added.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "Active library: %s (%s)\n", added.Name, added.Path)
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered libraries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore().Load(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(p.Libraries) == 0 {
			fmt.Fprintln(out, "No libraries registered.")
			return nil
		}

		rows := make([][]string, 0, len(p.Libraries))
		for i, lib := range p.Libraries {
			active := ""
			if i == p.ActiveLibrary {
				active = "*"
			}
			rows = append(rows, []string{strconv.Itoa(i + 1), active, lib.Name, lib.Path})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Active", "Name", "Path"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		))
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove [name|path|number]",
	Short: "Forget a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var removed prefs.Library
		if _, err := openStore().Update(cmd.Context(), func(p *prefs.Prefs) error {
			idx, err := resolveLibrary(p, args[0])
			if err != nil {
				return err
			}
			removed = p.Libraries[idx]
			p.RemoveLibrary(idx)
			return nil
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed library: %s\n", removed.Name)
		return nil
	},
}

var libraryUseCmd = &cobra.Command{
	Use:   "use [name|path|number]",
	Short: "Make a library active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openStore().Update(cmd.Context(), func(p *prefs.Prefs) error {
			idx, err := resolveLibrary(p, args[0])
			if err != nil {
				return err
			}
			p.SelectLibrary(idx)
			return nil
		})
		if err != nil {
			return err
		}

		lib := p.CurrentLibrary()
		fmt.Fprintf(cmd.OutOrStdout(), "Active library: %s (%s)\n", lib.Name, lib.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryAddCmd, libraryListCmd, libraryRemoveCmd, libraryUseCmd)
}

// resolveLibrary accepts a 1-based number, a name or a path
func resolveLibrary(p *prefs.Prefs, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(p.Libraries) {
			return -1, fmt.Errorf("library number %d out of range (1-%d)", n, len(p.Libraries))
		}
		return n - 1, nil
	}

	idx := p.FindLibrary(ref)
	if idx == -1 {
		if abs, err := filepath.Abs(ref); err == nil {
			idx = p.FindLibrary(abs)
		}
	}
	if idx == -1 {
		return -1, fmt.Errorf("no library named %q", ref)
	}
	return idx, nil
}
