package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/recite/internal/clock"
	"github.com/mgpai22/recite/internal/player"
)

const playHelp = "Commands: (enter) play/pause, n next, p previous, g N go to, f/b skip, h hide/show, r N|inf repeat, t TEXT translate, q quit"

// driveInteractive advances the clock on a ticker and applies one command
// per input line until q, end of input with the media ended, or ctx is done.
func driveInteractive(
	ctx context.Context,
	sim *clock.Sim,
	ctrl *player.Controller,
	opts playOptions,
	out io.Writer,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, opts.In)

	ticker := time.NewTicker(opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if quit := applyCommand(ctrl, line, opts.Skip, out); quit {
				return nil
			}
		case <-ticker.C:
			sim.Advance(opts.Tick.Seconds())
			if lines == nil && sim.Ended() {
				return nil
			}
		}
	}
}

// readLines sends each line of r until EOF or ctx is done, then closes the
// channel.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for ctx.Err() == nil && scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// applyCommand runs one playback command against ctrl and reports whether
// the user asked to quit.
func applyCommand(ctrl *player.Controller, line string, skip float64, out io.Writer) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		if ctrl.TogglePlayPause() {
			fmt.Fprintln(out, "playing")
		} else {
			fmt.Fprintln(out, "paused")
		}
	case "n", "next":
		ctrl.NextCue()
	case "p", "prev":
		if !ctrl.PreviousCue() {
			fmt.Fprintln(out, "already at the first cue")
		}
	case "g", "go":
		n, err := strconv.Atoi(arg)
		if err != nil || !ctrl.GoToCue(n-1) {
			fmt.Fprintf(out, "no cue %q (1-%d)\n", arg, len(ctrl.Cues()))
		}
	case "f":
		ctrl.SkipBy(skip)
	case "b":
		ctrl.SkipBy(-skip)
	case "h", "hide":
		if ctrl.ToggleVisible() {
			fmt.Fprintln(out, "subtitles shown")
		} else {
			fmt.Fprintln(out, "subtitles hidden")
		}
	case "r", "repeat":
		target, err := player.ParseRepeatTarget(arg)
		if err != nil {
			fmt.Fprintln(out, err)
			break
		}
		ctrl.SetRepeatTarget(target)
		fmt.Fprintf(out, "repeat %s\n", target)
	case "t", "translate":
		idx := ctrl.State().ActiveCueIndex
		if !ctrl.SetUserTranslation(idx, arg) {
			fmt.Fprintln(out, "no active cue")
		}
	case "q", "quit":
		return true
	default:
		fmt.Fprintln(out, playHelp)
	}
	return false
}
