package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgpai22/recite/internal/clock"
	"github.com/mgpai22/recite/internal/logging"
	"github.com/mgpai22/recite/internal/media"
	"github.com/mgpai22/recite/internal/player"
	"github.com/mgpai22/recite/internal/prefs"
	"github.com/mgpai22/recite/internal/subtitle"
	"github.com/spf13/cobra"
)

const (
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

var playCmd = &cobra.Command{
	Use:   "play [subtitle_or_media_file]",
	Short: "Drill a subtitle file cue by cue",
	Long: `Play a subtitle file on a simulated media clock, replaying each cue
until it has been heard the chosen number of times.

The argument may be an .srt file or a video/audio file. For media files
the subtitle with the same base name next to it is used, and the media
length is read with ffprobe.

By default playback runs as fast as possible and prints each cue as it
becomes active. Use --realtime to pace it against the wall clock; on a
terminal, realtime playback then reads one command per line:

  (enter) play/pause   n next cue      p previous cue   g N go to cue N
  f skip forward       b skip back     h hide/show      r N|inf repeat
  t TEXT own translation for the current cue            q quit

Examples:
  recite play lesson.srt
  recite play lesson.mp4 --repeat 3
  recite play lesson.srt --repeat infinite --realtime
  recite play lesson.srt --start-cue 12 --rate 0.75`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		StringP("repeat", "r", "", "Plays per cue: a positive number or 'infinite' (default: last used)")
	playCmd.Flags().
		Float64("rate", 0, "Playback rate (default from config)")
	playCmd.Flags().
		Bool("realtime", false, "Pace playback against the wall clock")
	playCmd.Flags().
		Int("max-steps", 0, "Stop after this many clock ticks (0 = until the media ends)")
	playCmd.Flags().
		Int("start-cue", 0, "Start at this cue number (1-based)")
	playCmd.Flags().
		Bool("hidden", false, "Hide cue text while the repeat timing keeps running")
	playCmd.Flags().
		Float64("duration", 0, "Media length in seconds (default: probed, or the last cue's end)")
	playCmd.Flags().
		Bool("save-translations", false, "Write translations typed during playback back to the subtitle file")
	playCmd.Flags().
		Bool("no-save", false, "Do not remember the repeat preset and visibility")
}

type playOptions struct {
	SubtitlePath string
	Duration     float64
	Repeat       player.RepeatTarget
	Rate         float64
	Tick         time.Duration
	Realtime     bool
	MaxSteps     int
	StartCue     int
	Hidden       bool
	Skip         float64
	// line commands, read only in realtime mode
	In io.Reader
	// where to write cues carrying user translations, empty to discard
	SaveTo string
}

type playSummary struct {
	Cues     int
	Repeats  int
	Position float64
	Ended    bool
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	inputPath := args[0]

	if err := fileExists(inputPath); err != nil {
		return err
	}

	repeatFlag, _ := cmd.Flags().GetString("repeat")
	rate, _ := cmd.Flags().GetFloat64("rate")
	realtime, _ := cmd.Flags().GetBool("realtime")
	maxSteps, _ := cmd.Flags().GetInt("max-steps")
	startCue, _ := cmd.Flags().GetInt("start-cue")
	hidden, _ := cmd.Flags().GetBool("hidden")
	duration, _ := cmd.Flags().GetFloat64("duration")
	noSave, _ := cmd.Flags().GetBool("no-save")
	saveTranslations, _ := cmd.Flags().GetBool("save-translations")

	sessionID := uuid.NewString()
	log := logger.With("session", sessionID)

	subtitlePath, probed, err := resolvePlayInput(ctx, inputPath, log)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = probed
	}

	store := openStore()
	saved, err := store.Load(ctx)
	if err != nil {
		log.Warnw("Could not read saved state, using defaults", "error", err)
		saved = prefs.Default()
	}
	if _, statErr := os.Stat(store.Path()); statErr != nil {
		saved.RepeatPreset = cfg.Playback.Repeat
	}

	preset := saved.RepeatPreset
	if cmd.Flags().Changed("repeat") {
		preset = repeatFlag
	}
	target, err := player.ParseRepeatTarget(preset)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("rate") {
		rate = cfg.Playback.Rate
	}
	if !cmd.Flags().Changed("hidden") {
		hidden = !saved.SubtitlesVisible
	}

	opts := playOptions{
		SubtitlePath: subtitlePath,
		Duration:     duration,
		Repeat:       target,
		Rate:         rate,
		Tick:         time.Duration(cfg.Playback.TickIntervalMS) * time.Millisecond,
		Realtime:     realtime,
		MaxSteps:     maxSteps,
		StartCue:     startCue,
		Hidden:       hidden,
		Skip:         cfg.Playback.SkipSeconds,
	}
	if saveTranslations {
		opts.SaveTo = subtitlePath
	}
	if realtime && isTerminal(os.Stdin) {
		opts.In = os.Stdin
		fmt.Println(playHelp)
	}

	log.Infow("Starting playback",
		"subtitle", subtitlePath,
		"repeat", target.String(),
		"rate", rate,
		"realtime", realtime,
	)

	summary, err := runPlayback(ctx, opts, os.Stdout, log)
	if err != nil {
		return err
	}

	if !noSave && (cmd.Flags().Changed("repeat") || cmd.Flags().Changed("hidden")) {
		if _, err := store.Update(ctx, func(p *prefs.Prefs) error {
			p.RepeatPreset = target.String()
			p.SubtitlesVisible = !hidden
			return nil
		}); err != nil {
			log.Warnw("Failed to save playback preferences", "error", err)
		}
	}

	log.Infow("Playback finished",
		"cues", summary.Cues,
		"repeats", summary.Repeats,
		"position", subtitle.FormatTimestamp(summary.Position),
		"ended", summary.Ended,
	)
	return nil
}

// resolvePlayInput maps a media file to its sibling subtitle and probes its
// length. Subtitle files are returned as is with no length.
func resolvePlayInput(ctx context.Context, path string, log *logging.Logger) (string, float64, error) {
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		return path, 0, nil
	}
	if !media.IsMediaFile(path) {
		return "", 0, fmt.Errorf("unsupported file type: %s (expected .srt or a media file)", filepath.Ext(path))
	}

	subtitlePath, ok := media.FindSubtitle(path)
	if !ok {
		return "", 0, fmt.Errorf("no subtitle found for %s: run 'recite transcribe' first", path)
	}

	length, err := media.Duration(ctx, path)
	if err != nil {
		log.Warnw("Could not probe media length, using the last cue's end", "error", err)
		return subtitlePath, 0, nil
	}
	return subtitlePath, length.Seconds(), nil
}

func runPlayback(ctx context.Context, opts playOptions, out io.Writer, log *logging.Logger) (playSummary, error) {
	cues, err := subtitle.ParseFile(opts.SubtitlePath)
	if err != nil {
		return playSummary{}, err
	}
	if len(cues) == 0 {
		return playSummary{}, fmt.Errorf("no cues found in %s", opts.SubtitlePath)
	}
	if opts.Tick <= 0 {
		opts.Tick = 50 * time.Millisecond
	}
	if opts.Rate <= 0 {
		opts.Rate = 1
	}

	length := opts.Duration
	if length <= 0 {
		length = lastCueEnd(cues) + 0.5
	}

	sim := clock.NewSim(
		clock.WithDuration(length),
		clock.WithRate(opts.Rate),
		clock.WithSyncSeekTicks(true),
	)

	printer := &cuePrinter{w: out, color: isTerminal(out)}
	ctrl, err := player.New(sim,
		player.WithListener(printer),
		player.WithLogger(log),
		player.WithRepeatTarget(opts.Repeat),
		player.WithVisible(!opts.Hidden),
	)
	if err != nil {
		return playSummary{}, err
	}

	sim.OnTick(ctrl.Tick)
	sim.OnEnded(ctrl.HandleEnded)
	ctrl.Load(cues)
	ctrl.TogglePlayPause()

	if opts.StartCue > 0 && !ctrl.GoToCue(opts.StartCue-1) {
		return playSummary{}, fmt.Errorf("start cue %d out of range (1-%d)", opts.StartCue, len(cues))
	}

	switch {
	case opts.Realtime && opts.In != nil:
		err = driveInteractive(ctx, sim, ctrl, opts, out)
	case opts.Realtime:
		err = sim.Run(ctx, opts.Tick)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	default:
		maxSteps := opts.MaxSteps
		if maxSteps <= 0 {
			if opts.Repeat.IsInfinite() {
				return playSummary{}, fmt.Errorf("infinite repeat needs --realtime or --max-steps")
			}
			maxSteps = stepBudget(length, opts.Repeat, opts.Tick, opts.Rate)
		}
		_, err = sim.RunSteps(ctx, opts.Tick, maxSteps)
	}
	if err != nil {
		return playSummary{}, fmt.Errorf("playback stopped: %w", err)
	}

	if opts.SaveTo != "" && hasUserTranslations(ctrl.Cues()) {
		if err := os.WriteFile(opts.SaveTo, []byte(subtitle.Serialize(ctrl.Cues())), 0o644); err != nil {
			return playSummary{}, fmt.Errorf("failed to save translations: %w", err)
		}
		log.Infow("Saved user translations", "path", opts.SaveTo)
	}

	return playSummary{
		Cues:     printer.cues,
		Repeats:  printer.repeats,
		Position: sim.CurrentTime(),
		Ended:    sim.Ended(),
	}, nil
}

// enough ticks to hear the whole file target times, with headroom
func stepBudget(length float64, target player.RepeatTarget, tick time.Duration, rate float64) int {
	perPass := length / (tick.Seconds() * rate)
	return int(math.Ceil(perPass*float64(target))) + 100
}

func hasUserTranslations(cues []subtitle.Cue) bool {
	for _, cue := range cues {
		if cue.UserTranslation != "" {
			return true
		}
	}
	return false
}

func lastCueEnd(cues []subtitle.Cue) float64 {
	end := 0.0
	for _, cue := range cues {
		end = max(end, cue.End)
	}
	return end
}

// prints cue changes and repeats as they happen
type cuePrinter struct {
	w       io.Writer
	color   bool
	cues    int
	repeats int
}

func (p *cuePrinter) ActiveCueChanged(cue *subtitle.Cue) {
	if cue == nil {
		return
	}
	p.cues++

	stamp := "[" + subtitle.FormatTimestamp(cue.Start) + "]"
	text := strings.ReplaceAll(cue.Text, "\n", " ")
	if p.color {
		stamp = ansiDim + stamp + ansiReset
		text = ansiBold + text + ansiReset
	}
	fmt.Fprintf(p.w, "%s #%d %s\n", stamp, cue.Index, text)

	if tr := cue.DisplayTranslation(); tr != "" {
		tr = strings.ReplaceAll(tr, "\n", " ")
		if p.color {
			tr = ansiCyan + tr + ansiReset
		}
		fmt.Fprintf(p.w, "    %s\n", tr)
	}
}

func (p *cuePrinter) RepeatStateChanged(state player.RepeatState) {
	if state.RepeatsSoFar == 0 {
		return
	}
	p.repeats++
	fmt.Fprintf(p.w, "    play %d of %s\n", state.RepeatsSoFar+1, state.RepeatTarget)
}
