package subtitle

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// SubRip format, translations written after a blank line
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "Recite Export",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Serialize renders cues as SRT text that Parse reads back, translations
// included with the blank-line convention. Declared indices are kept.
func Serialize(cues []Cue) string {
	var sb strings.Builder
	for _, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", cue.Index))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(cue.Start),
			FormatTimestamp(cue.End)))
		sb.WriteString(cue.Text)
		sb.WriteString("\n")

		if tr := cue.DisplayTranslation(); tr != "" {
			sb.WriteString("\n")
			sb.WriteString(tr)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// writes the cues to an SRT file
func (w *SRTWriter) Write(cues []Cue, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Serialize(cues)), 0644)
}

// writes the cues to a VTT file, translation on the following lines
func (w *VTTWriter) Write(cues []Cue, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(cue.Start),
			formatVTTTime(cue.End)))
		sb.WriteString(cue.Text)
		if tr := cue.DisplayTranslation(); tr != "" {
			sb.WriteString("\n")
			sb.WriteString(strings.ReplaceAll(tr, "\n\n", "\n"))
		}
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// writes the cues to an ASS file
func (w *ASSWriter) Write(cues []Cue, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, cue := range cues {
		text := cue.Text
		if tr := cue.DisplayTranslation(); tr != "" {
			text += "\n" + tr
		}
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(cue.Start),
			formatASSTime(cue.End),
			escapeASSText(text)))
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// splits seconds into h, m, s, ms rounded to the millisecond
func clockParts(sec float64) (int, int, int, int) {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int64(math.Round(sec * 1000))
	ms := int(total % 1000)
	s := int(total/1000) % 60
	m := int(total/60000) % 60
	h := int(total / 3600000)
	return h, m, s, ms
}

// HH:MM:SS,mmm
func FormatTimestamp(sec float64) string {
	h, m, s, ms := clockParts(sec)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(sec float64) string {
	h, m, s, ms := clockParts(sec)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(sec float64) string {
	h, m, s, ms := clockParts(sec)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\n\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// export format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return FormatVTT
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
