package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/recite/internal/ffmpeg"
	"github.com/mgpai22/recite/internal/workpool"
)

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// planChunks lays out consecutive windows of size over total
func planChunks(total, size time.Duration) []ChunkInfo {
	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := time.Duration(i) * size
		if start >= total {
			break
		}
		chunks = append(chunks, ChunkInfo{
			Index:     i,
			StartTime: start,
			EndTime:   min(start+size, total),
		})
	}
	return chunks
}

// ChunkAudio splits audioPath into pieces of chunkDuration under outputDir,
// cutting up to concurrency pieces at once.
func ChunkAudio(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}

	total, err := Duration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(audioPath)
	baseName := strings.TrimSuffix(filepath.Base(audioPath), ext)

	planned := planChunks(total, chunkDuration)
	for i := range planned {
		planned[i].Path = filepath.Join(
			outputDir,
			fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext),
		)
	}

	return workpool.Run(ctx, planned, concurrency,
		func(ctx context.Context, _ int, c ChunkInfo) (ChunkInfo, error) {
			stream := ffmpeg.Input(audioPath).
				Output(c.Path, ffmpeg.KwArgs{
					"ss": c.StartTime.Seconds(),
					"t":  (c.EndTime - c.StartTime).Seconds(),
					"c":  "copy",
				}).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath)

			if err := runStream(ctx, stream); err != nil {
				return ChunkInfo{}, fmt.Errorf("failed to create chunk %d: %w", c.Index, err)
			}
			return c, nil
		})
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
