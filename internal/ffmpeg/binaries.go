// Package ffmpeg locates the ffmpeg and ffprobe executables.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	envFFmpegPath  = "RECITE_FFMPEG_PATH"
	envFFprobePath = "RECITE_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves both binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = resolve(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// env override first, then PATH
func resolve(
	getenv func(string) string,
	lookPath func(string) (string, error),
) (BinaryPaths, error) {
	ffmpegPath, err := locate("ffmpeg", envFFmpegPath, getenv, lookPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	ffprobePath, err := locate("ffprobe", envFFprobePath, getenv, lookPath)
	if err != nil {
		return BinaryPaths{}, err
	}
	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func locate(
	name, env string,
	getenv func(string) string,
	lookPath func(string) (string, error),
) (string, error) {
	if p := getenv(env); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s=%s: %w", env, p, err)
		}
		return p, nil
	}

	found, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf(
			"%s not found in PATH: install it or set %s",
			name,
			env,
		)
	}
	return found, nil
}
