// Package media finds videos and their subtitles on disk and wraps the
// ffmpeg tooling used to probe them and pull out audio.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var videoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".mov":  true,
}

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// Video is a playable file found in a library.
type Video struct {
	Path     string
	RelPath  string
	Name     string
	Size     int64
	ModTime  time.Time
	Subtitle string // matching .srt, empty when none
}

func (v Video) HasSubtitle() bool {
	return v.Subtitle != ""
}

// FindSubtitle returns the .srt next to videoPath that shares its base
// name, ignoring case.
func FindSubtitle(videoPath string) (string, bool) {
	dir := filepath.Dir(videoPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	return matchSubtitle(videoPath, entries)
}

func matchSubtitle(videoPath string, entries []fs.DirEntry) (string, bool) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	want := base + ".srt"

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), want) {
			return filepath.Join(filepath.Dir(videoPath), e.Name()), true
		}
	}
	return "", false
}

// CollectVideos walks root and returns every video below it, sorted by
// path, each paired with its subtitle when one exists. Unreadable
// subdirectories are skipped.
func CollectVideos(root string) ([]Video, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("library not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library is not a directory: %s", root)
	}

	var videos []Video
	dirEntries := map[string][]fs.DirEntry{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsVideoFile(path) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		rel, _ := filepath.Rel(root, path)
		v := Video{
			Path:    path,
			RelPath: rel,
			Name:    d.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}

		dir := filepath.Dir(path)
		entries, ok := dirEntries[dir]
		if !ok {
			entries, _ = os.ReadDir(dir)
			dirEntries[dir] = entries
		}
		if sub, ok := matchSubtitle(path, entries); ok {
			v.Subtitle = sub
		}

		videos = append(videos, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan library: %w", err)
	}

	sort.Slice(videos, func(i, j int) bool {
		return videos[i].Path < videos[j].Path
	})
	return videos, nil
}
