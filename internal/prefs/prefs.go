// Package prefs persists user state between runs: the last repeat preset,
// subtitle visibility and the media libraries.
package prefs

import (
	"path/filepath"
	"strings"
)

// Library is a directory of videos the user has registered.
type Library struct {
	Path string `toml:"path"`
	Name string `toml:"name"`
}

// Prefs is the on-disk state file.
type Prefs struct {
	RepeatPreset     string    `toml:"repeat_preset"`
	SubtitlesVisible bool      `toml:"subtitles_visible"`
	Libraries        []Library `toml:"libraries"`
	// index into Libraries, -1 when none is active
	ActiveLibrary int `toml:"active_library"`
}

func Default() Prefs {
	return Prefs{
		RepeatPreset:     "1",
		SubtitlesVisible: true,
		ActiveLibrary:    -1,
	}
}

// AddLibrary registers path and makes it active. Adding a path that is
// already registered only selects it.
func (p *Prefs) AddLibrary(path string) Library {
	path = filepath.Clean(path)
	for i, lib := range p.Libraries {
		if lib.Path == path {
			p.ActiveLibrary = i
			return lib
		}
	}

	lib := Library{Path: path, Name: filepath.Base(path)}
	p.Libraries = append(p.Libraries, lib)
	p.ActiveLibrary = len(p.Libraries) - 1
	return lib
}

// RemoveLibrary drops the library at index. The active selection moves to
// the first library when the active one is removed, and shifts down when
// an earlier one is.
func (p *Prefs) RemoveLibrary(index int) bool {
	if index < 0 || index >= len(p.Libraries) {
		return false
	}

	p.Libraries = append(p.Libraries[:index], p.Libraries[index+1:]...)

	switch {
	case p.ActiveLibrary == index:
		if len(p.Libraries) > 0 {
			p.ActiveLibrary = 0
		} else {
			p.ActiveLibrary = -1
		}
	case p.ActiveLibrary > index:
		p.ActiveLibrary--
	}
	return true
}

func (p *Prefs) SelectLibrary(index int) bool {
	if index < 0 || index >= len(p.Libraries) {
		return false
	}
	p.ActiveLibrary = index
	return true
}

// FindLibrary returns the index of the library with the given path or
// name (case-insensitive), or -1.
func (p *Prefs) FindLibrary(nameOrPath string) int {
	cleaned := filepath.Clean(nameOrPath)
	for i, lib := range p.Libraries {
		if lib.Path == cleaned || strings.EqualFold(lib.Name, nameOrPath) {
			return i
		}
	}
	return -1
}

// active library or nil
func (p *Prefs) CurrentLibrary() *Library {
	if p.ActiveLibrary < 0 || p.ActiveLibrary >= len(p.Libraries) {
		return nil
	}
	lib := p.Libraries[p.ActiveLibrary]
	return &lib
}

func (p *Prefs) normalize() {
	if p.ActiveLibrary < -1 || p.ActiveLibrary >= len(p.Libraries) {
		p.ActiveLibrary = -1
	}
	if len(p.Libraries) > 0 && p.ActiveLibrary == -1 {
		p.ActiveLibrary = 0
	}
	if strings.TrimSpace(p.RepeatPreset) == "" {
		p.RepeatPreset = Default().RepeatPreset
	}
}
