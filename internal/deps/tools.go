package deps

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"aaxconv/internal/config"
	"aaxconv/internal/services"
)

// Tools holds resolved executable paths. Optional tools are empty when absent.
type Tools struct {
	FFmpeg    string
	FFprobe   string
	Mediainfo string
	MP4Art    string
	MP4Chaps  string
}

// Requirements lists the tools described by cfg. SearchPath only applies to
// ffmpeg and ffprobe; helper tools always come from PATH.
func Requirements(cfg config.Tools) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpeg, SearchPath: cfg.SearchPath, Description: "Decrypts, transcodes, and muxes audio"},
		{Name: "FFprobe", Command: cfg.FFprobe, SearchPath: cfg.SearchPath, Description: "Reads tags, streams, and chapters"},
		{Name: "MediaInfo", Command: cfg.Mediainfo, Optional: true, Description: "Adds narrator and publisher tags"},
		{Name: "mp4art", Command: cfg.MP4Art, Optional: true, Description: "Embeds cover art in MP4 outputs"},
		{Name: "mp4chaps", Command: cfg.MP4Chaps, Optional: true, Description: "Writes chapter tables into MP4 outputs"},
	}
}

// Resolve checks every tool and returns their paths. A missing required tool
// yields an ErrExternalTool error; the statuses are returned either way.
func Resolve(cfg config.Tools) (Tools, []Status, error) {
	statuses := CheckBinaries(Requirements(cfg))
	var tools Tools
	var missing []string
	for _, status := range statuses {
		if !status.Available {
			if !status.Optional {
				missing = append(missing, status.Detail)
			}
			continue
		}
		switch status.Name {
		case "FFmpeg":
			tools.FFmpeg = status.Path
		case "FFprobe":
			tools.FFprobe = status.Path
		case "MediaInfo":
			tools.Mediainfo = status.Path
		case "mp4art":
			tools.MP4Art = status.Path
		case "mp4chaps":
			tools.MP4Chaps = status.Path
		}
	}
	if len(missing) > 0 {
		return tools, statuses, services.Wrap(services.ErrExternalTool, "startup", "resolve tools",
			fmt.Sprintf("required tools missing: %s", strings.Join(missing, "; ")), nil)
	}
	return tools, statuses, nil
}

func lookInDir(dir, name string) (string, bool) {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return "", false
	}
	candidates := []string{filepath.Join(dir, name)}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		candidates = append(candidates, filepath.Join(dir, name+".exe"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
