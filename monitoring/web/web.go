// Package web holds the pages of the network monitor.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// DevEnv selects where the pages are served from. A true value serves them
// from the source tree, a directory serves them from that directory, and
// anything else serves the pages compiled into the binary.
const DevEnv = "NOC_MONITOR_DEV"

//go:embed dist/*
var dist embed.FS

// GetAssets returns the file system the monitor serves its pages from.
func GetAssets() http.FileSystem {
	if dir, ok := devDir(); ok {
		slog.Info("serving monitor pages from disk", "dir", dir)
		return http.Dir(dir)
	}

	pages, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(pages)
}

func devDir() (string, bool) {
	v := os.Getenv(DevEnv)
	if v == "" {
		return "", false
	}

	if on, err := strconv.ParseBool(v); err == nil {
		if !on {
			return "", false
		}

		_, self, _, ok := runtime.Caller(0)
		if !ok {
			panic("cannot locate the monitor sources")
		}

		return filepath.Join(filepath.Dir(self), "dist"), true
	}

	if info, err := os.Stat(v); err == nil && info.IsDir() {
		return v, true
	}

	return "", false
}
