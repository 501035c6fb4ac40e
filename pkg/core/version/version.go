// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     version
// Description: Central version management for the CLI and language
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import (
	"fmt"
	"runtime"
)

// Version constants
const (
	// Tool version
	Tool = "0.2.0"

	// Language revision accepted by the front end
	Language = "1.0.0"
)

// Build metadata, set with -ldflags "-X github.com/msto63/mlang/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info describes the running binary
type Info struct {
	Tool      string `json:"tool"`
	Language  string `json:"language"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the version information of the running binary
func Get() Info {
	return Info{
		Tool:      Tool,
		Language:  Language,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line summary
func (i Info) String() string {
	return fmt.Sprintf("mlang %s (language %s, commit %s, built %s, %s %s)",
		i.Tool, i.Language, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
