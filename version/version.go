package version

import (
	"runtime"
	"runtime/debug"
)

// BuildVersion is populated at build time via -ldflags, with a
// debug.ReadBuildInfo fallback for the git revision.
var BuildVersion = "dev"

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha,omitempty"`
	GoVersion string `json:"go_version"`
}

func Get(service string) Info {
	gitSHA := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				gitSHA = s.Value
				break
			}
		}
	}
	return Info{
		Service:   service,
		Version:   BuildVersion,
		GitSHA:    gitSHA,
		GoVersion: runtime.Version(),
	}
}
