package version

import (
	"fmt"
	"runtime/debug"
)

// Name is the command name shown by --version.
const Name = "textmate-validate"

// Set by -ldflags "-X github.com/r9s-ai/textmate-validate/internal/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = ""
)

// Info describes the running build.
type Info struct {
	Name    string
	Version string
	Commit  string
}

func (i Info) String() string {
	if i.Commit == "" {
		return fmt.Sprintf("%s %s", i.Name, i.Version)
	}
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.Commit)
}

// Get returns the build information, preferring linker-set values over module
// build info.
func Get() Info {
	info := Info{Name: Name, Version: Version, Commit: Commit}
	if info.Version != "dev" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	if info.Commit == "" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
	}
	return info
}
