// Package paths computes where a Fortishield installation keeps its binaries,
// configuration, logs and databases on a given platform. Paths use the separator of the
// target platform, not of the host running the tests.
package paths

import (
	"path"
	"runtime"
	"strings"
)

type Platform string

const (
	Linux   Platform = "linux"
	Windows Platform = "windows"
	Darwin  Platform = "darwin"
)

// ParsePlatform maps a platform identifier to a Platform. Go and Python spellings are
// both accepted ("windows" or "win32", "darwin" or "macos"); anything else uses the
// Linux layout.
func ParsePlatform(name string) Platform {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "windows", "win32":
		return Windows
	case "darwin", "macos":
		return Darwin
	default:
		return Linux
	}
}

// Current returns the platform of the running process.
func Current() Platform {
	return ParsePlatform(runtime.GOOS)
}

var roots = map[Platform]string{
	Linux:   "/var/ossec",
	Darwin:  "/Library/Ossec",
	Windows: `C:\Program Files (x86)\ossec-agent`,
}

// Layout is the set of installation directories of one platform.
type Layout struct {
	Platform  Platform
	Root      string
	Bin       string
	Config    string
	Logs      string
	Databases string
}

// For returns the layout of platform, see ParsePlatform.
func For(platform string) Layout {
	p := ParsePlatform(platform)
	l := Layout{Platform: p, Root: roots[p]}
	if p == Windows {
		// binaries, configuration and logs all live in the installation root
		l.Bin = l.Root
		l.Config = l.Root
		l.Logs = l.Root
	} else {
		l.Bin = l.join(l.Root, "bin")
		l.Config = l.join(l.Root, "etc")
		l.Logs = l.join(l.Root, "logs")
	}
	l.Databases = l.join(l.Root, "queue", "db")
	return l
}

func (l Layout) join(elem ...string) string {
	if l.Platform != Windows {
		return path.Join(elem...)
	}
	parts := make([]string, 0, len(elem))
	for i, e := range elem {
		if i > 0 {
			e = strings.Trim(e, `\/`)
		} else {
			e = strings.TrimRight(e, `\/`)
		}
		if e != "" {
			parts = append(parts, strings.ReplaceAll(e, "/", `\`))
		}
	}
	return strings.Join(parts, `\`)
}
