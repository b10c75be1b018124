package buildinfo

import (
	"runtime/debug"
)

const length = 7

// Info summarises the vcs data embedded by the go toolchain
type Info struct {
	Revision string `json:"revision"`
	Time     string `json:"time,omitempty"`
	Modified bool   `json:"modified"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Revision: Revision(),
		Time:     get("vcs.time"),
		Modified: get("vcs.modified") == "true",
	}
}

// Revision returns the short revision of the current build.
func Revision() (rev string) {
	rev = get("vcs.revision")
	if len(rev) > length {
		rev = rev[:length]
	}
	return
}

func get(key string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == key {
				return setting.Value
			}
		}
	}
	return ""
}
