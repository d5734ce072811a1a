package pyext

import "strings"

// Environment keys the Bazel C++ toolchain reads for extra link flags.
const (
	EnvLinkLibs = "BAZEL_LINKLIBS"
	EnvLinkOpts = "BAZEL_LINKOPTS"
)

// LinkOverlay is the environment override applied to every Bazel build.
//
// The defaults link libstdc++ and libm by full archive name and link the
// C++ standard library statically, so the produced shared object does not
// need a matching libstdc++ wherever the wheel is installed.
type LinkOverlay struct {
	LinkLibs string
	LinkOpts string
}

// DefaultLinkOverlay returns the overlay used for extension builds.
func DefaultLinkOverlay() LinkOverlay {
	return LinkOverlay{
		LinkLibs: "-l%:libstdc++.a:-lm",
		LinkOpts: "-static-libstdc++",
	}
}

// Vars returns the overlay as KEY=VALUE pairs in a fixed order.
func (o LinkOverlay) Vars() []string {
	return []string{
		EnvLinkLibs + "=" + o.LinkLibs,
		EnvLinkOpts + "=" + o.LinkOpts,
	}
}

// Apply returns a new environment: environ without any existing overlay
// keys, followed by the overlay values. environ is not modified.
func (o LinkOverlay) Apply(environ []string) []string {
	env := make([]string, 0, len(environ)+2)
	for _, kv := range environ {
		key, _, _ := strings.Cut(kv, "=")
		if key == EnvLinkLibs || key == EnvLinkOpts {
			continue
		}
		env = append(env, kv)
	}
	return append(env, o.Vars()...)
}
