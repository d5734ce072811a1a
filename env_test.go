package pyext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkOverlayApply(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"BAZEL_LINKLIBS=-lstdc++",
		"HOME=/home/builder",
		"BAZEL_LINKOPTS=-lc++",
	}
	original := append([]string(nil), environ...)

	env := DefaultLinkOverlay().Apply(environ)

	assert.Equal(t, []string{
		"PATH=/usr/bin",
		"HOME=/home/builder",
		"BAZEL_LINKLIBS=-l%:libstdc++.a:-lm",
		"BAZEL_LINKOPTS=-static-libstdc++",
	}, env)
	assert.Equal(t, original, environ, "ambient environment must not be modified")
}

func TestLinkOverlayApplyEmpty(t *testing.T) {
	overlay := LinkOverlay{LinkLibs: "-lm", LinkOpts: "-s"}
	assert.Equal(t, []string{"BAZEL_LINKLIBS=-lm", "BAZEL_LINKOPTS=-s"}, overlay.Apply(nil))
}

func TestBazelBuilderDefaultsOverlay(t *testing.T) {
	assert.Equal(t, DefaultLinkOverlay(), (&BazelBuilder{}).overlay())

	custom := LinkOverlay{LinkLibs: "-lm", LinkOpts: ""}
	assert.Equal(t, custom, (&BazelBuilder{Overlay: custom}).overlay())
}
