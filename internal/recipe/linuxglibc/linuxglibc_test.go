package linuxglibc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossbuild/sdkgen/internal/triple"
)

func TestSwiftMajorBelow(t *testing.T) {
	assert.True(t, swiftMajorBelow("5.10.1-RELEASE", 6))
	assert.True(t, swiftMajorBelow("5.9-RELEASE", 6))
	assert.False(t, swiftMajorBelow("6.0.3-RELEASE", 6))
	assert.False(t, swiftMajorBelow("6.1-RELEASE", 6))
	assert.False(t, swiftMajorBelow("10.0-RELEASE", 6))
}

func TestNeedsLegacySDKSettings(t *testing.T) {
	assert.True(t, needsLegacySDKSettings("5.9-RELEASE"))
	assert.True(t, needsLegacySDKSettings("5.8-RELEASE"))
	assert.True(t, needsLegacySDKSettings("6.0.3-RELEASE"))
	assert.False(t, needsLegacySDKSettings("6.1-RELEASE"))
	assert.False(t, needsLegacySDKSettings("5.10.1-RELEASE"))
}

func TestMirrorFor(t *testing.T) {
	assert.Equal(t, "http://archive.ubuntu.com/ubuntu", mirrorFor("ubuntu"))
	assert.Equal(t, "http://deb.debian.org/debian", mirrorFor("debian"))
	assert.Equal(t, "", mirrorFor("rhel"))
}

func TestDebianArchName(t *testing.T) {
	assert.Equal(t, "amd64", debianArchName(triple.Parse("x86_64-unknown-linux-gnu", true)))
	assert.Equal(t, "arm64", debianArchName(triple.Parse("aarch64-unknown-linux-gnu", true)))
	assert.Equal(t, "armhf", debianArchName(triple.Parse("armv7-unknown-linux-gnueabihf", true)))
}
