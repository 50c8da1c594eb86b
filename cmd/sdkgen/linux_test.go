package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossbuild/sdkgen/internal/recipe/linuxglibc"
)

func TestCodenameFor(t *testing.T) {
	assert.Equal(t, "jammy", codenameFor("ubuntu", "22.04"))
	assert.Equal(t, "bookworm", codenameFor("debian", "12"))
	assert.Equal(t, "9.9", codenameFor("ubuntu", "9.9"), "unknown version falls back to the raw string")
}

func TestTargetSourceSelection(t *testing.T) {
	defer resetSharedFlags()

	linuxFlags.withDocker = true
	linuxFlags.fromContainerImg = "quay.io/example/rhel9"
	assert.Equal(t, linuxglibc.TargetDocker, targetSource().Kind)

	linuxFlags.withDocker = false
	sharedFlags.targetSwiftPkg = "/tmp/swift-pkg"
	assert.Equal(t, linuxglibc.TargetLocalPackage, targetSource().Kind)

	sharedFlags.targetSwiftPkg = ""
	assert.Equal(t, linuxglibc.TargetRemoteTarball, targetSource().Kind)
}

func TestHostSourceSelection(t *testing.T) {
	defer resetSharedFlags()

	sharedFlags.hostToolchain = false
	assert.Equal(t, linuxglibc.HostPreinstalled, hostSource().Kind)

	sharedFlags.hostToolchain = true
	sharedFlags.hostSwiftPkg = "/tmp/host-pkg"
	assert.Equal(t, linuxglibc.HostLocalPackage, hostSource().Kind)

	sharedFlags.hostSwiftPkg = ""
	assert.Equal(t, linuxglibc.HostRemoteTarball, hostSource().Kind)
}

func resetSharedFlags() {
	sharedFlags.targetSwiftPkg = ""
	sharedFlags.hostSwiftPkg = ""
	sharedFlags.hostToolchain = true
	linuxFlags.withDocker = false
	linuxFlags.fromContainerImg = ""
}
