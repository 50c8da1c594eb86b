package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossbuild/sdkgen/internal/recipe/freebsd"
)

var freebsdFlags struct {
	release            string
	swiftToolchainPath string
}

var makeFreeBSDSDKCmd = &cobra.Command{
	Use:   "make-freebsd-sdk",
	Short: "Assemble a FreeBSD cross-compilation SDK",
	RunE:  runMakeFreeBSDSDK,
}

func init() {
	f := makeFreeBSDSDKCmd.Flags()
	f.StringVar(&freebsdFlags.release, "release", "14.3", "FreeBSD release, e.g. 14.3 or 15.0")
	f.StringVar(&freebsdFlags.swiftToolchainPath, "swift-toolchain-path", "", "optional Swift toolchain to overlay onto the sysroot")
}

func runMakeFreeBSDSDK(cmd *cobra.Command, args []string) error {
	if sharedFlags.target == "" {
		if sharedFlags.targetArch == "" {
			return fmt.Errorf("one of --target or --target-arch is required")
		}
		sharedFlags.target = sharedFlags.targetArch + "-unknown-freebsd"
	}
	targetTriple := parseTriple(sharedFlags.target)

	major, minor, err := parseRelease(freebsdFlags.release)
	if err != nil {
		return err
	}

	artifactID := sharedFlags.sdkName
	if artifactID == "" {
		artifactID = fmt.Sprintf("freebsd-%s_%s", freebsdFlags.release, targetTriple.Arch)
	}
	sdkDirName := fmt.Sprintf("freebsd-%s.sdk", freebsdFlags.release)

	deps, err := buildRuntime(artifactID, targetTriple.String(), sdkDirName)
	if err != nil {
		return err
	}

	r := freebsd.Recipe{
		ArtifactID:         artifactID,
		SDKDirName:         sdkDirName,
		TargetTriple:       targetTriple,
		Major:              major,
		Minor:              minor,
		SwiftToolchainPath: freebsdFlags.swiftToolchainPath,
		SwiftVersion:       sharedFlags.swiftVersion,
		BundleVersion:      sharedFlags.bundleVersion,
	}

	return r.MakeSDK(cmd.Context(), deps.env)
}

func parseRelease(s string) (major, minor int, err error) {
	parts := strings.SplitN(s, ".", 2)
	major, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --release %q: %w", s, err)
	}
	if len(parts) > 1 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --release %q: %w", s, err)
		}
	}
	return major, minor, nil
}
