package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossbuild/sdkgen/internal/recipe/linuxglibc"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
)

var linuxFlags struct {
	withDocker       bool
	fromContainerImg string
	lldVersion       string
	distributionName string
	distVersion      string
	localPackagePath string
}

var makeLinuxSDKCmd = &cobra.Command{
	Use:   "make-linux-sdk",
	Short: "Assemble a Linux-glibc cross-compilation SDK",
	RunE:  runMakeLinuxSDK,
}

func init() {
	f := makeLinuxSDKCmd.Flags()
	f.BoolVar(&linuxFlags.withDocker, "with-docker", false, "acquire the target sysroot from a throwaway Docker container")
	f.StringVar(&linuxFlags.fromContainerImg, "from-container-image", "", "base image for the --with-docker acquisition path")
	f.StringVar(&linuxFlags.lldVersion, "lld-version", "17.0.6", "LLVM/lld release version")
	f.StringVar(&linuxFlags.distributionName, "distribution-name", "ubuntu", "target distribution: ubuntu, debian, or rhel")
	f.StringVar(&linuxFlags.distVersion, "distribution-version", "22.04", "target distribution version")
}

// ubuntuCodenames and debianCodenames resolve the distribution version
// the user passes on the command line into the codename the artifact
// ID and SDK directory name use, matching the spec §8 scenario 1
// example ("ubuntu-jammy.sdk" for 22.04).
var ubuntuCodenames = map[string]string{
	"18.04": "bionic",
	"20.04": "focal",
	"22.04": "jammy",
	"24.04": "noble",
}

var debianCodenames = map[string]string{
	"10": "buster",
	"11": "bullseye",
	"12": "bookworm",
}

func codenameFor(distribution, version string) string {
	switch distribution {
	case "ubuntu":
		if c, ok := ubuntuCodenames[version]; ok {
			return c
		}
	case "debian":
		if c, ok := debianCodenames[version]; ok {
			return c
		}
	}
	return version
}

func runMakeLinuxSDK(cmd *cobra.Command, args []string) error {
	if sharedFlags.target == "" {
		if sharedFlags.targetArch == "" {
			return fmt.Errorf("one of --target or --target-arch is required")
		}
		sharedFlags.target = sharedFlags.targetArch + "-unknown-linux-gnu"
	}

	targetTriple := parseTriple(sharedFlags.target)
	hostTriple := parseTriple(sharedFlags.host)

	if linuxFlags.distributionName != "ubuntu" && linuxFlags.distributionName != "debian" && linuxFlags.distributionName != "rhel" {
		return &sdkerr.UnknownDistribution{Name: linuxFlags.distributionName}
	}
	if linuxFlags.distributionName == "rhel" && !linuxFlags.withDocker {
		return &sdkerr.DistributionRequiresDocker{Distribution: "rhel"}
	}

	codename := codenameFor(linuxFlags.distributionName, linuxFlags.distVersion)
	artifactID := sharedFlags.sdkName
	if artifactID == "" {
		artifactID = fmt.Sprintf("%s_%s_%s_%s", sharedFlags.swiftVersion, linuxFlags.distributionName, codename, targetTriple.Arch)
	}
	sdkDirName := fmt.Sprintf("%s-%s.sdk", linuxFlags.distributionName, codename)

	deps, err := buildRuntime(artifactID, targetTriple.String(), sdkDirName)
	if err != nil {
		return err
	}

	r := linuxglibc.Recipe{
		ArtifactID:   artifactID,
		SDKDirName:   sdkDirName,
		TargetTriple: targetTriple,
		HostTriple:   hostTriple,
		Distribution: linuxFlags.distributionName,
		DistVersion:  linuxFlags.distVersion,
		SwiftVersion: sharedFlags.swiftVersion,
		SwiftBranch:  sharedFlags.swiftBranch,
		LLDVersion:   linuxFlags.lldVersion,
		TargetSource:  targetSource(),
		HostSource:    hostSource(),
		BundleVersion: sharedFlags.bundleVersion,
	}

	return r.MakeSDK(cmd.Context(), deps.env)
}

func targetSource() linuxglibc.TargetSource {
	switch {
	case linuxFlags.withDocker:
		return linuxglibc.TargetSource{Kind: linuxglibc.TargetDocker, DockerBaseImage: linuxFlags.fromContainerImg}
	case sharedFlags.targetSwiftPkg != "":
		return linuxglibc.TargetSource{Kind: linuxglibc.TargetLocalPackage, LocalPath: sharedFlags.targetSwiftPkg}
	default:
		return linuxglibc.TargetSource{Kind: linuxglibc.TargetRemoteTarball}
	}
}

func hostSource() linuxglibc.HostSource {
	switch {
	case !sharedFlags.hostToolchain:
		return linuxglibc.HostSource{Kind: linuxglibc.HostPreinstalled}
	case sharedFlags.hostSwiftPkg != "":
		return linuxglibc.HostSource{Kind: linuxglibc.HostLocalPackage, LocalPath: sharedFlags.hostSwiftPkg}
	default:
		return linuxglibc.HostSource{Kind: linuxglibc.HostRemoteTarball}
	}
}
