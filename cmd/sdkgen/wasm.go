package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crossbuild/sdkgen/internal/recipe/wasisdk"
)

var wasmFlags struct {
	wasiSysrootPath string
	threaded        bool
	embedded        bool
}

var makeWasmSDKCmd = &cobra.Command{
	Use:   "make-wasm-sdk",
	Short: "Assemble a WebAssembly/WASI cross-compilation SDK",
	RunE:  runMakeWasmSDK,
}

func init() {
	f := makeWasmSDKCmd.Flags()
	f.StringVar(&wasmFlags.wasiSysrootPath, "wasi-sysroot-path", "", "path to the WASI sysroot to overlay (required)")
	f.BoolVar(&wasmFlags.threaded, "threaded", false, "also emit the wasm32-wasip1-threads target")
	f.BoolVar(&wasmFlags.embedded, "embedded", false, "also emit the embedded-Swift wasm32-unknown-none target")
}

func runMakeWasmSDK(cmd *cobra.Command, args []string) error {
	if wasmFlags.wasiSysrootPath == "" {
		return fmt.Errorf("--wasi-sysroot-path is required")
	}
	if sharedFlags.targetSwiftPkg == "" {
		return fmt.Errorf("--target-swift-package-path is required")
	}

	artifactID := sharedFlags.sdkName
	if artifactID == "" {
		artifactID = fmt.Sprintf("swift-wasm-%s", sharedFlags.swiftVersion)
	}

	targets := []wasisdk.TargetSpec{
		{Triple: parseTriple("wasm32-unknown-wasi"), Kind: wasisdk.TargetPlain},
	}
	if wasmFlags.threaded {
		targets = append(targets, wasisdk.TargetSpec{Triple: parseTriple("wasm32-unknown-wasip1-threads"), Kind: wasisdk.TargetThreaded})
	}
	if wasmFlags.embedded {
		targets = append(targets, wasisdk.TargetSpec{Triple: parseTriple("wasm32-unknown-none"), Kind: wasisdk.TargetEmbedded})
	}

	deps, err := buildRuntime(artifactID, "wasm32-unknown-wasi", "WASI.sdk")
	if err != nil {
		return err
	}

	r := wasisdk.Recipe{
		ArtifactID:         artifactID,
		SwiftVersion:       sharedFlags.swiftVersion,
		HostSwiftPackage:   sharedFlags.hostSwiftPkg,
		TargetSwiftPackage: sharedFlags.targetSwiftPkg,
		WASISysrootPath:    wasmFlags.wasiSysrootPath,
		Targets:            targets,
		BundleVersion:      sharedFlags.bundleVersion,
	}

	return r.MakeSDK(cmd.Context(), deps.env)
}
