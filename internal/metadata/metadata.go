// Package metadata emits the four JSON documents an artifact bundle
// needs (spec §4.K): the toolset, the SDK descriptor, the bundle
// manifest, and the legacy SDK settings file. Every document is
// marshaled with two-space indentation and sorted keys, matching
// swift-sdk-generator's own emitted bundles byte-for-byte in spirit if
// not in literal bytes.
package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CompilerOptions is the shared shape for swiftCompiler/cCompiler/
// cxxCompiler/linker/librarian entries in a Toolset document.
type CompilerOptions struct {
	Path             string   `json:"path,omitempty"`
	ExtraCLIOptions  []string `json:"extraCLIOptions,omitempty"`
}

// Toolset is document 1 of spec §4.K.
type Toolset struct {
	SchemaVersion string           `json:"schemaVersion"`
	RootPath      string           `json:"rootPath,omitempty"`
	SwiftCompiler CompilerOptions  `json:"swiftCompiler"`
	CCompiler     *CompilerOptions `json:"cCompiler,omitempty"`
	CXXCompiler   *CompilerOptions `json:"cxxCompiler,omitempty"`
	Linker        *CompilerOptions `json:"linker,omitempty"`
	Librarian     *CompilerOptions `json:"librarian,omitempty"`
}

// NewToolset returns a Toolset with the fixed schema version this
// generator writes.
func NewToolset(rootPath string, swiftExtraOptions []string) Toolset {
	return Toolset{
		SchemaVersion: "1.0",
		RootPath:      rootPath,
		SwiftCompiler: CompilerOptions{ExtraCLIOptions: swiftExtraOptions},
	}
}

// TargetTripleConfig is one entry of an SDK descriptor's targetTriples
// map.
type TargetTripleConfig struct {
	SDKRootPath               string   `json:"sdkRootPath"`
	SwiftResourcesPath        string   `json:"swiftResourcesPath,omitempty"`
	SwiftStaticResourcesPath  string   `json:"swiftStaticResourcesPath,omitempty"`
	IncludeSearchPaths        []string `json:"includeSearchPaths,omitempty"`
	LibrarySearchPaths        []string `json:"librarySearchPaths,omitempty"`
	ToolsetPaths              []string `json:"toolsetPaths,omitempty"`
}

// SDKDescriptor is document 2 ("swift-sdk.json") of spec §4.K.
type SDKDescriptor struct {
	SchemaVersion string                         `json:"schemaVersion"`
	TargetTriples map[string]TargetTripleConfig `json:"targetTriples"`
}

// NewSDKDescriptor builds the v4 descriptor schema this generator emits.
func NewSDKDescriptor(targetTriples map[string]TargetTripleConfig) SDKDescriptor {
	return SDKDescriptor{SchemaVersion: "4.0", TargetTriples: targetTriples}
}

// BundleVariant is one entry of an artifact's variants list.
type BundleVariant struct {
	Path             string   `json:"path"`
	SupportedTriples []string `json:"supportedTriples,omitempty"`
}

// BundleArtifact describes one artifact entry in info.json.
type BundleArtifact struct {
	Type     string          `json:"type"`
	Version  string          `json:"version"`
	Variants []BundleVariant `json:"variants"`
}

// BundleManifest is document 3 ("info.json") of spec §4.K.
type BundleManifest struct {
	SchemaVersion string                    `json:"schemaVersion"`
	Artifacts     map[string]BundleArtifact `json:"artifacts"`
}

// NewBundleManifest builds a single-artifact manifest; SupportedTriples
// on its one variant should be left nil for a universal bundle.
func NewBundleManifest(artifactID, version string, variants []BundleVariant) BundleManifest {
	return BundleManifest{
		SchemaVersion: "1.0",
		Artifacts: map[string]BundleArtifact{
			artifactID: {Type: "swiftSDK", Version: version, Variants: variants},
		},
	}
}

// SDKSettings is the legacy document 4 of spec §4.K, emitted for
// Swift versions that still look for it (<5.10, and 6.0).
type SDKSettings struct {
	CanonicalName string            `json:"CanonicalName"`
	DisplayName   string            `json:"DisplayName"`
	Version       string            `json:"Version"`
	VersionMap    map[string]string `json:"VersionMap"`
}

// NewSDKSettings builds the legacy settings document with an empty
// VersionMap, matching every bundle this generator has ever produced.
func NewSDKSettings(canonicalName, displayName, version string) SDKSettings {
	return SDKSettings{
		CanonicalName: canonicalName,
		DisplayName:   displayName,
		Version:       version,
		VersionMap:    map[string]string{},
	}
}

// MarshalIndented renders v as two-space-indented JSON with HTML
// escaping disabled (so "/" in paths is never written as "\/") and
// sorted object keys: v is first marshaled, then decoded into generic
// maps, whose keys encoding/json always writes in sorted order.
func MarshalIndented(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata document: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("marshal metadata document: %w", err)
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("marshal metadata document: %w", err)
	}
	return []byte(strings.TrimRight(buf.String(), "\n")), nil
}

// RelativeTo strips sdkRoot from absolutePath, per spec §4.K: "if the
// prefix cannot be stripped, it is a fatal programming error" since
// every path handed to the metadata emitter is constructed by this
// generator itself.
func RelativeTo(sdkRoot, absolutePath string) string {
	sdkRoot = strings.TrimRight(sdkRoot, "/")
	if !strings.HasPrefix(absolutePath, sdkRoot+"/") && absolutePath != sdkRoot {
		panic(fmt.Sprintf("metadata: %q is not under SDK root %q", absolutePath, sdkRoot))
	}
	rel := strings.TrimPrefix(absolutePath, sdkRoot)
	return strings.TrimPrefix(rel, "/")
}
