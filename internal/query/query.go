// Package query defines the concrete, cacheable operations of spec
// §4.I. Each type implements cache.Query (a stable hash over its
// declared inputs) and a Run method performing the actual work,
// wiring together httpclient, archive, and procexec.
package query

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/crossbuild/sdkgen/internal/archive"
	"github.com/crossbuild/sdkgen/internal/cache"
	"github.com/crossbuild/sdkgen/internal/httpclient"
	"github.com/crossbuild/sdkgen/internal/procexec"
)

// DownloadFile downloads url into localDir, naming the file after the
// URL's last path component.
type DownloadFile struct {
	URL      string
	LocalDir string
}

func (q DownloadFile) QueryTypeName() string { return "query.DownloadFile" }

func (q DownloadFile) HashFields(fh *cache.FieldHasher) {
	fh.String(q.URL).String(q.LocalDir)
}

func (q DownloadFile) destPath() string {
	return strings.TrimRight(q.LocalDir, "/") + "/" + lastPathComponent(q.URL)
}

func lastPathComponent(url string) string {
	return path.Base(strings.TrimRight(url, "/"))
}

// Run downloads the file, returning its local path.
func (q DownloadFile) Run(ctx context.Context, client *httpclient.Client) (string, error) {
	dest := q.destPath()
	if err := client.DownloadFile(ctx, q.URL, dest, nil); err != nil {
		return "", err
	}
	return dest, nil
}

// DownloadArtifact is DownloadFile plus throttled progress reporting,
// used for large catalog artifacts where the caller wants to surface
// progress to the user.
type DownloadArtifact struct {
	URL       string
	LocalPath string
}

func (q DownloadArtifact) QueryTypeName() string { return "query.DownloadArtifact" }

func (q DownloadArtifact) HashFields(fh *cache.FieldHasher) {
	fh.String(q.URL).String(q.LocalPath)
}

// Run downloads the artifact, coalescing progress into at most one
// event per second or every >=1 MiB, per spec §4.I.
func (q DownloadArtifact) Run(ctx context.Context, client *httpclient.Client, onProgress httpclient.ProgressFunc) (string, error) {
	if err := client.DownloadFile(ctx, q.URL, q.LocalPath, onProgress); err != nil {
		return "", err
	}
	return q.LocalPath, nil
}

// TarExtract extracts archivePath into dest (optionally stripping
// leading path components) and returns dest/outputSubpath, the single
// path the caller actually tracks out of the whole extraction.
type TarExtract struct {
	Archive         string
	Dest            string
	OutputSubpath   string
	HasStrip        bool
	StripComponents int
}

func (q TarExtract) QueryTypeName() string { return "query.TarExtract" }

func (q TarExtract) HashFields(fh *cache.FieldHasher) {
	fh.String(q.Archive).String(q.Dest).String(q.OutputSubpath)
	fh.OptionalString(q.HasStrip, fmt.Sprintf("%d", q.StripComponents))
}

// Run extracts the archive and returns the tracked output path.
func (q TarExtract) Run(ctx context.Context) (string, error) {
	opts := archive.Options{}
	if q.HasStrip {
		opts.StripComponents = q.StripComponents
	}
	if err := archive.Extract(ctx, q.Archive, q.Dest, opts); err != nil {
		return "", err
	}
	return strings.TrimRight(q.Dest, "/") + "/" + strings.TrimLeft(q.OutputSubpath, "/"), nil
}

// CMakeBuild runs a configure step then a build step in a build/
// directory that sits beside sourcesDir (sourcesDir/../build),
// returning the path to the produced binary.
type CMakeBuild struct {
	SourcesDir          string
	OutputBinarySubpath string
	Options             []string
}

func (q CMakeBuild) QueryTypeName() string { return "query.CMakeBuild" }

func (q CMakeBuild) HashFields(fh *cache.FieldHasher) {
	fh.String(q.SourcesDir).String(q.OutputBinarySubpath).Strings(q.Options)
}

func (q CMakeBuild) buildDir() string {
	return strings.TrimRight(q.SourcesDir, "/") + "/../build"
}

// Run configures and builds the CMake project, returning the produced
// binary's path.
func (q CMakeBuild) Run(ctx context.Context) (string, error) {
	buildDir := q.buildDir()
	configureArgs := append([]string{"-S", q.SourcesDir, "-B", buildDir}, q.Options...)
	if _, err := procexec.Run(ctx, procexec.Spec{
		Path:          "cmake",
		Args:          configureArgs,
		Stdout:        procexec.StdioDiscard,
		Stderr:        procexec.StdioPipe,
		TeardownGrace: 5 * time.Second,
	}); err != nil {
		return "", err
	}
	if _, err := procexec.Run(ctx, procexec.Spec{
		Path:          "cmake",
		Args:          []string{"--build", buildDir},
		Stdout:        procexec.StdioDiscard,
		Stderr:        procexec.StdioPipe,
		TeardownGrace: 5 * time.Second,
	}); err != nil {
		return "", err
	}
	return strings.TrimRight(buildDir, "/") + "/" + strings.TrimLeft(q.OutputBinarySubpath, "/"), nil
}
