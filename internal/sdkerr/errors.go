// Package sdkerr defines the typed error taxonomy shared by every
// component of the SDK bundle assembler. Each variant carries the
// contextual payload a caller needs to print a one-line message and
// decide whether to retry.
package sdkerr

import "fmt"

// UnknownDistribution is returned when a distribution name/version pair
// has no known package-index or release-server mapping.
type UnknownDistribution struct {
	Name    string
	Version string
}

func (e *UnknownDistribution) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("unknown distribution %q", e.Name)
	}
	return fmt.Sprintf("unknown distribution %q version %q", e.Name, e.Version)
}

// UnknownArchitecture is returned when a triple's arch field cannot be
// classified against the closed arch set.
type UnknownArchitecture struct {
	Value string
}

func (e *UnknownArchitecture) Error() string {
	return fmt.Sprintf("unknown architecture %q", e.Value)
}

// InvalidVersionString is returned when a version component fails to
// parse as major.minor.micro.
type InvalidVersionString struct {
	Value  string
	Reason string
}

func (e *InvalidVersionString) Error() string {
	return fmt.Sprintf("invalid version string %q: %s", e.Value, e.Reason)
}

// DistributionDoesNotSupportArchitecture is returned when an artifact
// catalog lookup has no entry for (distribution, arch).
type DistributionDoesNotSupportArchitecture struct {
	Distribution string
	Arch         string
}

func (e *DistributionDoesNotSupportArchitecture) Error() string {
	return fmt.Sprintf("distribution %q does not support architecture %q", e.Distribution, e.Arch)
}

// DistributionRequiresDocker is returned when a recipe is asked to build
// a distribution sysroot without Docker but no prebuilt path exists.
type DistributionRequiresDocker struct {
	Distribution string
}

func (e *DistributionRequiresDocker) Error() string {
	return fmt.Sprintf("distribution %q has no prebuilt Swift binary; re-run with Docker mode", e.Distribution)
}

// FileDoesNotExist mirrors a missing-path I/O failure.
type FileDoesNotExist struct {
	Path string
}

func (e *FileDoesNotExist) Error() string {
	return fmt.Sprintf("file does not exist: %s", e.Path)
}

// DirectoryCreationFailed wraps an mkdir failure with a cause.
type DirectoryCreationFailed struct {
	Path string
	Err  error
}

func (e *DirectoryCreationFailed) Error() string {
	return fmt.Sprintf("failed to create directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationFailed) Unwrap() error { return e.Err }

// SymlinkFixupFailed is returned when rewriting an absolute symlink to a
// relative one fails to resolve to an existing file.
type SymlinkFixupFailed struct {
	Src string
	Dst string
}

func (e *SymlinkFixupFailed) Error() string {
	return fmt.Sprintf("symlink fixup failed: %s -> %s does not resolve", e.Src, e.Dst)
}

// UnknownArchiveFormat is returned when the extractor's suffix dispatch
// table has no entry for the archive.
type UnknownArchiveFormat struct {
	Ext string
}

func (e *UnknownArchiveFormat) Error() string {
	return fmt.Sprintf("unknown archive format: %q", e.Ext)
}

// DownloadFailed is returned when a download could not complete: a
// non-200 response, a transport error, or offline mode rejecting the
// request outright. Status carries whichever of those applies as text.
type DownloadFailed struct {
	URL    string
	Status string
}

func (e *DownloadFailed) Error() string {
	return fmt.Sprintf("download failed: %s (%s)", e.URL, e.Status)
}

// PackageListDecompressionFailure is returned when a Packages.gz body
// cannot be decompressed.
type PackageListDecompressionFailure struct {
	Err error
}

func (e *PackageListDecompressionFailure) Error() string {
	return fmt.Sprintf("package list decompression failed: %v", e.Err)
}

func (e *PackageListDecompressionFailure) Unwrap() error { return e.Err }

// PackageListParsingFailure is returned when a required package name is
// missing from a parsed Packages.gz index.
type PackageListParsingFailure struct {
	Expected int
	Actual   int
	Missing  []string
}

func (e *PackageListParsingFailure) Error() string {
	return fmt.Sprintf("package list parsing failure: expected %d packages, found %d (missing: %v)", e.Expected, e.Actual, e.Missing)
}

// NonZeroExitCode is returned when a spawned process exits with a
// non-zero status.
type NonZeroExitCode struct {
	Code    int
	Command string
}

func (e *NonZeroExitCode) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
}

// UnhandledChildProcessSignal is returned when a spawned process is
// terminated by a signal, including one the runner sent during
// teardown.
type UnhandledChildProcessSignal struct {
	Signal  int
	Command string
}

func (e *UnhandledChildProcessSignal) Error() string {
	return fmt.Sprintf("command %q terminated by signal %d", e.Command, e.Signal)
}

// NoProcessOutput is returned when a command produced no output on a
// stream that callers required to be non-empty.
type NoProcessOutput struct {
	Command string
}

func (e *NoProcessOutput) Error() string {
	return fmt.Sprintf("command %q produced no output", e.Command)
}

// TooMuchProcessOutput is returned when a collected stream exceeds its
// configured byte limit.
type TooMuchProcessOutput struct {
	Stream string
	Limit  int64
}

func (e *TooMuchProcessOutput) Error() string {
	return fmt.Sprintf("%s exceeded the %d byte collection limit", e.Stream, e.Limit)
}

// IllegalStreamConsumption is returned when a caller tries to read a
// stream that was declared discarded at spawn time.
type IllegalStreamConsumption struct {
	Stream string
}

func (e *IllegalStreamConsumption) Error() string {
	return fmt.Sprintf("stream %q was opened in discard mode and cannot be consumed", e.Stream)
}

// BufferLimitExceeded is a programming error: a caller asked for a
// bounded read on something whose size it never checked.
type BufferLimitExceeded struct {
	Path string
}

func (e *BufferLimitExceeded) Error() string {
	return fmt.Sprintf("buffer limit exceeded reading %s", e.Path)
}
