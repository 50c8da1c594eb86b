// Package pkgindex resolves Debian package names to download URLs by
// fetching and parsing a distribution's Packages.gz index, per spec
// §4.F.
package pkgindex

import (
	"bufio"
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/crossbuild/sdkgen/internal/httpclient"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
)

// Index maps a Debian package name to its Filename field (relative to
// the repository root) and resolved absolute URL.
type Index struct {
	BaseURL  string
	Packages map[string]Entry
}

// Entry is the subset of an RFC-822 Packages stanza this module needs.
type Entry struct {
	Package  string
	Version  string
	Filename string
	SHA256   string
}

// URL returns the absolute download URL for e, joined against the
// index's BaseURL.
func (idx Index) URL(pkgName string) (string, bool) {
	e, ok := idx.Packages[pkgName]
	if !ok {
		return "", false
	}
	return strings.TrimRight(idx.BaseURL, "/") + "/" + strings.TrimLeft(e.Filename, "/"), true
}

// Fetch downloads the gzip-compressed package list at packagesPath
// (joined onto baseURL with one "/"), decompresses it with
// klauspost/compress's pure-Go gzip reader (a purely in-memory
// transform, not a subprocess concern, so no need to shell out to
// gzip(1) the way archive extraction does), and parses every stanza
// into Index.Packages.
func Fetch(ctx context.Context, client *httpclient.Client, baseURL, packagesPath string) (Index, error) {
	url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(packagesPath, "/")
	resp, err := client.Get(ctx, url)
	if err != nil {
		return Index{}, err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return Index{}, &sdkerr.PackageListDecompressionFailure{Err: err}
	}
	defer gz.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(gz); err != nil {
		return Index{}, &sdkerr.PackageListDecompressionFailure{Err: err}
	}

	packages := ParseStanzas(buf.Bytes())
	return Index{BaseURL: baseURL, Packages: packages}, nil
}

// ParseStanzas splits an RFC-822-style Packages file (stanzas
// separated by blank lines) into a map keyed by Package name.
func ParseStanzas(data []byte) map[string]Entry {
	result := make(map[string]Entry)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var current Entry
	flush := func() {
		if current.Package != "" {
			result[current.Package] = current
		}
		current = Entry{}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			// continuation of the previous field; none of the fields this
			// module cares about span multiple lines, so these are ignored.
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		switch field {
		case "Package":
			current.Package = value
		case "Version":
			current.Version = value
		case "Filename":
			current.Filename = value
		case "SHA256":
			current.SHA256 = value
		}
	}
	flush()
	return result
}

// RequirePackages looks up every name in names and fails with
// sdkerr.PackageListParsingFailure naming whichever ones could not be
// resolved, instead of returning a partial map silently.
func RequirePackages(idx Index, names []string) (map[string]Entry, error) {
	found := make(map[string]Entry, len(names))
	var missing []string
	for _, name := range names {
		e, ok := idx.Packages[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		found[name] = e
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &sdkerr.PackageListParsingFailure{
			Expected: len(names),
			Actual:   len(names) - len(missing),
			Missing:  missing,
		}
	}
	return found, nil
}
