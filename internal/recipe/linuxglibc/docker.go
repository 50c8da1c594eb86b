package linuxglibc

import (
	"context"
	"fmt"
	"strings"

	"github.com/testcontainers/testcontainers-go"

	"github.com/crossbuild/sdkgen/internal/archive"
	"github.com/crossbuild/sdkgen/internal/recipe"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
)

// dockerCuratedLibPaths is the curated subset of /usr/lib copied out
// of the ephemeral container, mirroring the fixed subdirectory set
// used for the remote-tarball/local-package sources.
var dockerCuratedLibPaths = []string{"swift", "swift_static"}

// acquireFromDocker builds an ephemeral container from the recipe's
// base image, tars up /usr/include and the curated /usr/lib paths
// inside it, streams the tar back out, and extracts it into sdkRoot
// (spec §4.J.1 step 3, docker variant). RHEL images additionally get
// their absolute /usr/lib64 symlinks rewritten to basenames, pm-utils
// dropped, and libc.so replaced with a relative symlink to libc.so.6
// before the copy, all performed inside the container via Exec so the
// host never needs root to chmod inside someone else's rootfs.
func (r Recipe) acquireFromDocker(ctx context.Context, env recipe.Environment, sdkRoot string) error {
	if r.TargetSource.DockerBaseImage == "" {
		return &sdkerr.DistributionRequiresDocker{Distribution: r.Distribution}
	}

	req := testcontainers.ContainerRequest{
		Image: r.TargetSource.DockerBaseImage,
		Cmd:   []string{"sleep", "infinity"},
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("start docker container from %s: %w", r.TargetSource.DockerBaseImage, err)
	}
	defer container.Terminate(ctx)

	if r.Distribution == "rhel" {
		if err := prepareRHELSysroot(ctx, container); err != nil {
			return err
		}
	}

	tarPath := "/tmp/sdkgen-sysroot.tar.gz"
	libPaths := make([]string, 0, len(dockerCuratedLibPaths))
	for _, p := range dockerCuratedLibPaths {
		libPaths = append(libPaths, "usr/lib/"+p)
	}
	tarCmd := fmt.Sprintf("tar -C / -czf %s usr/include %s 2>/dev/null; true", tarPath, strings.Join(libPaths, " "))
	if _, _, err := container.Exec(ctx, []string{"sh", "-c", tarCmd}); err != nil {
		return fmt.Errorf("tar sysroot inside container: %w", err)
	}

	reader, err := container.CopyFileFromContainer(ctx, tarPath)
	if err != nil {
		return fmt.Errorf("copy sysroot tar from container: %w", err)
	}
	defer reader.Close()

	return env.FS.InTempDir(ctx, func(tmp string) error {
		localTar := tmp + "/sysroot.tar.gz"
		if err := env.FS.OpenWrite(ctx, localTar, reader); err != nil {
			return err
		}
		return archive.Extract(ctx, localTar, sdkRoot, archive.Options{})
	})
}

// prepareRHELSysroot rewrites absolute /usr/lib64 symlinks to
// basenames, drops pm-utils, and replaces the libc.so linker script
// with a relative symlink to libc.so.6, all inside the running
// container before the tar step copies anything out.
func prepareRHELSysroot(ctx context.Context, container testcontainers.Container) error {
	script := strings.Join([]string{
		"chmod -R u+w /usr/lib64",
		"for f in /usr/lib64/*; do [ -L \"$f\" ] || continue; t=$(readlink \"$f\"); case \"$t\" in /*) ln -sf \"$(basename \"$t\")\" \"$f\";; esac; done",
		"rm -rf /usr/lib64/pm-utils /usr/bin/pm-*",
		"rm -f /usr/lib64/libc.so && ln -s libc.so.6 /usr/lib64/libc.so",
	}, " && ")
	_, _, err := container.Exec(ctx, []string{"sh", "-c", script})
	if err != nil {
		return fmt.Errorf("prepare rhel sysroot: %w", err)
	}
	return nil
}
