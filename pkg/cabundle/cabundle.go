// Package cabundle produces a merged bundle of PEM-encoded CA
// certificates from the operating system trust store, a user-supplied
// bundle, and a previously exported cache.
package cabundle

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/certutil"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/keychain"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/probe"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

const (
	systemBundleName = "Package Control.system-ca-bundle"
	userBundleName   = "Package Control.user-ca-bundle"
	mergedBundleName = "Package Control.merged-ca-bundle"

	// maxBundleAge is how long an exported system bundle stays fresh,
	// measured off the file's modification time so the window survives
	// process restarts.
	maxBundleAge = 7 * 24 * time.Hour
)

// Service resolves and regenerates the system, user and merged CA
// bundle files. All operations are synchronous and blocking; callers
// always observe a complete file, never a partial write.
type Service struct {
	options *clients.Options
	builder clients.Builder

	now func() time.Time
}

// New creates a new cabundle service from provided configuration
// options, wiring the bundle builder matching the current platform.
func New(options *clients.Options) (*Service, error) {
	if options.Runner == nil {
		options.Runner = &cmdexec.DefaultRunner{}
	}
	if options.Directory == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "could not resolve storage directory")
		}
		options.Directory = filepath.Join(home, ".cabundle")
	}

	service := &Service{
		options: options,
		now:     time.Now,
	}
	switch runtime.GOOS {
	case "darwin":
		service.builder = keychain.New(options.Runner, options)
	case "windows":
		service.builder = certutil.New(options.Runner, options)
	}
	return service, nil
}

// SystemBundlePath returns the path to the OS CA bundle. On Linux it
// looks in a number of predefined places; on macOS and Windows the
// bundle is exported from the system trust store into the storage
// directory and cached for a week. Returns "" when no bundle could be
// located on Linux.
func (s *Service) SystemBundlePath(ctx context.Context) (string, error) {
	if s.builder == nil {
		path := probe.Locate()
		if path != "" && s.options.Debug {
			gologger.Debug().Msgf("Found system CA bundle at %s", path)
		}
		return path, nil
	}

	if err := s.ensureDirectory(); err != nil {
		return "", err
	}
	path := filepath.Join(s.options.Directory, systemBundleName)

	exists := fileutil.FileExists(path)
	stale := false
	if exists {
		if info, err := os.Stat(path); err == nil {
			stale = info.ModTime().Before(s.now().Add(-maxBundleAge))
		}
	}

	if !exists || stale || s.options.Force {
		if s.options.Debug {
			gologger.Debug().Msgf("Generating new CA bundle from system trust store")
		}
		if err := s.builder.Build(ctx, path); err != nil {
			return "", errors.Wrap(err, "could not generate system ca bundle")
		}
		if s.options.Debug {
			gologger.Debug().Msgf("Finished generating new CA bundle at %s", path)
		}
	} else if s.options.Debug {
		gologger.Debug().Msgf("Found previously exported CA bundle at %s", path)
	}
	return path, nil
}

// UserBundlePath returns the path to the user CA bundle, creating an
// empty file on first use so the user has somewhere to add their own
// certificates.
func (s *Service) UserBundlePath() (string, error) {
	if err := s.ensureDirectory(); err != nil {
		return "", err
	}
	path := filepath.Join(s.options.Directory, userBundleName)
	if !fileutil.FileExists(path) {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return "", errors.Wrap(err, "could not create user ca bundle")
		}
		file.Close()
		if s.options.Debug {
			gologger.Debug().Msgf("Created blank user CA bundle")
		}
	}
	return path, nil
}

// MergedBundlePath returns the path to the merged system and user CA
// bundle, regenerating the merged file when it is missing or older than
// either source. The path is returned unconditionally, even when
// nothing changed.
func (s *Service) MergedBundlePath(ctx context.Context) (string, bool, error) {
	mergedPath, _, _, regenerated, err := s.mergedBundle(ctx)
	return mergedPath, regenerated, err
}

func (s *Service) mergedBundle(ctx context.Context) (string, string, string, bool, error) {
	systemPath, err := s.SystemBundlePath(ctx)
	if err != nil {
		return "", "", "", false, err
	}
	userPath, err := s.UserBundlePath()
	if err != nil {
		return "", "", "", false, err
	}
	mergedPath := filepath.Join(s.options.Directory, mergedBundleName)

	regenerate := !fileutil.FileExists(mergedPath) || s.options.Force
	if !regenerate && systemPath != "" && fileutil.FileExists(systemPath) {
		regenerate = modTime(systemPath).After(modTime(mergedPath))
	}
	if !regenerate {
		regenerate = modTime(userPath).After(modTime(mergedPath))
	}
	if !regenerate {
		return mergedPath, systemPath, userPath, false, nil
	}

	var merged strings.Builder
	if systemPath != "" && fileutil.FileExists(systemPath) {
		if err := appendBundle(&merged, systemPath); err != nil {
			return "", "", "", false, err
		}
	}
	if err := appendBundle(&merged, userPath); err != nil {
		return "", "", "", false, err
	}
	if err := clients.WriteBundle(mergedPath, merged.String()); err != nil {
		return "", "", "", false, errors.Wrap(err, "could not write merged ca bundle")
	}
	if s.options.Debug {
		gologger.Debug().Msgf("Regenerated the merged CA bundle from the system and user CA bundles")
	}
	return mergedPath, systemPath, userPath, true, nil
}

// Bundle resolves the merged bundle and returns a response describing
// it, including the number of certificates it contains.
func (s *Service) Bundle(ctx context.Context) (*clients.Response, error) {
	mergedPath, systemPath, userPath, regenerated, err := s.mergedBundle(ctx)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(mergedPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read merged ca bundle")
	}
	now := s.now()
	return &clients.Response{
		Timestamp:    now,
		MergedPath:   mergedPath,
		SystemPath:   systemPath,
		UserPath:     userPath,
		Certificates: len(clients.SplitPEM(string(data))),
		Regenerated:  regenerated,
	}, nil
}

func (s *Service) ensureDirectory() error {
	if fileutil.FolderExists(s.options.Directory) {
		return nil
	}
	return fileutil.CreateFolder(s.options.Directory)
}

// appendBundle writes the trimmed content of path followed by a single
// newline when non-empty.
func appendBundle(merged *strings.Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read ca bundle %s", path)
	}
	content := strings.TrimSpace(string(data))
	if content != "" {
		merged.WriteString(content)
		merged.WriteString("\n")
	}
	return nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
