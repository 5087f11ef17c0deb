// Package openssl extracts certificate subject names by shelling out to
// the openssl command line client.
package openssl

import (
	"path/filepath"
	"runtime"

	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
)

var (
	ErrNotAvailable = errorutil.NewWithTag("openssl", "executable not installed or in PATH")
)

// Resolver resolves certificate display names via `openssl x509`.
type Resolver struct {
	BinaryPath string
	runner     cmdexec.Runner
}

// New creates a resolver, locating the openssl binary on the search
// path unless an override is provided. A missing binary is fatal for
// the enclosing bundle build: the returned error names the
// openssl-binary option so the user can point us at an install.
func New(runner cmdexec.Runner, binaryOverride string) (*Resolver, error) {
	binary := findBinary(binaryOverride)
	if binary == "" {
		return nil, errorutil.NewWithTag("openssl",
			"unable to find the %s executable: install openssl or set the openssl-binary option to its location", binaryName()).Wrap(ErrNotAvailable)
	}
	return &Resolver{BinaryPath: binary, runner: runner}, nil
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "openssl.exe"
	}
	return "openssl"
}

// findBinary returns the openssl executable path, or "" when it cannot
// be located. An override pointing at a directory is probed for the
// executable inside it.
func findBinary(override string) string {
	name := binaryName()
	if override != "" {
		if fileutil.FolderExists(override) {
			candidate := filepath.Join(override, name)
			if fileutil.FileExists(candidate) {
				return candidate
			}
			return ""
		}
		if fileutil.FileExists(override) {
			return override
		}
		return ""
	}
	return cmdexec.LookPath(name)
}
