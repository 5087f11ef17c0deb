// Package certutil builds the system CA bundle on Windows by listing
// the root and authroot certificate stores with certutil, exporting
// each non-expired certificate to PFX and re-encoding it as PEM.
package certutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
	"github.com/rs/xid"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

const certutilBinary = "certutil.exe"

// certificate stores holding the Windows trusted roots
var stores = []string{"root", "authroot"}

var ErrUnsupported = errorutil.NewWithTag("certutil", "certificate store tooling not available on this windows release")

// Client builds the system CA bundle from the Windows certificate
// stores.
type Client struct {
	options *clients.Options
	runner  cmdexec.Runner

	// encoding decodes certutil's console-native output, which is not
	// UTF-8. Defaults to the Windows-1252 ANSI codepage.
	encoding encoding.Encoding
	// tmpDir holds the per-hash PFX/PEM scratch files, %TMP% by default.
	tmpDir string
	now    func() time.Time
	// lookPath locates certutil.exe, swapped out in tests.
	lookPath func(name string) string
}

// New creates a certutil bundle builder.
func New(runner cmdexec.Runner, options *clients.Options) *Client {
	return &Client{
		options:  options,
		runner:   runner,
		encoding: charmap.Windows1252,
		tmpDir:   os.Getenv("TMP"),
		now:      time.Now,
		lookPath: cmdexec.LookPath,
	}
}

// Build lists both certificate stores, exports every non-expired
// certificate hash and writes the collected PEM blocks to the
// destination path. Windows releases without certutil (end-of-life
// ones) are silently skipped without writing anything. A certificate
// that cannot be exported (blocked by policy) is omitted, not an error.
func (c *Client) Build(ctx context.Context, destination string) error {
	if c.lookPath(certutilBinary) == "" {
		gologger.Debug().Label("certutil").Msgf("skipping system bundle generation: %s", ErrUnsupported)
		return nil
	}

	cwd := os.Getenv("SystemRoot")

	var certs []string
	var exportErrs error
	for _, store := range stores {
		result, err := c.runner.Run(ctx, cmdexec.Command{
			Args:     []string{certutilBinary, "-store", store},
			Dir:      cwd,
			Encoding: c.encoding,
		})
		if err != nil {
			return errorutil.NewWithErr(err).WithTag("certutil").Msgf("could not list certificate store %s", store)
		}

		for _, entry := range ParseStore(result.Stdout, c.now()) {
			if entry.Expired || entry.Hash == "" {
				continue
			}
			pem, err := c.exportHash(ctx, cwd, store, entry.Hash)
			if err != nil {
				exportErrs = multierr.Append(exportErrs, err)
				continue
			}
			if pem == "" {
				gologger.Debug().Label("certutil").Msgf("certificate %s not marked for export, skipping", entry.Hash)
				continue
			}
			certs = append(certs, pem)
		}
	}
	if exportErrs != nil {
		gologger.Warning().Label("certutil").Msgf("some certificates could not be exported: %s", exportErrs)
	}

	return clients.WriteBundle(destination, strings.Join(certs, "\n"))
}

// exportHash exports one certificate hash to a temporary PFX file and
// re-encodes it to PEM, returning the trimmed PEM text. Returns ""
// when the store declined the export. Both scratch files are removed
// before returning.
func (c *Client) exportHash(ctx context.Context, cwd, store, hash string) (string, error) {
	id := xid.New().String()
	pfxFile := filepath.Join(c.tmpDir, "export-"+id+".pfx")
	pemFile := filepath.Join(c.tmpDir, "export-"+id+".pem")

	// certutil prompts for an export password; answer with blank lines.
	_, err := c.runner.Run(ctx, cmdexec.Command{
		Args:     []string{certutilBinary, "-exportpfx", store, hash, pfxFile},
		Dir:      cwd,
		Stdin:    "\r\n\r\n",
		Encoding: c.encoding,
	})
	if err != nil {
		if _, ok := err.(*cmdexec.CommandFailure); !ok {
			return "", err
		}
	}
	if !fileutil.FileExists(pfxFile) {
		return "", nil
	}
	defer os.Remove(pfxFile)

	_, err = c.runner.Run(ctx, cmdexec.Command{
		Args:     []string{certutilBinary, "-encode", pfxFile, pemFile},
		Dir:      cwd,
		Encoding: c.encoding,
	})
	if err != nil {
		return "", errorutil.NewWithErr(err).WithTag("certutil").Msgf("could not encode certificate %s", hash)
	}
	defer os.Remove(pemFile)

	data, err := os.ReadFile(pemFile)
	if err != nil {
		return "", errorutil.NewWithErr(err).WithTag("certutil").Msgf("could not read encoded certificate %s", hash)
	}
	return strings.TrimSpace(string(data)), nil
}
