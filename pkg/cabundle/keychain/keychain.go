// Package keychain exports the macOS system root certificates using the
// `security` command line tool, excluding roots the user distrusted for
// SSL via trust settings.
package keychain

import (
	"context"
	"strings"

	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/openssl"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

const (
	securityBinary      = "/usr/bin/security"
	systemRootsKeychain = "/System/Library/Keychains/SystemRootCertificates.keychain"
)

// NameResolver resolves the display name of a PEM certificate.
// Satisfied by openssl.Resolver.
type NameResolver interface {
	SubjectName(ctx context.Context, pemCert string) (string, error)
}

// Client builds the system CA bundle from the macOS root keychain.
type Client struct {
	options  *clients.Options
	runner   cmdexec.Runner
	resolver NameResolver
}

// New creates a keychain bundle builder.
func New(runner cmdexec.Runner, options *clients.Options) *Client {
	return &Client{options: options, runner: runner}
}

// Build exports the root certificates from the system keychain, drops
// any certificate whose resolved name carries an SSL distrust setting,
// and writes the survivors to the destination path. Name resolution
// costs one openssl invocation per candidate, so it only happens when
// the distrust set is non-empty.
func (c *Client) Build(ctx context.Context, destination string) error {
	distrusted, err := c.TrustSettings(ctx)
	if err != nil {
		return err
	}

	result, err := c.runner.Run(ctx, cmdexec.Command{
		Args: []string{securityBinary, "export", "-k", systemRootsKeychain, "-t", "certs", "-p"},
		Dir:  "/usr/bin",
	})
	if err != nil {
		return errorutil.NewWithErr(err).WithTag("keychain").Msgf("could not export system root certificates")
	}

	var certs []string
	for _, block := range clients.SplitPEM(result.Stdout) {
		record := clients.CertificateRecord{PEM: block}
		if len(distrusted) > 0 {
			record.Name, err = c.resolveName(ctx, record.PEM)
			if err != nil {
				return err
			}
			if _, denied := distrusted[record.Name]; denied && record.Name != "" {
				gologger.Debug().Label("keychain").Msgf("skipping root certificate %s because it is distrusted", record.Name)
				continue
			}
		}
		certs = append(certs, record.PEM)
	}

	return clients.WriteBundle(destination, strings.Join(certs, "\n"))
}

func (c *Client) resolveName(ctx context.Context, pemCert string) (string, error) {
	if c.resolver == nil {
		resolver, err := openssl.New(c.runner, c.options.OpensslBinary)
		if err != nil {
			return "", err
		}
		c.resolver = resolver
	}
	return c.resolver.SubjectName(ctx, pemCert)
}
