package certutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

const (
	validHash    = "123456789abcdef0123456789abcdef012345678"
	declinedHash = "ffffffffffffffffffffffffffffffffffffffff"
)

// storeRunner scripts certutil behavior: listing stores, producing PFX
// files on export and PEM files on encode, the way the real tool does.
type storeRunner struct {
	stores      map[string]string
	declined    map[string]struct{}
	encodedPEM  string
	exportCalls int
}

func (s *storeRunner) Run(ctx context.Context, cmd cmdexec.Command) (cmdexec.Result, error) {
	switch cmd.Args[1] {
	case "-store":
		return cmdexec.Result{Stdout: s.stores[cmd.Args[2]]}, nil
	case "-exportpfx":
		s.exportCalls++
		hash, pfxFile := cmd.Args[3], cmd.Args[4]
		if _, declined := s.declined[hash]; declined {
			// export blocked by policy: non-zero exit, no file produced
			return cmdexec.Result{ExitCode: 1, Stderr: "Cannot export non-exportable private key."},
				&cmdexec.CommandFailure{Cmd: strings.Join(cmd.Args, " "), ExitCode: 1}
		}
		if err := os.WriteFile(pfxFile, []byte("pfx-bytes"), 0600); err != nil {
			return cmdexec.Result{}, err
		}
		return cmdexec.Result{}, nil
	case "-encode":
		if err := os.WriteFile(cmd.Args[3], []byte(s.encodedPEM+"\r\n"), 0600); err != nil {
			return cmdexec.Result{}, err
		}
		return cmdexec.Result{}, nil
	}
	return cmdexec.Result{}, fmt.Errorf("unexpected certutil invocation: %v", cmd.Args)
}

func storeOutput(entries ...string) string {
	var b strings.Builder
	for i, entry := range entries {
		b.WriteString(fmt.Sprintf("================ Certificate %d ================\n", i))
		b.WriteString(entry)
	}
	b.WriteString("CertUtil: -store command completed successfully.\n")
	return b.String()
}

func entryWith(hash, notAfter string) string {
	return fmt.Sprintf(`Serial Number: 01
Issuer: CN=Example Root CA, O=Example, C=US
 NotBefore: 1/1/2010 12:00 AM
 NotAfter: %s
Subject: CN=Example Root CA, O=Example, C=US
Cert Hash(sha1): %s
`, notAfter, hash)
}

func newTestClient(t *testing.T, runner cmdexec.Runner) *Client {
	t.Helper()
	client := New(runner, &clients.Options{})
	client.tmpDir = t.TempDir()
	client.now = func() time.Time { return time.Date(2023, time.January, 27, 12, 0, 0, 0, time.UTC) }
	client.lookPath = func(string) string { return certutilBinary }
	return client
}

func TestBuildExportsNonExpired(t *testing.T) {
	pem := "-----BEGIN CERTIFICATE-----\nMIIBpfx\n-----END CERTIFICATE-----"
	runner := &storeRunner{
		stores: map[string]string{
			"root":     storeOutput(entryWith(validHash, "6/9/2035 5:04 PM"), entryWith("aabbcc", "5/9/2021 7:28 PM")),
			"authroot": storeOutput(),
		},
		encodedPEM: pem,
	}
	client := newTestClient(t, runner)

	destination := filepath.Join(t.TempDir(), "system-ca-bundle")
	require.Nil(t, client.Build(context.Background(), destination))

	// only the non-expired entry is exported
	require.Equal(t, 1, runner.exportCalls)
	data, err := os.ReadFile(destination)
	require.Nil(t, err)
	require.Equal(t, pem, string(data))

	// scratch files are removed after each export
	leftovers, err := filepath.Glob(filepath.Join(client.tmpDir, "export-*"))
	require.Nil(t, err)
	require.Empty(t, leftovers)
}

func TestBuildSkipsDeclinedExports(t *testing.T) {
	pem := "-----BEGIN CERTIFICATE-----\nMIIBok\n-----END CERTIFICATE-----"
	runner := &storeRunner{
		stores: map[string]string{
			"root":     storeOutput(entryWith(declinedHash, "6/9/2035 5:04 PM"), entryWith(validHash, "6/9/2035 5:04 PM")),
			"authroot": storeOutput(),
		},
		declined:   map[string]struct{}{declinedHash: {}},
		encodedPEM: pem,
	}
	client := newTestClient(t, runner)

	destination := filepath.Join(t.TempDir(), "system-ca-bundle")
	require.Nil(t, client.Build(context.Background(), destination))

	data, err := os.ReadFile(destination)
	require.Nil(t, err)
	// the declined certificate is silently omitted
	require.Equal(t, pem, string(data))
	require.Equal(t, 2, runner.exportCalls)
}

func TestBuildSkipsWhenToolMissing(t *testing.T) {
	client := New(&cmdexec.MockRunner{}, &clients.Options{})
	client.lookPath = func(string) string { return "" }

	destination := filepath.Join(t.TempDir(), "system-ca-bundle")
	require.Nil(t, client.Build(context.Background(), destination))
	// nothing is written on unsupported releases
	_, err := os.Stat(destination)
	require.True(t, os.IsNotExist(err))
}
