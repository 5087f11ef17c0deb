package openssl

import (
	"bufio"
	"context"
	"path/filepath"
	"regexp"
	"strings"

	errorutil "github.com/projectdiscovery/utils/errors"

	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

var (
	commonNameRegex = regexp.MustCompile(`^\s+commonName=(.*)$`)
	orgUnitRegex    = regexp.MustCompile(`^\s+organizationalUnitName=(.*)$`)
)

// SubjectName extracts the display name of a PEM certificate: the
// commonName when set, otherwise the first organizationalUnitName.
// This mirrors the name macOS uses for storing trust preferences.
// An empty name with nil error means the certificate is unnamed and
// cannot be matched against a distrust list.
func (r *Resolver) SubjectName(ctx context.Context, pemCert string) (string, error) {
	result, err := r.runner.Run(ctx, cmdexec.Command{
		Args:  []string{r.BinaryPath, "x509", "-noout", "-subject", "-nameopt", "sep_multiline,lname,utf8"},
		Dir:   filepath.Dir(r.BinaryPath),
		Stdin: pemCert,
	})
	if err != nil {
		return "", errorutil.NewWithErr(err).WithTag("openssl").Msgf("could not extract certificate subject")
	}

	var firstOU string
	scanner := bufio.NewScanner(strings.NewReader(result.Stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if match := commonNameRegex.FindStringSubmatch(line); match != nil {
			return match[1], nil
		}
		if firstOU == "" {
			if match := orgUnitRegex.FindStringSubmatch(line); match != nil {
				firstOU = match[1]
			}
		}
	}
	return firstOU, nil
}
