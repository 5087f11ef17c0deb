package keychain

import (
	"bufio"
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/projectdiscovery/gologger"
	"golang.org/x/exp/maps"

	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

var (
	certNameRegex     = regexp.MustCompile(`^Cert\s+\d+:\s+(.*)$`)
	trustSettingRegex = regexp.MustCompile(`^\s+Trust\s+Setting\s+\d+:`)
	sslPolicyRegex    = regexp.MustCompile(`^\s+Policy\s+OID\s+:\s+SSL`)
	denyResultRegex   = regexp.MustCompile(`^\s+Result\s+Type\s+:\s+kSecTrustSettingsResultDeny`)
)

// TrustSettings returns the set of certificate names carrying an
// SSL-policy deny trust setting at the admin level, i.e. roots a user
// explicitly distrusted. An empty set is valid: it means no admin
// overrides are present. Some macOS releases exit non-zero when no
// trust settings exist at all, which is also treated as an empty set.
func (c *Client) TrustSettings(ctx context.Context) (map[string]struct{}, error) {
	result, err := c.runner.Run(ctx, cmdexec.Command{
		Args: []string{securityBinary, "dump-trust-settings", "-d"},
		Dir:  "/usr/bin",
	})
	if err != nil {
		if _, ok := err.(*cmdexec.CommandFailure); ok {
			gologger.Debug().Label("keychain").Msgf("no admin trust settings found: %s", err)
			return map[string]struct{}{}, nil
		}
		return nil, err
	}

	distrusted := parseTrustSettings(result.Stdout)
	if len(distrusted) > 0 {
		names := maps.Keys(distrusted)
		sort.Strings(names)
		gologger.Debug().Label("keychain").Msgf("found SSL distrust setting for root certificates: %s", strings.Join(names, ", "))
	}
	return distrusted, nil
}

// parseTrustSettings scans `security dump-trust-settings -d` output.
// Trust settings are grouped under a `Cert N: <name>` header, each
// setting carrying a policy OID and a result type. A deny result inside
// an SSL policy section distrusts the current certificate.
func parseTrustSettings(output string) map[string]struct{} {
	distrusted := make(map[string]struct{})

	var currentCertName string
	inSslPolicy := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if match := certNameRegex.FindStringSubmatch(line); match != nil {
			currentCertName = match[1]
			continue
		}
		if trustSettingRegex.MatchString(line) {
			inSslPolicy = false
			continue
		}
		if sslPolicyRegex.MatchString(line) {
			inSslPolicy = true
			continue
		}
		if inSslPolicy && denyResultRegex.MatchString(line) {
			distrusted[currentCertName] = struct{}{}
		}
	}
	return distrusted
}
