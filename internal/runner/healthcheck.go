package runner

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/projectdiscovery/goflags"
	fileutil "github.com/projectdiscovery/utils/file"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/openssl"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/probe"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

// DoHealthCheck reports the state of everything the bundle builders
// depend on: config file permissions, the trust-store tools for the
// current platform and the openssl binary used for name resolution.
func DoHealthCheck(options *clients.Options, flagSet *goflags.FlagSet) string {
	cfgFilePath, _ := flagSet.GetConfigFilePath()
	var test strings.Builder
	test.WriteString(fmt.Sprintf("Version: %s\n", version))
	test.WriteString(fmt.Sprintf("Operative System: %s\n", runtime.GOOS))
	test.WriteString(fmt.Sprintf("Architecture: %s\n", runtime.GOARCH))
	test.WriteString(fmt.Sprintf("Go Version: %s\n", runtime.Version()))
	test.WriteString(fmt.Sprintf("Compiler: %s\n", runtime.Compiler))

	var testResult string
	ok, err := fileutil.IsReadable(cfgFilePath)
	if ok {
		testResult = "Ok"
	} else {
		testResult = "Ko"
	}
	if err != nil {
		testResult += fmt.Sprintf(" (%s)", err)
	}
	test.WriteString(fmt.Sprintf("Config file \"%s\" Read => %s\n", cfgFilePath, testResult))
	ok, err = fileutil.IsWriteable(cfgFilePath)
	if ok {
		testResult = "Ok"
	} else {
		testResult = "Ko"
	}
	if err != nil {
		testResult += fmt.Sprintf(" (%s)", err)
	}
	test.WriteString(fmt.Sprintf("Config file \"%s\" Write => %s\n", cfgFilePath, testResult))

	if resolver, err := openssl.New(&cmdexec.DefaultRunner{}, options.OpensslBinary); err == nil {
		test.WriteString(fmt.Sprintf("openssl location: %s\n", resolver.BinaryPath))
	} else {
		test.WriteString(fmt.Sprintf("openssl => Ko (%s)\n", err))
	}

	switch runtime.GOOS {
	case "darwin":
		test.WriteString("Trust store tool: /usr/bin/security\n")
	case "windows":
		if path := cmdexec.LookPath("certutil.exe"); path != "" {
			test.WriteString(fmt.Sprintf("Trust store tool: %s\n", path))
		} else {
			test.WriteString("Trust store tool: certutil.exe => Ko (not found)\n")
		}
	default:
		if path := probe.Locate(); path != "" {
			test.WriteString(fmt.Sprintf("System CA bundle: %s\n", path))
		} else {
			test.WriteString("System CA bundle => Ko (no well-known path found)\n")
		}
	}
	return test.String()
}
