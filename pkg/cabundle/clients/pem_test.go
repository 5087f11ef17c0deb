package clients

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildPEM(body string) string {
	return "-----BEGIN CERTIFICATE-----\n" + body + "\n-----END CERTIFICATE-----"
}

func TestSplitPEM(t *testing.T) {
	first := buildPEM("MIIBfirst\nAAAA")
	second := buildPEM("MIIBsecond")
	third := buildPEM("MIIBthird")

	stream := strings.Join([]string{
		"keychain: \"/System/Library/Keychains/SystemRootCertificates.keychain\"",
		first,
		"some banner text between blocks",
		second,
		third,
		"",
	}, "\n")

	blocks := SplitPEM(stream)
	require.Equal(t, strings.Count(stream, "BEGIN CERTIFICATE"), len(blocks))
	require.Equal(t, []string{first, second, third}, blocks)
	for _, block := range blocks {
		require.True(t, strings.HasPrefix(block, "-----BEGIN CERTIFICATE-----"))
		require.True(t, strings.HasSuffix(block, "-----END CERTIFICATE-----"))
	}
}

func TestSplitPEMEmpty(t *testing.T) {
	require.Empty(t, SplitPEM(""))
	require.Empty(t, SplitPEM("no certificates here\njust text\n"))
}
