package output

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/require"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
)

func TestStandardWriter_formatStandard(t *testing.T) {
	stdWriter := StandardWriter{aurora: aurora.NewAurora(false)}

	t.Run("Empty response", func(t *testing.T) {
		out, err := stdWriter.formatStandard(nil)
		require.Nil(t, out)
		require.Error(t, err)
	})

	t.Run("Empty merged path", func(t *testing.T) {
		out, err := stdWriter.formatStandard(&clients.Response{})
		require.Nil(t, out)
		require.Error(t, err)
	})

	t.Run("Regenerated bundle", func(t *testing.T) {
		out, err := stdWriter.formatStandard(&clients.Response{
			MergedPath:   "/home/user/.cabundle/Package Control.merged-ca-bundle",
			SystemPath:   "/home/user/.cabundle/Package Control.system-ca-bundle",
			Certificates: 140,
			Regenerated:  true,
		})
		require.Nil(t, err)
		require.Contains(t, string(out), "Package Control.merged-ca-bundle")
		require.Contains(t, string(out), "140 certificates")
		require.Contains(t, string(out), "regenerated")
		require.NotContains(t, string(out), "no system bundle")
	})

	t.Run("Missing system bundle", func(t *testing.T) {
		out, err := stdWriter.formatStandard(&clients.Response{
			MergedPath:   "/tmp/merged",
			Certificates: 1,
		})
		require.Nil(t, err)
		require.Contains(t, string(out), "no system bundle")
	})
}

func TestStandardWriter_formatJSON(t *testing.T) {
	stdWriter := StandardWriter{json: true}
	out, err := stdWriter.formatJSON(&clients.Response{
		MergedPath:   "/tmp/merged",
		UserPath:     "/tmp/user",
		Certificates: 3,
	})
	require.Nil(t, err)

	var decoded clients.Response
	require.Nil(t, jsoniter.Unmarshal(out, &decoded))
	require.Equal(t, "/tmp/merged", decoded.MergedPath)
	require.Equal(t, 3, decoded.Certificates)
	require.False(t, decoded.Regenerated)
}
