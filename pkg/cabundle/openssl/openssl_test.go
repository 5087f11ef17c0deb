package openssl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

func writeFakeBinary(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, binaryName())
	require.Nil(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestFindBinaryOverride(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir)

	// override pointing directly at the executable
	require.Equal(t, binary, findBinary(binary))
	// override pointing at the directory containing it
	require.Equal(t, binary, findBinary(dir))
	// override pointing at a directory without the executable
	require.Equal(t, "", findBinary(t.TempDir()))
}

func TestNewMissingBinary(t *testing.T) {
	_, err := New(&cmdexec.MockRunner{}, filepath.Join(t.TempDir(), "nonexistent"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "openssl-binary")
}

func subjectArgs(binary string) string {
	return strings.Join([]string{binary, "x509", "-noout", "-subject", "-nameopt", "sep_multiline,lname,utf8"}, " ")
}

func TestSubjectName(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir)

	testcases := []struct {
		name   string
		output string
		want   string
	}{
		{
			name: "common name",
			output: "subject=\n" +
				"    countryName=US\n" +
				"    organizationName=Example\n" +
				"    commonName=Example Root CA\n",
			want: "Example Root CA",
		},
		{
			name: "first organizational unit fallback",
			output: "subject=\n" +
				"    countryName=US\n" +
				"    organizationalUnitName=Example Trust Network\n" +
				"    organizationalUnitName=Secondary Unit\n",
			want: "Example Trust Network",
		},
		{
			name:   "unnamed certificate",
			output: "subject=\n    countryName=US\n",
			want:   "",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &cmdexec.MockRunner{Results: map[string]cmdexec.Result{
				subjectArgs(binary): {Stdout: tc.output},
			}}
			resolver, err := New(mock, binary)
			require.Nil(t, err)

			name, err := resolver.SubjectName(context.Background(), "-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----")
			require.Nil(t, err)
			require.Equal(t, tc.want, name)
		})
	}
}

func TestSubjectNameCommandFailure(t *testing.T) {
	dir := t.TempDir()
	binary := writeFakeBinary(t, dir)

	mock := &cmdexec.MockRunner{Results: map[string]cmdexec.Result{
		subjectArgs(binary): {ExitCode: 1, Stderr: "unable to load certificate"},
	}}
	resolver, err := New(mock, binary)
	require.Nil(t, err)

	_, err = resolver.SubjectName(context.Background(), "garbage")
	require.Error(t, err)
}
