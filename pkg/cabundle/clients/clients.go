// Package clients contains the types shared by the per-platform bundle
// builders and the cache service.
package clients

import (
	"context"
	"time"

	"github.com/google/renameio/v2"
	"github.com/projectdiscovery/cabundle/pkg/cmdexec"
)

// Options contains configuration options for the cabundle service.
type Options struct {
	// Directory is the storage directory for the generated bundle files.
	// Defaults to ~/.cabundle when empty.
	Directory string
	// OpensslBinary is an optional path override for the openssl
	// executable used for certificate subject extraction.
	OpensslBinary string
	// OutputFile is the file to write output to
	OutputFile string
	// Force regenerates the bundles regardless of staleness
	Force bool
	// Debug enables diagnostic logging of regeneration events
	Debug bool
	// Verbose enables display of verbose output
	Verbose bool
	// Silent disables everything but the result output
	Silent bool
	// NoColor disables colored output
	NoColor bool
	// JSON enables display of JSON output
	JSON bool
	// Version shows the version of the program
	Version bool
	// HealthCheck performs a diagnostics check of the environment
	HealthCheck bool

	// Runner executes the external trust-store tools. Defaults to a
	// real process runner when nil.
	Runner cmdexec.Runner
}

// CertificateRecord is a single certificate recovered from a trust
// store export. Only the PEM text of surviving records is persisted.
type CertificateRecord struct {
	PEM     string
	Name    string
	Expired bool
}

// Builder generates the exported system CA bundle for one platform,
// writing the surviving PEM blocks to the destination path.
type Builder interface {
	Build(ctx context.Context, destination string) error
}

// Response is the result of a bundle request.
type Response struct {
	// Timestamp is the timestamp of the bundle request
	Timestamp time.Time `json:"timestamp,omitempty"`
	// MergedPath is the path to the merged CA bundle
	MergedPath string `json:"merged-path"`
	// SystemPath is the path to the OS-exported CA bundle, if any
	SystemPath string `json:"system-path,omitempty"`
	// UserPath is the path to the user-maintained CA bundle
	UserPath string `json:"user-path"`
	// Certificates is the number of PEM blocks in the merged bundle
	Certificates int `json:"certificates"`
	// Regenerated specifies whether the merged bundle was rewritten
	Regenerated bool `json:"regenerated"`
}

// WriteBundle writes bundle content to path with a single atomic write
// so concurrent readers never observe a partial bundle.
func WriteBundle(path, content string) error {
	return renameio.WriteFile(path, []byte(content), 0644)
}
