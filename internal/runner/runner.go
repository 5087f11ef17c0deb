package runner

import (
	"context"

	"github.com/pkg/errors"
	"github.com/projectdiscovery/gologger"

	"github.com/projectdiscovery/cabundle/pkg/cabundle"
	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
	"github.com/projectdiscovery/cabundle/pkg/output"
)

// Runner is a client for running the bundle resolution process
type Runner struct {
	outputWriter output.Writer
	service      *cabundle.Service
	options      *clients.Options
}

// New creates a new runner from provided configuration options
func New(options *clients.Options) (*Runner, error) {
	runner := &Runner{options: options}
	if err := runner.validateOptions(); err != nil {
		return nil, errors.Wrap(err, "could not validate options")
	}
	if !options.Silent {
		showBanner()
	}
	if options.Version {
		gologger.Info().Msgf("Current version: %s", version)
		return nil, nil
	}

	outputWriter, err := output.New(options)
	if err != nil {
		return nil, errors.Wrap(err, "could not create output writer")
	}
	runner.outputWriter = outputWriter

	service, err := cabundle.New(options)
	if err != nil {
		return nil, errors.Wrap(err, "could not create cabundle service")
	}
	runner.service = service
	return runner, nil
}

// Close closes the runner releasing resources
func (r *Runner) Close() error {
	return r.outputWriter.Close()
}

// Execute resolves the merged CA bundle and writes the result.
func (r *Runner) Execute() error {
	response, err := r.service.Bundle(context.Background())
	if err != nil {
		return errors.Wrap(err, "could not resolve ca bundle")
	}
	if err := r.outputWriter.Write(response); err != nil {
		return errors.Wrap(err, "could not write output")
	}
	return nil
}
