// Package output writes bundle resolution results to the screen and
// optionally to a file.
package output

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/logrusorgru/aurora"
	errorutil "github.com/projectdiscovery/utils/errors"

	"github.com/projectdiscovery/cabundle/pkg/cabundle/clients"
)

// Writer is an interface which writes output somewhere for cabundle events.
type Writer interface {
	// Close closes the output writer interface
	Close() error
	// Write writes the event to file and/or screen.
	Write(*clients.Response) error
}

var decolorizerRegex = regexp.MustCompile(`\x1B\[[0-9;]*[a-zA-Z]`)

// StandardWriter is an standard output writer structure
type StandardWriter struct {
	json        bool
	aurora      aurora.Aurora
	outputFile  *fileWriter
	outputMutex *sync.Mutex
}

// New returns a new output writer instance
func New(options *clients.Options) (Writer, error) {
	var outputFile *fileWriter
	if options.OutputFile != "" {
		output, err := newFileOutputWriter(options.OutputFile)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("could not create output file")
		}
		outputFile = output
	}
	writer := &StandardWriter{
		json:        options.JSON,
		aurora:      aurora.NewAurora(!options.NoColor),
		outputFile:  outputFile,
		outputMutex: &sync.Mutex{},
	}
	return writer, nil
}

// Write writes the event to file and/or screen.
func (w *StandardWriter) Write(event *clients.Response) error {
	var data []byte
	var err error

	if w.json {
		data, err = w.formatJSON(event)
	} else {
		data, err = w.formatStandard(event)
	}
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not format output")
	}
	data = bytes.TrimSuffix(data, []byte("\n")) // remove last newline

	w.outputMutex.Lock()
	defer w.outputMutex.Unlock()
	_, _ = os.Stdout.Write(data)
	_, _ = os.Stdout.Write([]byte("\n"))
	if w.outputFile != nil {
		if !w.json {
			data = decolorizerRegex.ReplaceAll(data, []byte(""))
		}
		if writeErr := w.outputFile.Write(data); writeErr != nil {
			return errorutil.NewWithErr(writeErr).Msgf("could not write to output")
		}
	}
	return nil
}

// Close closes the output writer
func (w *StandardWriter) Close() error {
	var err error
	if w.outputFile != nil {
		err = w.outputFile.Close()
	}
	return err
}

// formatJSON formats the output for json based formatting
func (w *StandardWriter) formatJSON(output *clients.Response) ([]byte, error) {
	return jsoniter.Marshal(output)
}

// formatStandard formats the output for standard client formatting
func (w *StandardWriter) formatStandard(output *clients.Response) ([]byte, error) {
	if output == nil {
		return nil, errorutil.New("empty bundle response")
	}
	if output.MergedPath == "" {
		return nil, errorutil.New("empty merged bundle path")
	}

	builder := &bytes.Buffer{}
	builder.WriteString(output.MergedPath)
	builder.WriteString(" [")
	builder.WriteString(w.aurora.Cyan(fmt.Sprintf("%d certificates", output.Certificates)).String())
	builder.WriteString("]")
	if output.Regenerated {
		builder.WriteString(" [")
		builder.WriteString(w.aurora.Green("regenerated").String())
		builder.WriteString("]")
	}
	if output.SystemPath == "" {
		builder.WriteString(" [")
		builder.WriteString(w.aurora.Yellow("no system bundle").String())
		builder.WriteString("]")
	}
	return builder.Bytes(), nil
}
