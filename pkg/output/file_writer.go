package output

import (
	"os"
)

// fileWriter writes result lines to an output file.
type fileWriter struct {
	file *os.File
}

// newFileOutputWriter creates a new file output writer for a path
func newFileOutputWriter(file string) (*fileWriter, error) {
	output, err := os.Create(file)
	if err != nil {
		return nil, err
	}
	return &fileWriter{file: output}, nil
}

// Write writes the event to file, appending a newline.
func (w *fileWriter) Write(data []byte) error {
	if _, err := w.file.Write(data); err != nil {
		return err
	}
	_, err := w.file.Write([]byte("\n"))
	return err
}

// Close closes the file writer.
func (w *fileWriter) Close() error {
	return w.file.Close()
}
