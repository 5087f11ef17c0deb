package clients

import (
	"bufio"
	"strings"

	stringsutil "github.com/projectdiscovery/utils/strings"
)

// SplitPEM splits a text stream containing zero or more back-to-back
// PEM certificate blocks into individual blocks, both delimiter lines
// included. Text outside BEGIN/END markers is discarded.
func SplitPEM(stream string) []string {
	var blocks []string
	var current []string

	inBlock := false
	scanner := bufio.NewScanner(strings.NewReader(stream))
	for scanner.Scan() {
		line := scanner.Text()
		if stringsutil.ContainsAny(line, "BEGIN CERTIFICATE") {
			inBlock = true
		}
		if inBlock {
			current = append(current, line)
		}
		if stringsutil.ContainsAny(line, "END CERTIFICATE") && inBlock {
			inBlock = false
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}
	return blocks
}
