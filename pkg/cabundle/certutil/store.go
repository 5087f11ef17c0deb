package certutil

import (
	"bufio"
	"regexp"
	"strings"
	"time"
)

// StoreEntry is one certificate record parsed from `certutil -store`
// output. Hash drives the PFX export of non-expired entries.
type StoreEntry struct {
	SerialNumber string
	IssuerCN     string
	Subject      string
	NotBefore    time.Time
	NotAfter     time.Time
	Expired      bool
	Hash         string
}

// certutil prints timestamps like `6/9/2029 5:04 PM`.
const certutilTimeLayout = "1/2/2006 3:04 PM"

var (
	delimiterRegex = regexp.MustCompile(`^={16} ([^=]*) ={16}$`)
	completedRegex = regexp.MustCompile(`^CertUtil: -\w+ command completed successfully\.$`)
	serialRegex    = regexp.MustCompile(`^Serial Number: (.*)$`)
	issuerRegex    = regexp.MustCompile(`^Issuer: (.*)$`)
	notBeforeRegex = regexp.MustCompile(`^ NotBefore: (.*)$`)
	notAfterRegex  = regexp.MustCompile(`^ NotAfter: (.*)$`)
	subjectRegex   = regexp.MustCompile(`^Subject: (.*)$`)
	hashRegex      = regexp.MustCompile(`^Cert Hash\(\w+\): (.*?)$`)
)

// parserState tracks where the scan is relative to entry delimiters.
type parserState int

const (
	// awaitingEntry skips banner lines before the first delimiter.
	awaitingEntry parserState = iota
	// inEntry fills the current entry's fields line by line.
	inEntry
	// entryExpired ignores everything until the next delimiter.
	entryExpired
)

// ParseStore parses `certutil -store` output into entries. Expiry is
// decided against now. Unrecognized lines are ignored: certutil output
// drifts across Windows versions and we favor availability over strict
// validation.
func ParseStore(output string, now time.Time) []StoreEntry {
	var entries []StoreEntry

	state := awaitingEntry
	var entry StoreEntry

	flush := func() {
		if state != awaitingEntry {
			entries = append(entries, entry)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if delimiterRegex.MatchString(line) {
			flush()
			entry = StoreEntry{}
			state = inEntry
			continue
		}
		if state != inEntry {
			continue
		}
		if completedRegex.MatchString(line) {
			continue
		}

		if match := serialRegex.FindStringSubmatch(line); match != nil {
			entry.SerialNumber = match[1]
			continue
		}
		if match := issuerRegex.FindStringSubmatch(line); match != nil {
			for _, part := range splitDNComponents(match[1]) {
				if strings.HasPrefix(part, "CN=") {
					entry.IssuerCN = part[3:]
				}
			}
			continue
		}
		if match := notBeforeRegex.FindStringSubmatch(line); match != nil {
			if parsed, err := time.Parse(certutilTimeLayout, match[1]); err == nil {
				entry.NotBefore = parsed
			}
			continue
		}
		if match := notAfterRegex.FindStringSubmatch(line); match != nil {
			if parsed, err := time.Parse(certutilTimeLayout, match[1]); err == nil {
				entry.NotAfter = parsed
				if parsed.Before(now) {
					entry.Expired = true
					state = entryExpired
				}
			}
			continue
		}
		if match := subjectRegex.FindStringSubmatch(line); match != nil {
			entry.Subject = subjectFromDN(match[1])
			continue
		}
		if match := hashRegex.FindStringSubmatch(line); match != nil {
			entry.Hash = strings.ReplaceAll(match[1], " ", "")
			continue
		}
	}
	flush()
	return entries
}

// splitDNComponents splits a certutil distinguished-name value on the
// `, ` separators that precede an uppercase attribute tag followed by
// `=`, leaving literal commas inside attribute values intact. Values
// containing escaped commas or non-ASCII tags are a known limitation
// of this rule.
func splitDNComponents(value string) []string {
	var parts []string
	start := 0
	for i := 0; i+1 < len(value); i++ {
		if value[i] != ',' || value[i+1] != ' ' {
			continue
		}
		tagStart := i + 2
		tagEnd := tagStart
		for tagEnd < len(value) && value[tagEnd] >= 'A' && value[tagEnd] <= 'Z' {
			tagEnd++
		}
		if tagEnd > tagStart && tagEnd < len(value) && value[tagEnd] == '=' {
			parts = append(parts, value[start:i])
			start = tagStart
			i = tagStart - 1
		}
	}
	parts = append(parts, value[start:])
	return parts
}

// subjectFromDN picks the display name out of a Subject value: the CN
// component when present, else the first OU component.
func subjectFromDN(value string) string {
	parts := splitDNComponents(value)
	for _, part := range parts {
		if strings.HasPrefix(part, "CN=") {
			return part[3:]
		}
	}
	for _, part := range parts {
		if strings.HasPrefix(part, "OU=") {
			return part[3:]
		}
	}
	return ""
}
