// Package akamai computes the Akamai-style HTTP/2 fingerprint from a
// captured frame log.
package akamai

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/picohz/fingerprintd/internal/h2parse"
)

// Akamai holds the assembled fingerprint string and its SHA-1 digest.
type Akamai struct {
	SHA1 string `json:"sha1"`
	Str  string `json:"str"`
}

var pseudoHeaderAbbrev = map[string]string{
	":method":    "m",
	":path":      "p",
	":authority": "a",
	":scheme":    "s",
}

// New assembles SETTINGS|WINDOW_UPDATE|PRIORITIES|HEADER_ORDER in a
// single left-to-right walk of the frame log.
func New(frames []h2parse.Frame) Akamai {
	var settingsParts []string
	windowUpdate := "00"
	var priorityParts []string
	var headerOrder []string

	for _, f := range frames {
		switch frame := f.(type) {
		case *h2parse.Settings:
			for _, s := range frame.Settings {
				settingsParts = append(settingsParts, fmt.Sprintf("%d:%d", s.ID, s.Value))
			}
		case *h2parse.WindowUpdate:
			windowUpdate = fmt.Sprintf("%d", frame.WindowSizeIncrement)
		case *h2parse.Priority:
			exclusive := 0
			if frame.Exclusive {
				exclusive = 1
			}
			priorityParts = append(priorityParts, fmt.Sprintf("%d:%d:%d:%d",
				frame.StreamID, exclusive, frame.DepStreamID, frame.Weight))
		case *h2parse.Headers:
			headerOrder = headerOrder[:0]
			for _, name := range frame.PseudoHeaders {
				if abbrev, ok := pseudoHeaderAbbrev[name]; ok {
					headerOrder = append(headerOrder, abbrev)
				}
			}
		}
	}

	priorities := "0"
	if len(priorityParts) > 0 {
		priorities = strings.Join(priorityParts, ",")
	}

	headerSection := ""
	if len(headerOrder) > 0 {
		headerSection = "|" + strings.Join(headerOrder, ",")
	}

	str := fmt.Sprintf("%s|%s|%s%s", strings.Join(settingsParts, ";"), windowUpdate, priorities, headerSection)

	sum := sha1.Sum([]byte(str))
	return Akamai{SHA1: hex.EncodeToString(sum[:]), Str: str}
}
