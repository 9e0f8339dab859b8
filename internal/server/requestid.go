package server

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const DefaultRequestIDHeader = "X-Request-Id"

func resolveRequestIDHeader(headerKey string) string {
	if v := strings.TrimSpace(headerKey); v != "" {
		return v
	}
	return DefaultRequestIDHeader
}

// genRequestID returns the UTC time down to microseconds followed by eight
// random hex digits, e.g. 20260115093012123456-9f86d081.
func genRequestID() string {
	var suffix [4]byte
	// crypto/rand.Read does not fail on supported platforms.
	_, _ = rand.Read(suffix[:])
	ts := time.Now().UTC().Format("20060102150405.000000")
	return strings.Replace(ts, ".", "", 1) + "-" + hex.EncodeToString(suffix[:])
}
