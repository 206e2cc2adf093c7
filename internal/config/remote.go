package config

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// Remote is the resolved spreadsheet configuration of a run. It is either
// Configured or Unconfigured and is selected once at startup.
type Remote interface {
	isRemote()
}

// Configured carries everything needed to reach the remote spreadsheet
type Configured struct {
	Credentials []byte
	SheetID     string
}

// Unconfigured means credentials or the sheet ID are absent and all remote
// operations fall back to local files.
type Unconfigured struct{}

func (Configured) isRemote()   {}
func (Unconfigured) isRemote() {}

// Remote resolves the spreadsheet settings. Both credentials and a sheet ID
// must be present; otherwise the result is Unconfigured. Credentials may be
// raw JSON or base64-encoded JSON. No validation of the payload happens here.
func (c *Config) Remote() Remote {
	creds := strings.TrimSpace(c.Spreadsheet.Credentials)
	sheetID := strings.TrimSpace(c.Spreadsheet.SheetID)
	if creds == "" || sheetID == "" {
		return Unconfigured{}
	}
	return Configured{
		Credentials: decodeCredentials(creds),
		SheetID:     sheetID,
	}
}

func decodeCredentials(creds string) []byte {
	if strings.HasPrefix(creds, "{") {
		return []byte(creds)
	}
	decoded, err := base64.StdEncoding.DecodeString(creds)
	if err == nil && bytes.HasPrefix(bytes.TrimSpace(decoded), []byte("{")) {
		return decoded
	}
	return []byte(creds)
}
