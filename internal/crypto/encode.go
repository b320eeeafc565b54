package crypto

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// DecodeKey accepts key bytes typed by an operator, either as hex or as
// standard base64 prefixed with "b64:".
func DecodeKey(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "b64:"); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	return hex.DecodeString(s)
}
