package pipeline

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeSignatureImage decodes a base64 PNG signature capture. Browser
// canvas exports arrive with a data-URL marker ("data:image/png;base64,...")
// which must be stripped before decoding.
func DecodeSignatureImage(value string) ([]byte, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, fmt.Errorf("empty signature image")
	}
	if strings.HasPrefix(v, "data:") {
		i := strings.Index(v, ",")
		if i < 0 {
			return nil, fmt.Errorf("malformed data URL in signature image")
		}
		v = v[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("decode signature image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty signature image")
	}
	return data, nil
}
