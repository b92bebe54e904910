package fetch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Strategy rewrites a target URL into the URL that is actually requested.
// Decode, when set, unwraps the response body (proxies that answer with a JSON envelope).
type Strategy struct {
	Name      string
	Transform func(target string) string
	Decode    func(body []byte) (string, error)
}

// Direct requests the target as is.
func Direct() Strategy {
	return Strategy{
		Name:      "direct",
		Transform: func(target string) string { return target },
	}
}

// Template builds a strategy from a URL template. "{url}" is replaced with the
// query-escaped target and "{raw}" with the target verbatim.
func Template(name, template string, decode func([]byte) (string, error)) Strategy {
	return Strategy{
		Name: name,
		Transform: func(target string) string {
			out := strings.ReplaceAll(template, "{url}", url.QueryEscape(target))
			return strings.ReplaceAll(out, "{raw}", target)
		},
		Decode: decode,
	}
}

type allOriginsEnvelope struct {
	Contents string `json:"contents"`
	Status   struct {
		HTTPCode int `json:"http_code"`
	} `json:"status"`
}

// DecodeAllOrigins unwraps the JSON envelope returned by api.allorigins.win/get.
func DecodeAllOrigins(body []byte) (string, error) {
	var env allOriginsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode allorigins envelope: %w", err)
	}
	if code := env.Status.HTTPCode; code != 0 && (code < 200 || code > 299) {
		return "", fmt.Errorf("%w: upstream %d", ErrStatus, code)
	}
	return env.Contents, nil
}

// Envelope maps a configured envelope name to its decoder. Unknown names decode nothing.
func Envelope(name string) func([]byte) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "allorigins", "json":
		return DecodeAllOrigins
	default:
		return nil
	}
}

// DefaultStrategies is the built-in trial order: direct first, then the public proxies.
func DefaultStrategies() []Strategy {
	return []Strategy{
		Direct(),
		Template("allorigins", "https://api.allorigins.win/get?url={url}", DecodeAllOrigins),
		Template("allorigins-raw", "https://api.allorigins.win/raw?url={url}", nil),
		Template("corsproxy", "https://corsproxy.io/?url={url}", nil),
		Template("codetabs", "https://api.codetabs.com/v1/proxy?quest={url}", nil),
	}
}
