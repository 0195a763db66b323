package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// bodyEncodingBase64 marks an EncodedBody's Data as base64, the one
// encoding this proxy ever produces: every body that round-trips as a
// bare JSON value or a plain string needs no wrapper at all.
const bodyEncodingBase64 = "base64"

// EncodedBody is the on-disk shape for a body that is not valid UTF-8,
// the base64 extension spec.md §9 permits: "An implementation MAY extend
// the format with base64-encoded bodies but must remain backward-compatible
// with the string form for replay."
type EncodedBody struct {
	Data     string `json:"data" yaml:"data"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// ParseBody decides how to store a captured response body. The proxy's
// own traffic (see the end-to-end scenarios in spec.md §8: jsonplaceholder
// JSON responses) is overwhelmingly JSON, so a JSON content type is parsed
// into structured data — that's what lets `relayproxy diff` report a
// field-level mismatch like "body.id" instead of "the whole body
// changed". Everything else follows spec.md §9's baseline directly: a
// body is stored as its literal string if its bytes are valid UTF-8
// (true of any other text format a test fixture might use — XML, form
// encoding, plain text — none of which this proxy needs to recognize by
// name to store correctly), and base64-encoded otherwise, so a binary
// upstream response (images, protobuf, whatever the fixture throws at
// it) survives the round trip instead of being silently dropped to "".
func ParseBody(raw []byte, contentType string) any {
	if len(raw) == 0 {
		return nil
	}

	if strings.Contains(strings.ToLower(contentType), "json") {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			return parsed
		}
	}

	if utf8.Valid(raw) {
		return string(raw)
	}

	return &EncodedBody{
		Data:     base64.StdEncoding.EncodeToString(raw),
		Encoding: bodyEncodingBase64,
	}
}

// DecodeBody reverses ParseBody, returning the raw bytes to replay onto
// the wire. body arrives as whatever Decode's json.Unmarshal produced for
// the record's "body" field: nil, a plain string, a parsed JSON value, or
// (read back from disk, where structs don't survive round-tripping) a
// map holding the EncodedBody shape.
func DecodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case *EncodedBody:
		return base64.StdEncoding.DecodeString(v.Data)
	case map[string]any:
		if data, ok := asEncodedBodyMap(v); ok {
			return base64.StdEncoding.DecodeString(data)
		}
		return json.Marshal(v)
	default:
		return json.Marshal(v)
	}
}

// asEncodedBodyMap recognizes an EncodedBody that came back from JSON
// decoding as a bare map[string]any rather than the typed struct.
func asEncodedBodyMap(m map[string]any) (data string, ok bool) {
	enc, _ := m["encoding"].(string)
	if enc != bodyEncodingBase64 {
		return "", false
	}
	data, ok = m["data"].(string)
	return data, ok
}
