package protocol

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	mxj "github.com/clbanning/mxj/v2"

	"inventory-server/core/fieldbag"
)

// Mode is the wire encoding of a request or response document.
type Mode int

const (
	// ModeAuto means the encoding is not pinned by the content type and
	// must be sniffed from the body.
	ModeAuto Mode = iota
	// ModeJSON is the JSON wire encoding.
	ModeJSON
	// ModeXML is the legacy XML wire encoding.
	ModeXML
)

// ContentType returns the response content type for this mode.
func (m Mode) ContentType() string {
	if m == ModeXML {
		return "application/xml"
	}
	return "application/json"
}

// Actions understood by the handler. Anything else is rejected.
const (
	ActionInventory    = "inventory"
	ActionProlog       = "prolog"
	ActionContact      = "contact"
	ActionNetDiscovery = "netdiscovery"
	ActionNetInventory = "netinventory"
)

// knownActions maps accepted action names, including the legacy aliases
// agents send in the QUERY field, to their canonical name.
var knownActions = map[string]string{
	ActionInventory:    ActionInventory,
	ActionProlog:       ActionProlog,
	ActionContact:      ActionContact,
	ActionNetDiscovery: ActionNetDiscovery,
	ActionNetInventory: ActionNetInventory,
	"snmp":             ActionNetInventory,
	"snmpquery":        ActionNetInventory,
}

// Error is a protocol-level failure carrying the HTTP status to answer
// with. It is recovered into an error response, never propagated as a
// server failure.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds a protocol error.
func NewError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Request is one negotiated agent submission.
type Request struct {
	// Codec is the compression negotiated from the content type. The
	// response is compressed with the same codec.
	Codec Codec
	// Mode is the wire encoding, resolved during parsing when the
	// content type did not pin it.
	Mode Mode
	// Payload is the decompressed body.
	Payload []byte
	// Document is the parsed submission.
	Document *fieldbag.Document
}

// Negotiate resolves the compression codec and wire mode from the request
// content type. A codec the server does not accept yields a 415 error.
func Negotiate(contentType string, brotliEnabled bool) (Codec, Mode, error) {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))

	if codec, ok := CodecFromContentType(ct); ok {
		if codec == CodecBrotli && !brotliEnabled {
			return CodecNone, ModeAuto, NewError(http.StatusUnsupportedMediaType, "Compression mode not supported")
		}
		return codec, ModeAuto, nil
	}

	switch ct {
	case "application/json":
		return CodecNone, ModeJSON, nil
	case "application/xml", "text/xml":
		return CodecNone, ModeXML, nil
	default:
		// Legacy agents send text/plain or nothing at all.
		return CodecNone, ModeAuto, nil
	}
}

// ParseRequest decompresses and parses a submission body. The returned
// Request always has a resolved Mode and a Document with a device id and
// a canonical action.
func ParseRequest(body []byte, codec Codec, mode Mode) (*Request, error) {
	payload, err := Decompress(body, codec)
	if err != nil {
		return nil, NewError(http.StatusBadRequest, "Unable to decompress %s payload", codec)
	}

	if mode == ModeAuto {
		if json.Valid(payload) {
			mode = ModeJSON
		} else {
			mode = ModeXML
		}
	}

	doc, err := parseDocument(payload, mode)
	if err != nil {
		return nil, err
	}

	return &Request{Codec: codec, Mode: mode, Payload: payload, Document: doc}, nil
}

func parseDocument(payload []byte, mode Mode) (*fieldbag.Document, error) {
	var raw map[string]any
	switch mode {
	case ModeJSON:
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, NewError(http.StatusBadRequest, "Invalid JSON payload")
		}
	case ModeXML:
		m, err := mxj.NewMapXml(payload)
		if err != nil {
			return nil, NewError(http.StatusBadRequest, "Invalid XML payload")
		}
		raw = map[string]any(m)
	default:
		return nil, NewError(http.StatusBadRequest, "Unresolved wire mode")
	}

	item := fieldbag.FromMap(raw)
	// The XML encoding wraps everything in a REQUEST root element.
	if inner, ok := item["request"]; ok && inner.Kind() == fieldbag.KindMap {
		item = inner.AsMap()
	}

	deviceID := strings.TrimSpace(item.GetString("deviceid"))
	if deviceID == "" {
		return nil, NewError(http.StatusBadRequest, "Device ID is missing")
	}

	action := strings.ToLower(strings.TrimSpace(item.GetString("action")))
	if action == "" {
		action = strings.ToLower(strings.TrimSpace(item.GetString("query")))
	}
	if action == "" {
		action = ActionInventory
	}
	canonical, ok := knownActions[action]
	if !ok {
		return nil, NewError(http.StatusBadRequest, "Unsupported action %q", action)
	}

	doc := &fieldbag.Document{
		DeviceID: deviceID,
		Action:   canonical,
		Partial:  item.GetBool("partial"),
	}
	if content, ok := item["content"]; ok && content.Kind() == fieldbag.KindMap {
		doc.Content = content.AsMap()
	} else {
		doc.Content = fieldbag.Item{}
	}
	return doc, nil
}
