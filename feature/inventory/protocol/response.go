package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"inventory-server/core/utils"
)

// Attributed is a response node carrying XML attributes next to its
// content. The JSON encoding flattens the attributes into sibling fields.
type Attributed struct {
	Content    any
	Attributes map[string]string
}

// Response is one agent-facing reply document, built incrementally and
// encoded in the request's wire mode.
type Response struct {
	mode   Mode
	status int

	jsonBody map[string]any
	xmlDoc   *etree.Document
	xmlRoot  *etree.Element
}

// NewResponse creates an empty reply document for the given wire mode.
func NewResponse(mode Mode) *Response {
	r := &Response{mode: mode, status: http.StatusOK}
	if mode == ModeXML {
		r.xmlDoc = etree.NewDocument()
		r.xmlDoc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
		r.xmlRoot = r.xmlDoc.CreateElement("REPLY")
	} else {
		r.jsonBody = map[string]any{}
	}
	return r
}

// Status returns the HTTP status the response should be sent with.
func (r *Response) Status() int { return r.status }

// SetStatus overrides the HTTP status.
func (r *Response) SetStatus(code int) { r.status = code }

// Add appends one node under the document root. Maps become nested
// nodes, lists repeat the node, Attributed carries XML attributes, and
// anything else is a leaf coerced to its string form.
func (r *Response) Add(name string, value any) {
	if r.mode == ModeXML {
		addXMLNode(r.xmlRoot, strings.ToUpper(name), value)
		return
	}
	r.jsonBody[name] = jsonNode(value)
}

// addVerbatim appends one node keeping the caller's key casing in both
// modes. Error replies use the legacy casing, which the uppercase XML
// convention of Add would mangle.
func (r *Response) addVerbatim(name string, value any) {
	if r.mode == ModeXML {
		addXMLNode(r.xmlRoot, name, value)
		return
	}
	r.jsonBody[name] = jsonNode(value)
}

func addXMLNode(parent *etree.Element, name string, value any) {
	switch v := value.(type) {
	case Attributed:
		el := parent.CreateElement(name)
		for _, attr := range sortedKeys(v.Attributes) {
			el.CreateAttr(attr, v.Attributes[attr])
		}
		if v.Content != nil {
			setXMLContent(el, v.Content)
		}
	case map[string]any:
		el := parent.CreateElement(name)
		for _, key := range sortedKeys(v) {
			addXMLNode(el, strings.ToUpper(key), v[key])
		}
	case []any:
		for _, entry := range v {
			addXMLNode(parent, name, entry)
		}
	default:
		parent.CreateElement(name).SetText(utils.ToString(v))
	}
}

func setXMLContent(el *etree.Element, content any) {
	if m, ok := content.(map[string]any); ok {
		for _, key := range sortedKeys(m) {
			addXMLNode(el, strings.ToUpper(key), m[key])
		}
		return
	}
	el.SetText(utils.ToString(content))
}

func jsonNode(value any) any {
	switch v := value.(type) {
	case Attributed:
		out := map[string]any{}
		for attr, attrValue := range v.Attributes {
			out[attr] = attrValue
		}
		if m, ok := v.Content.(map[string]any); ok {
			for key, entry := range m {
				out[key] = jsonNode(entry)
			}
		} else if v.Content != nil {
			out["content"] = jsonNode(v.Content)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, entry := range v {
			out[key] = jsonNode(entry)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, entry := range v {
			out[i] = jsonNode(entry)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// pathPattern matches absolute filesystem paths in error text. Paths
// leak server layout to unauthenticated agents and are redacted.
var pathPattern = regexp.MustCompile(`(?:/[\w.\-]+){2,}`)

// RedactPaths replaces filesystem paths in an error message.
func RedactPaths(message string) string {
	return pathPattern.ReplaceAllString(message, "...")
}

// ErrorResponse converts a failure into a reply document. Identified
// agents get a structured payload with the contact expiration; anonymous
// clients only get the bare message.
func ErrorResponse(mode Mode, err error, agentIdentified bool, expiration int) *Response {
	status := http.StatusInternalServerError
	var perr *Error
	if errors.As(err, &perr) {
		status = perr.Status
	}

	resp := NewResponse(mode)
	resp.status = status
	message := RedactPaths(err.Error())
	if agentIdentified {
		resp.addVerbatim("status", "error")
		resp.addVerbatim("message", message)
		resp.addVerbatim("expiration", expiration)
	} else {
		resp.addVerbatim("ERROR", message)
	}
	return resp
}

// Encode marshals the document and compresses it with the given codec.
// It returns the body and its content type.
func (r *Response) Encode(codec Codec) ([]byte, string, error) {
	var payload []byte
	var err error
	if r.mode == ModeXML {
		payload, err = r.xmlDoc.WriteToBytes()
	} else {
		payload, err = json.Marshal(r.jsonBody)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode response: %w", err)
	}

	body, err := Compress(payload, codec)
	if err != nil {
		return nil, "", err
	}
	return body, codec.ContentType(r.mode), nil
}
