// Package protocol implements the agent wire protocol: compression
// codec negotiation from the request content type, JSON/XML payload
// parsing into field bags, and the reply document builder that mirrors
// the request's codec and wire mode.
package protocol
