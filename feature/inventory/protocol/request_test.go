package protocol

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiate(t *testing.T) {
	codec, mode, err := Negotiate("application/x-compress-zlib", true)
	assert.NoError(t, err)
	assert.Equal(t, CodecZlib, codec)
	assert.Equal(t, ModeAuto, mode)

	codec, mode, err = Negotiate("application/json; charset=utf-8", true)
	assert.NoError(t, err)
	assert.Equal(t, CodecNone, codec)
	assert.Equal(t, ModeJSON, mode)

	_, mode, err = Negotiate("text/xml", true)
	assert.NoError(t, err)
	assert.Equal(t, ModeXML, mode)

	_, mode, err = Negotiate("", true)
	assert.NoError(t, err)
	assert.Equal(t, ModeAuto, mode)
}

func TestNegotiateBrotliDisabled(t *testing.T) {
	_, _, err := Negotiate("application/x-compress-br", false)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusUnsupportedMediaType, perr.Status)
}

func TestParseRequestJSON(t *testing.T) {
	body := []byte(`{
		"deviceid": "pc-2023-01-01-10-00-00",
		"action": "inventory",
		"partial": true,
		"content": {"softwares": [{"name": "Firefox"}]}
	}`)

	req, err := ParseRequest(body, CodecNone, ModeAuto)
	require.NoError(t, err)

	assert.Equal(t, ModeJSON, req.Mode)
	assert.Equal(t, "pc-2023-01-01-10-00-00", req.Document.DeviceID)
	assert.Equal(t, ActionInventory, req.Document.Action)
	assert.True(t, req.Document.Partial)

	items := req.Document.Items("softwares")
	require.Len(t, items, 1)
	assert.Equal(t, "Firefox", items[0].GetString("name"))
}

func TestParseRequestXML(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<REQUEST>
  <DEVICEID>pc-2023-01-01-10-00-00</DEVICEID>
  <QUERY>INVENTORY</QUERY>
  <CONTENT>
    <SOFTWARES>
      <NAME>Firefox</NAME>
      <VERSION>118.0</VERSION>
    </SOFTWARES>
  </CONTENT>
</REQUEST>`)

	req, err := ParseRequest(body, CodecNone, ModeAuto)
	require.NoError(t, err)

	assert.Equal(t, ModeXML, req.Mode)
	assert.Equal(t, "pc-2023-01-01-10-00-00", req.Document.DeviceID)
	assert.Equal(t, ActionInventory, req.Document.Action)
	assert.False(t, req.Document.Partial)

	items := req.Document.Items("softwares")
	require.Len(t, items, 1)
	assert.Equal(t, "118.0", items[0].GetString("version"))
}

func TestParseRequestCompressed(t *testing.T) {
	plain := []byte(`{"deviceid": "dev-1", "content": {}}`)
	body, err := Compress(plain, CodecZlib)
	require.NoError(t, err)

	req, err := ParseRequest(body, CodecZlib, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, "dev-1", req.Document.DeviceID)
	assert.Equal(t, plain, req.Payload)
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"missing deviceid", `{"content": {}}`, http.StatusBadRequest},
		{"malformed xml", `<REQUEST><DEVICEID>x`, http.StatusBadRequest},
		{"unknown action", `{"deviceid": "d", "action": "wipe"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.body), CodecNone, ModeAuto)
			require.Error(t, err)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.status, perr.Status)
		})
	}
}

func TestParseRequestBadCompression(t *testing.T) {
	_, err := ParseRequest([]byte("garbage"), CodecGzip, ModeAuto)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadRequest, perr.Status)
}

func TestParseRequestActionAliases(t *testing.T) {
	req, err := ParseRequest([]byte(`{"deviceid": "d", "action": "snmpquery"}`), CodecNone, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, ActionNetInventory, req.Document.Action)

	req, err = ParseRequest([]byte(`{"deviceid": "d", "query": "PROLOG"}`), CodecNone, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, ActionProlog, req.Document.Action)
}
