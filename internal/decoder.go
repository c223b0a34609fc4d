package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
)

// defaultMaxMemory bounds in-memory buffering of multipart bodies,
// matching net/http's ParseMultipartForm default.
const defaultMaxMemory = 32 << 20

// decodeBody materializes the request body into the context based
// strictly on Content-Type. Only POST, PUT, and PATCH requests decode;
// everything else keeps an empty body map. The body bytes are buffered
// first so the original stream stays consumable downstream.
//
// A JSON body that fails to parse is a validation failure, not a
// generic crash. An unrecognized content type decodes to an empty map
// and is never an error.
func decodeBody(c *Context) error {
	switch c.request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil
	}
	if c.request.Body == nil {
		return nil
	}

	raw, err := io.ReadAll(c.request.Body)
	if err != nil {
		return ErrValidation("unreadable request body", WithError(err))
	}
	// Restore the stream for anything downstream that re-reads it.
	c.request.Body = io.NopCloser(bytes.NewReader(raw))

	contentType, params, _ := mime.ParseMediaType(c.request.Header.Get("Content-Type"))

	switch contentType {
	case "application/json":
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return ErrValidation("invalid JSON body", WithError(err))
		}
		if decoded != nil {
			c.body = decoded
		}

	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return ErrValidation("invalid form body", WithError(err))
		}
		// Duplicate keys overwrite; the last value wins.
		for key, vals := range values {
			c.body[key] = vals[len(vals)-1]
		}

	case "multipart/form-data":
		boundary := params["boundary"]
		if boundary == "" {
			return ErrValidation("multipart body without boundary")
		}
		if err := decodeMultipart(c, raw, boundary); err != nil {
			return ErrValidation("invalid multipart body", WithError(err))
		}
	}

	// Any other content type decodes to an empty body, never an error.
	return nil
}

// decodeMultipart reads a multipart body into the context: plain
// fields become string values, file fields stay as *FileHeader handles.
func decodeMultipart(c *Context, raw []byte, boundary string) error {
	form, err := multipart.NewReader(bytes.NewReader(raw), boundary).ReadForm(defaultMaxMemory)
	if err != nil {
		return err
	}
	for key, vals := range form.Value {
		if len(vals) > 0 {
			c.body[key] = vals[len(vals)-1]
		}
	}
	if len(form.File) > 0 && c.files == nil {
		c.files = make(map[string]*multipart.FileHeader, len(form.File))
	}
	for key, headers := range form.File {
		if len(headers) > 0 {
			c.body[key] = headers[0]
			c.files[key] = headers[0]
		}
	}
	return nil
}
