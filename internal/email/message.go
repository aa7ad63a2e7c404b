package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Attachment is a file included with a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// BuildMessage composes a multipart/mixed message with a plain-text body
// and optional attachments, ready for Sender.Send.
func BuildMessage(from string, to []string, subject, body string, attachments ...Attachment) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	buf.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		return nil, fmt.Errorf("write body: %w", err)
	}

	for _, a := range attachments {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", a.ContentType)
		header.Set("Content-Transfer-Encoding", "base64")
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create attachment part: %w", err)
		}
		if err := writeBase64(part, a.Data); err != nil {
			return nil, fmt.Errorf("write attachment %s: %w", a.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64 encodes data with 76-character lines per RFC 2045.
func writeBase64(w interface{ Write([]byte) (int, error) }, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n])); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
