// ABOUTME: MIME part tree decoder for inbound messages
// ABOUTME: Flattens nested multipart payloads into body text/html and attachment descriptors
package ingest

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/harperreed/crmflow/models"
)

// maxPartDepth bounds the recursive walk against pathological nesting.
const maxPartDepth = 32

// DecodedMessage is the flat result of walking one message's part tree.
type DecodedMessage struct {
	Body        models.EmailBody
	Attachments []models.EmailAttachment
}

// DecodeParts walks a message part tree depth-first and collects the inline
// text/plain and text/html bodies plus all attachment descriptors. When a
// message carries multiple leaves of the same type the last one wins; bodies
// are never concatenated. A payload that fails base64 decoding fails the
// whole message. Pure function of its input.
func DecodeParts(root *gmail.MessagePart) (*DecodedMessage, error) {
	if root == nil {
		return &DecodedMessage{}, nil
	}

	decoded := &DecodedMessage{}
	if err := walkPart(root, 0, decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func walkPart(part *gmail.MessagePart, depth int, out *DecodedMessage) error {
	if depth > maxPartDepth {
		return fmt.Errorf("message part tree exceeds max depth %d", maxPartDepth)
	}
	if part == nil {
		return nil
	}

	// A part with a storage attachment reference and a filename is an
	// attachment regardless of its MIME type.
	if part.Body != nil && part.Body.AttachmentId != "" && part.Filename != "" {
		out.Attachments = append(out.Attachments, models.EmailAttachment{
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
			AttachmentID: part.Body.AttachmentId,
		})
	}

	if part.Body != nil && part.Body.Data != "" {
		switch part.MimeType {
		case "text/plain":
			text, err := decodeBase64URL(part.Body.Data)
			if err != nil {
				return fmt.Errorf("failed to decode text/plain part: %w", err)
			}
			out.Body.Text = string(text)
		case "text/html":
			html, err := decodeBase64URL(part.Body.Data)
			if err != nil {
				return fmt.Errorf("failed to decode text/html part: %w", err)
			}
			out.Body.HTML = string(html)
		}
	}

	for _, child := range part.Parts {
		if err := walkPart(child, depth+1, out); err != nil {
			return err
		}
	}

	return nil
}

// decodeBase64URL decodes URL-safe base64, tolerating missing padding.
func decodeBase64URL(s string) ([]byte, error) {
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(s)
}
