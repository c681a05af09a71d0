// ABOUTME: Tests for the MIME part tree decoder
// ABOUTME: Covers nested multiparts, attachments, base64url tolerance, and the depth guard
package ingest

import (
	"encoding/base64"
	"strings"
	"testing"

	"google.golang.org/api/gmail/v1"
)

func enc(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestDecodePartsNestedMultipart(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: enc("plain body")},
					},
					{
						MimeType: "text/html",
						Body:     &gmail.MessagePartBody{Data: enc("<p>html body</p>")},
					},
				},
			},
			{
				MimeType: "application/pdf",
				Filename: "quote.pdf",
				Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 2048},
			},
		},
	}

	decoded, err := DecodeParts(root)
	if err != nil {
		t.Fatalf("DecodeParts failed: %v", err)
	}

	if decoded.Body.Text != "plain body" {
		t.Errorf("Expected plain body, got %q", decoded.Body.Text)
	}
	if decoded.Body.HTML != "<p>html body</p>" {
		t.Errorf("Expected html body, got %q", decoded.Body.HTML)
	}
	if len(decoded.Attachments) != 1 {
		t.Fatalf("Expected 1 attachment, got %d", len(decoded.Attachments))
	}
	att := decoded.Attachments[0]
	if att.Filename != "quote.pdf" || att.AttachmentID != "att-1" || att.Size != 2048 {
		t.Errorf("Attachment descriptor wrong: %+v", att)
	}
}

func TestDecodePartsLastWriterWins(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("first")}},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: enc("second")}},
		},
	}

	decoded, err := DecodeParts(root)
	if err != nil {
		t.Fatalf("DecodeParts failed: %v", err)
	}
	if decoded.Body.Text != "second" {
		t.Errorf("Expected last text part to win, got %q", decoded.Body.Text)
	}
}

func TestDecodePartsUnpaddedBase64(t *testing.T) {
	unpadded := base64.RawURLEncoding.EncodeToString([]byte("no padding here"))
	root := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: unpadded},
	}

	decoded, err := DecodeParts(root)
	if err != nil {
		t.Fatalf("DecodeParts failed on unpadded input: %v", err)
	}
	if decoded.Body.Text != "no padding here" {
		t.Errorf("Unpadded decode produced %q", decoded.Body.Text)
	}
}

func TestDecodePartsInvalidBase64(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: "!!!not base64!!!"},
	}

	if _, err := DecodeParts(root); err == nil {
		t.Error("Expected error for undecodable payload")
	}
}

func TestDecodePartsDepthGuard(t *testing.T) {
	leaf := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: enc("deep")},
	}

	root := leaf
	for i := 0; i < maxPartDepth+5; i++ {
		root = &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts:    []*gmail.MessagePart{root},
		}
	}

	_, err := DecodeParts(root)
	if err == nil {
		t.Fatal("Expected depth guard to reject pathological nesting")
	}
	if !strings.Contains(err.Error(), "depth") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDecodePartsNilRoot(t *testing.T) {
	decoded, err := DecodeParts(nil)
	if err != nil {
		t.Fatalf("DecodeParts(nil) failed: %v", err)
	}
	if decoded.Body.Text != "" || len(decoded.Attachments) != 0 {
		t.Errorf("Expected empty result for nil root, got %+v", decoded)
	}
}
