package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	"github.com/wealthwise/wealthwise/pkg/domain"
)

// MaxReceiptSize caps how much of a receipt is read into memory for preview.
const MaxReceiptSize = 20 << 20

// ViewReceipt fetches the receipt attached to a transaction.
func (c *Client) ViewReceipt(ctx context.Context, id domain.ID) (*domain.Receipt, error) {
	resp, err := c.raw(ctx, "/receipt/view/"+url.PathEscape(id.String()))
	if err != nil {
		return nil, fmt.Errorf("client.ViewReceipt: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxReceiptSize))
	if err != nil {
		return nil, fmt.Errorf("client.ViewReceipt: read body: %w", err)
	}
	return &domain.Receipt{
		ContentType: contentType(resp.Header.Get("Content-Type"), data),
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
		Data:        data,
	}, nil
}

// DownloadReceipt streams the receipt to w and returns the server-provided
// filename, if any, and the byte count.
func (c *Client) DownloadReceipt(ctx context.Context, id domain.ID, w io.Writer) (string, int64, error) {
	resp, err := c.raw(ctx, "/receipt/download/"+url.PathEscape(id.String()))
	if err != nil {
		return "", 0, fmt.Errorf("client.DownloadReceipt: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("client.DownloadReceipt: copy: %w", err)
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), n, nil
}

// UploadReceipt attaches a receipt file to a transaction.
func (c *Client) UploadReceipt(ctx context.Context, id domain.ID, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("receipt", filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("client.UploadReceipt: read file: %w", err)
	}

	meta, err := json.Marshal(domain.ReceiptMetadata{TransactionID: id})
	if err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="metadata"; filename="metadata.json"`)
	h.Set("Content-Type", "application/json")
	metaPart, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	if _, err := metaPart.Write(meta); err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/receipt", nil, &buf)
	if err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("client.UploadReceipt: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	return nil
}

func (c *Client) raw(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func contentType(header string, data []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil || params["filename"] == "" {
		return ""
	}
	return filepath.Base(params["filename"])
}
