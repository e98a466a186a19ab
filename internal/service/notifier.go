package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"crewsheet/internal/logger"
	"crewsheet/internal/model"
)

// Notifier forwards prepared report messages to a third-party chat
// webhook. Inline image data is first uploaded through the configured
// image hosts in order; when every host fails the message still goes
// out text-only.
type Notifier struct {
	webhookURL string
	imageHosts []string
	client     *http.Client
}

func NewNotifier(webhookURL string, imageHosts []string) *Notifier {
	return &Notifier{webhookURL: webhookURL, imageHosts: imageHosts, client: &http.Client{}}
}

// Send posts the message. Exactly one of imageURL / imageData is used;
// a direct URL wins. Returns the webhook's HTTP-style status plus error
// detail; a send with all image hosts down is still a success if the
// text delivery worked.
func (n *Notifier) Send(ctx context.Context, req model.NotifyRequest) model.NotifyResponse {
	if n.webhookURL == "" {
		return model.NotifyResponse{Status: http.StatusServiceUnavailable, Error: "no webhook configured"}
	}

	imageURL := req.ImageURL
	textOnly := false
	if imageURL == "" && req.ImageData != "" {
		uploaded, err := n.uploadImage(ctx, req.ImageData)
		if err != nil {
			logger.Warn("image upload failed, sending text-only", "err", err)
			textOnly = true
		} else {
			imageURL = uploaded
		}
	}
	if imageURL == "" {
		textOnly = true
	}

	payload := map[string]string{"text": req.Text}
	if imageURL != "" {
		payload["image_url"] = imageURL
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return model.NotifyResponse{Status: http.StatusInternalServerError, Error: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return model.NotifyResponse{Status: http.StatusBadGateway, Error: fmt.Sprintf("webhook call: %v", err)}
	}
	defer resp.Body.Close()

	out := model.NotifyResponse{Status: resp.StatusCode, TextOnly: textOnly, ImageURL: imageURL}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		out.Error = fmt.Sprintf("webhook status %d: %s", resp.StatusCode, detail)
	}
	return out
}

// uploadImage walks the host list until one accepts the image. Hosts
// take a multipart "image" field and answer JSON carrying a url at the
// top level or under "data".
func (n *Notifier) uploadImage(ctx context.Context, b64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image data: %w", err)
	}

	var lastErr error
	for _, host := range n.imageHosts {
		url, err := n.uploadTo(ctx, host, data)
		if err == nil {
			return url, nil
		}
		logger.Warn("image host failed", "host", host, "err", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no image hosts configured")
	}
	return "", lastErr
}

func (n *Notifier) uploadTo(ctx context.Context, host string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "report.png")
	if err != nil {
		return "", err
	}
	part.Write(data)
	mw.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", host, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("host status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		URL  string `json:"url"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode host response: %w", err)
	}
	if parsed.URL != "" {
		return parsed.URL, nil
	}
	if parsed.Data.URL != "" {
		return parsed.Data.URL, nil
	}
	return "", fmt.Errorf("host response had no url")
}
