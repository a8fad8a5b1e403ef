// Package whatsapp is the WhatsApp Cloud API transport: outbound sends, media
// download and the inbound webhook.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/clinic-assistant/internal/messaging"
)

const (
	defaultBaseURL     = "https://graph.facebook.com"
	defaultAPIVersion  = "v21.0"
	defaultHTTPTimeout = 10 * time.Second
	maxMediaBytes      = 16 << 20

	// Cloud API field limits.
	maxBodyRunes        = 1024
	maxButtonTitleRunes = 20
	maxRowTitleRunes    = 24
	maxRowDescRunes     = 72
	maxListRows         = 10
	defaultListButton   = "Options"
)

// Config controls the Cloud API client.
type Config struct {
	Token         string
	PhoneNumberID string
	APIVersion    string
	BaseURL       string
	HTTPClient    *http.Client
}

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	token         string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a client. Token and phone number id are required.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("whatsapp: access token is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("whatsapp: phone number id is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	version := strings.Trim(strings.TrimSpace(cfg.APIVersion), "/")
	if version == "" {
		version = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       base + "/" + version,
		httpClient:    httpClient,
	}, nil
}

// Send delivers one message to the WhatsApp user to.
func (c *Client) Send(ctx context.Context, to string, content messaging.Content) error {
	req, err := buildSendRequest(to, content)
	if err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("whatsapp: marshal send request: %w", err)
	}
	data, status, err := c.do(ctx, http.MethodPost, c.baseURL+"/"+c.phoneNumberID+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	var resp sendResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("whatsapp: unmarshal send response (status %d): %w", status, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if status != http.StatusOK {
		return fmt.Errorf("whatsapp: unexpected status %d", status)
	}
	return nil
}

// DownloadMedia resolves a media id and fetches its bytes.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	if strings.TrimSpace(mediaID) == "" {
		return nil, "", errors.New("whatsapp: media id is required")
	}
	data, status, err := c.do(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return nil, "", err
	}
	var info mediaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, "", fmt.Errorf("whatsapp: unmarshal media info: %w", err)
	}
	if info.Error != nil {
		return nil, "", info.Error
	}
	if status != http.StatusOK || info.URL == "" {
		return nil, "", fmt.Errorf("whatsapp: media %s not available (status %d)", mediaID, status)
	}
	if info.FileSize > maxMediaBytes {
		return nil, "", fmt.Errorf("whatsapp: media %s too large: %d bytes", mediaID, info.FileSize)
	}

	audio, status, err := c.do(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, "", err
	}
	if status != http.StatusOK {
		return nil, "", fmt.Errorf("whatsapp: media download status %d", status)
	}
	return audio, info.MimeType, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("whatsapp: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("whatsapp: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("whatsapp: read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func buildSendRequest(to string, content messaging.Content) (*sendRequest, error) {
	if strings.TrimSpace(to) == "" {
		return nil, errors.New("whatsapp: recipient is required")
	}
	req := &sendRequest{MessagingProduct: "whatsapp", RecipientType: "individual", To: to}
	switch content.Kind {
	case messaging.KindText, "":
		req.Type = "text"
		req.Text = &sendText{Body: content.Text}
	case messaging.KindButtons:
		req.Type = "interactive"
		buttons := make([]sendButton, 0, len(content.Options))
		for _, o := range content.Options {
			buttons = append(buttons, sendButton{Type: "reply", Reply: ReplyItem{ID: o.ID, Title: truncate(o.Title, maxButtonTitleRunes)}})
		}
		req.Interactive = &sendInteractive{
			Type:   "button",
			Body:   sendBody{Text: truncate(content.Text, maxBodyRunes)},
			Action: sendAction{Buttons: buttons},
		}
	case messaging.KindList:
		req.Type = "interactive"
		label := content.ButtonLabel
		if label == "" {
			label = defaultListButton
		}
		rows := 0
		sections := make([]sendSection, 0, len(content.Sections))
		for _, s := range content.Sections {
			sec := sendSection{Title: truncate(s.Title, maxRowTitleRunes)}
			for _, o := range s.Options {
				if rows == maxListRows {
					break
				}
				sec.Rows = append(sec.Rows, ReplyItem{
					ID:          o.ID,
					Title:       truncate(o.Title, maxRowTitleRunes),
					Description: truncate(o.Description, maxRowDescRunes),
				})
				rows++
			}
			if len(sec.Rows) > 0 {
				sections = append(sections, sec)
			}
		}
		req.Interactive = &sendInteractive{
			Type:   "list",
			Body:   sendBody{Text: truncate(content.Text, maxBodyRunes)},
			Action: sendAction{Button: truncate(label, maxButtonTitleRunes), Sections: sections},
		}
	case messaging.KindImage:
		req.Type = "image"
		req.Image = &sendMedia{Link: content.MediaURL, Caption: content.Text}
	case messaging.KindAudio:
		req.Type = "audio"
		req.Audio = &sendMedia{Link: content.MediaURL}
	default:
		return nil, fmt.Errorf("whatsapp: unsupported content kind %q", content.Kind)
	}
	return req, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
