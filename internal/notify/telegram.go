package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	BaseURL string
	Client  *http.Client
}

func NewTelegram() *Telegram {
	return &Telegram{
		BaseURL: telegramAPI,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramPayload struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, message, chatID, token string) error {
	if token == "" || chatID == "" {
		return errors.New("telegram: token and chat id are required")
	}
	body, err := json.Marshal(telegramPayload{ChatID: chatID, Text: message})
	if err != nil {
		return errors.Wrap(err, "telegram: encode payload")
	}
	url := strings.TrimRight(t.BaseURL, "/") + "/bot" + token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		// the URL embeds the token, keep it out of the error
		return errors.New("telegram: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return errors.Wrap(redactToken(err, token), "telegram: send")
	}
	defer resp.Body.Close()

	var tr telegramResponse
	_ = json.NewDecoder(resp.Body).Decode(&tr)
	if resp.StatusCode/100 != 2 || !tr.OK {
		if tr.Description != "" {
			return errors.Errorf("telegram: status %d: %s", resp.StatusCode, tr.Description)
		}
		return errors.Errorf("telegram: status %d", resp.StatusCode)
	}
	return nil
}

func redactToken(err error, token string) error {
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
