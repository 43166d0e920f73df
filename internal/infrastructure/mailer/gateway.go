package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sngm3741/contact-form/api/internal/contact/domain"
)

// GatewayNotifier はメールゲートウェイの /messages エンドポイントへ HTTP で送信を依頼する。
type GatewayNotifier struct {
	httpClient *http.Client
	endpoint   string
}

// NewGatewayNotifier は送信先ベース URL と共有 HTTP クライアントを束縛した Notifier を返す。
// タイムアウトは httpClient 側の設定に委ねる。
func NewGatewayNotifier(httpClient *http.Client, endpoint string) *GatewayNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GatewayNotifier{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
	}
}

type gatewayMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send は 1 通のメールを送信する。ステータス 400 以上はエラーとして返す。
func (n *GatewayNotifier) Send(ctx context.Context, email domain.Email) error {
	if n.endpoint == "" {
		return errors.New("mail gateway endpoint is empty")
	}

	body, err := json.Marshal(gatewayMessage{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Body,
	})
	if err != nil {
		return fmt.Errorf("メール送信用ペイロードの作成に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("メール送信リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("メール送信リクエストに失敗: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("メール送信でエラーが発生: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}
