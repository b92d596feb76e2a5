package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"techmart/pkg/logger"
)

// WebhookNotifier 把订单/库存事件 POST 到外部回调地址
// 不做重试与退避，失败只记日志
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier 创建回调通知器，url 为空表示未启用
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "TechMart-Server/1.0")
	return &WebhookNotifier{client: client, url: url}
}

// Notify 发送事件，尽力而为
func (n *WebhookNotifier) Notify(ctx context.Context, event string, payload interface{}) {
	if n == nil || n.url == "" {
		return
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("X-Event", event).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		logger.L.Warn("webhook 发送失败", zap.String("event", event), zap.Error(err))
		return
	}
	if resp.StatusCode() >= 400 {
		logger.L.Warn("webhook 被拒绝",
			zap.String("event", event),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
	}
}
