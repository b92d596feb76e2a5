package service

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"techmart/pkg/logger"
)

// ==================== 订单事件 ====================

// OrderEvent 发往消息队列的订单事件
type OrderEvent struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	FromStatus  string    `json:"fromStatus,omitempty"`
	ToStatus    string    `json:"toStatus"`
	TotalAmount float64   `json:"totalAmount"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ==================== 发布器 ====================

// OrderEventPublisher AMQP 订单事件发布器
// 连接失败或未配置时为 nil，调用方无需判空以外的处理
type OrderEventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewOrderEventPublisher 建立连接并声明 topic exchange
// url 为空返回 (nil, nil)，表示未启用
func NewOrderEventPublisher(url, exchange string) (*OrderEventPublisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}
	return &OrderEventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// PublishStatusChanged 发布状态变更事件，尽力而为
func (p *OrderEventPublisher) PublishStatusChanged(evt OrderEvent) {
	p.publish("order.status.changed", evt)
}

// PublishCreated 发布下单事件
func (p *OrderEventPublisher) PublishCreated(evt OrderEvent) {
	p.publish("order.created", evt)
}

func (p *OrderEventPublisher) publish(routingKey string, evt OrderEvent) {
	if p == nil || p.channel == nil {
		return
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return
	}
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		logger.L.Warn("订单事件发布失败",
			zap.String("routingKey", routingKey),
			zap.Int64("orderId", evt.OrderID),
			zap.Error(err))
	}
}

// Close 关闭连接
func (p *OrderEventPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
