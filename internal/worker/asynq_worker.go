package worker

import (
	"context"
	"encoding/json"

	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/provider"
	"github.com/ctv-ledger/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNetworkPropagate, c.handleNetworkPropagate)
}

// handleNetworkPropagate 消费团队佣金任务
// 返回 error 触发 asynq 重试；不可恢复的载荷直接吞掉避免死循环
func (c *Consumer) handleNetworkPropagate(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_network_propagate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NetworkPropagatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_network_propagate_unmarshal_failed", "error", err)
		return nil
	}
	if payload.TransactionID == "" || payload.AffiliateID == 0 || payload.AmountMinor <= 0 {
		logger.Debugw("worker_network_propagate_skip_invalid_payload",
			"transaction_id", payload.TransactionID,
			"affiliate_id", payload.AffiliateID,
		)
		return nil
	}
	if c.CommissionService == nil {
		logger.Warnw("worker_network_propagate_skip_service_nil", "transaction_id", payload.TransactionID)
		return nil
	}
	if err := c.CommissionService.PropagateNetwork(ctx, payload.TransactionID, payload.AffiliateID, payload.AmountMinor, payload.Currency); err != nil {
		logger.Warnw("worker_network_propagate_failed",
			"transaction_id", payload.TransactionID,
			"affiliate_id", payload.AffiliateID,
			"error", err,
		)
		return err
	}
	return nil
}
