package queue

import (
	"encoding/json"

	"github.com/ctv-ledger/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNetworkPropagate 团队佣金上溯入账任务
	TaskNetworkPropagate = constants.TaskNetworkPropagate
)

// NetworkPropagatePayload 团队佣金任务载荷
// AmountMinor 为直推佣金金额，逐级原额计入上级的团队收益
type NetworkPropagatePayload struct {
	TransactionID string `json:"transaction_id"`
	AffiliateID   uint   `json:"affiliate_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Currency      string `json:"currency"`
}

// NewNetworkPropagateTask 创建团队佣金任务
func NewNetworkPropagateTask(payload NetworkPropagatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNetworkPropagate, body), nil
}
