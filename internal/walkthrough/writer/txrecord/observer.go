package txrecord

import (
	"context"

	"ocean-df/internal/walkthrough/model"
	"ocean-df/internal/walkthrough/step"
	"ocean-df/pkg/evm_client"
)

// Submitter AsyncBatchWriter 的提交端
type Submitter interface {
	Submit(item model.TxRecord)
}

// Observer 把上链结果转成 TxRecord 交给异步写入
type Observer struct {
	RunID string
	Out   Submitter
}

func (o Observer) ObserveReceipt(ctx context.Context, res evm_client.TxResult) {
	o.Out.Submit(model.NewTxRecord(o.RunID, step.NameFromContext(ctx), res))
}
