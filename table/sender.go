package table

import (
	"context"

	"github.com/pingcap/metertable/common"
)

// Sender delivers replies to the controller connection that sent a request.
// Send is called with the table lock held and must not call back into the table.
type Sender interface {
	Send(ctx context.Context, to *common.Remote, msg common.Message) error
}

// SenderFunc adapts a function to the Sender interface
type SenderFunc func(ctx context.Context, to *common.Remote, msg common.Message) error

// Send implements Sender interface
func (f SenderFunc) Send(ctx context.Context, to *common.Remote, msg common.Message) error {
	return f(ctx, to, msg)
}

// nopSender discards replies, used when no sender is configured
type nopSender struct{}

func (nopSender) Send(context.Context, *common.Remote, common.Message) error { return nil }
