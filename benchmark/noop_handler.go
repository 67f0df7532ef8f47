package benchmark

import (
	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/handler"
)

type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Emit(rec *core.Record) error {
	_ = len(rec.Message)
	return nil
}

func (h *noopHandler) Flush() error {
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}

func (h *noopHandler) CanRecycleRecord() bool {
	return true
}
