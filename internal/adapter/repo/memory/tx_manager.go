package memory

import (
	"context"
	"sync"
)

// TxManager serialises units of work. Repositories lock the store themselves.
type TxManager struct {
	mu *sync.Mutex
}

func NewTxManager() TxManager {
	return TxManager{mu: &sync.Mutex{}}
}

func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
