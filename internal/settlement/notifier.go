package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier tells the external settlement layer about a resolved dispute.
// Fire-and-forget from the core's point of view; no response is awaited
// beyond transport success.
type Notifier interface {
	NotifyResolution(ctx context.Context, dealID, outcome string) error
}

// RPCNotifier posts a JSON-RPC style call to the settlement endpoint.
type RPCNotifier struct {
	url    string
	client *http.Client
}

func NewRPCNotifier(url string) *RPCNotifier {
	return &RPCNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

func (n *RPCNotifier) NotifyResolution(ctx context.Context, dealID, outcome string) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "deal_resolveDispute",
		Params:  []any{dealID, outcome},
		ID:      1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("settlement endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier is used when no settlement endpoint is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyResolution(ctx context.Context, dealID, outcome string) error {
	return nil
}
