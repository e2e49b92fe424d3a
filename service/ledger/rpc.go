package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/deedsync/deedsync/service/metrics"
)

// JSON-RPC error codes the provider is known to emit.
const (
	codeAuthorizationDenied = -32001
	codeExecutionReverted   = 3
)

// Provider RPC method names.
const (
	methodRequestAccounts = "wallet_requestAccounts"
	methodAccounts        = "wallet_accounts"
	methodGetBalance      = "ledger_getBalance"
	methodCall            = "ledger_call"
	methodSend            = "ledger_send"
)

// rpcProvider implements Provider over JSON-RPC 2.0 via HTTP. It adapts the
// provider daemon's wire protocol to the Provider interface so the rest of
// the system never sees transport details.
type rpcProvider struct {
	http    *resty.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRPCProvider creates a Provider speaking JSON-RPC to the daemon at
// endpoint. If m is nil, no metrics are recorded.
func NewRPCProvider(endpoint string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) Provider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cli := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &rpcProvider{
		http:    cli,
		logger:  logger,
		metrics: m,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// do issues one JSON-RPC request and decodes the result into out (when out
// is non-nil). Transport failures map to ErrProviderUnavailable; provider
// error codes map to the error taxonomy.
func (p *rpcProvider) do(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}

	var body rpcResponse
	start := time.Now()
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		Post("")
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil || body.Error != nil {
		status = "error"
	}
	if p.metrics != nil {
		p.metrics.RecordRPCCall(method, status, duration)
	}

	if err != nil {
		p.logger.ErrorContext(ctx, "provider request failed",
			"method", method,
			"error", err,
		)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: provider returned status %d", ErrProviderUnavailable, resp.StatusCode())
	}
	if body.Error != nil {
		return p.mapError(body.Error)
	}
	if out != nil {
		if err := json.Unmarshal(body.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	p.logger.DebugContext(ctx, "provider request completed",
		"method", method,
		"duration_seconds", duration,
	)
	return nil
}

// mapError translates provider error codes into the client error taxonomy.
func (p *rpcProvider) mapError(e *rpcError) error {
	switch e.Code {
	case codeAuthorizationDenied:
		return fmt.Errorf("%w: %s", ErrAuthorizationDenied, e.Message)
	case codeExecutionReverted:
		return &RevertError{Reason: e.Message}
	default:
		return fmt.Errorf("provider error %d: %s", e.Code, e.Message)
	}
}

func (p *rpcProvider) RequestAccounts(ctx context.Context) ([]Address, error) {
	var accounts []Address
	if err := p.do(ctx, methodRequestAccounts, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *rpcProvider) Accounts(ctx context.Context) ([]Address, error) {
	var accounts []Address
	if err := p.do(ctx, methodAccounts, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (p *rpcProvider) Balance(ctx context.Context, account Address) (*big.Int, error) {
	var raw string
	if err := p.do(ctx, methodGetBalance, []any{account}, &raw); err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q for account %s", raw, account)
	}
	return balance, nil
}

// callParams is the wire form of a contract invocation.
type callParams struct {
	To     Address `json:"to"`
	Method string  `json:"method"`
	Args   []any   `json:"args"`
	From   Address `json:"from,omitempty"`
	Value  string  `json:"value,omitempty"`
	Gas    uint64  `json:"gas,omitempty"`
}

func (p *rpcProvider) Call(ctx context.Context, req CallRequest) (json.RawMessage, error) {
	params := callParams{
		To:     req.To,
		Method: req.Method,
		Args:   req.Args,
	}
	if params.Args == nil {
		params.Args = []any{}
	}
	var result json.RawMessage
	if err := p.do(ctx, methodCall, []any{params}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *rpcProvider) Send(ctx context.Context, req SendRequest) (*Receipt, error) {
	params := callParams{
		To:     req.To,
		Method: req.Method,
		Args:   req.Args,
		From:   req.From,
		Gas:    req.Gas,
	}
	if params.Args == nil {
		params.Args = []any{}
	}
	if req.Value != nil {
		params.Value = req.Value.String()
	}

	var receipt Receipt
	if err := p.do(ctx, methodSend, []any{params}, &receipt); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "transaction acknowledged",
		"method", req.Method,
		"tx_hash", receipt.TxHash,
		"block", receipt.BlockNumber,
	)
	return &receipt, nil
}
