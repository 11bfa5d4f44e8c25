package ledger

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service is the ledger-facing contract used by the payment flow. The
// fullnode is a black box behind this interface; tests substitute mocks.
type Service interface {
	BuildPaymentTransaction(ctx context.Context, sender, recipient, amountRaw, paymentID, memo string) (*BuiltTransaction, error)
	Submit(ctx context.Context, signed *SignedTransaction) (*SubmitResult, error)
	GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatus, error)
	GetBalance(ctx context.Context, address string) (string, error)
	Fund(ctx context.Context, address, amount string) error
	NetworkConfig() NetworkConfig
}

// NetworkConfig describes the chain endpoints exposed via GET /config.
type NetworkConfig struct {
	Network       string `json:"network"`
	NodeURL       string `json:"nodeUrl"`
	ExplorerURL   string `json:"explorerUrl"`
	ModuleAddress string `json:"moduleAddress"`
	CoinType      string `json:"coinType"`
	GasSponsored  bool   `json:"gasSponsored"`
}

// BuiltTransaction is an unsigned transaction prepared for client-side
// signing: the raw request to sign plus the encoded signing message.
type BuiltTransaction struct {
	SigningMessage string          `json:"signingMessage"`
	RawTransaction json.RawMessage `json:"rawTransaction"`
	PaymentID      string          `json:"paymentId,omitempty"`
}

// SignedTransaction pairs the raw transaction with the sender's ed25519
// credentials.
type SignedTransaction struct {
	RawTransaction json.RawMessage `json:"rawTransaction"`
	PublicKey      string          `json:"publicKey"`
	Signature      string          `json:"signature"`
}

// SubmitResult is the outcome of a committed submission.
type SubmitResult struct {
	Success   bool   `json:"success"`
	Hash      string `json:"hash"`
	VMStatus  string `json:"vmStatus"`
	Sponsored bool   `json:"sponsored"`
}

// TransactionStatus reports what the fullnode knows about a hash.
// Exists is false when the node has never seen it; Pending is true while
// it sits in the mempool.
type TransactionStatus struct {
	Exists    bool   `json:"exists"`
	Pending   bool   `json:"pending,omitempty"`
	Success   bool   `json:"success,omitempty"`
	VMStatus  string `json:"vmStatus,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Config holds the fullnode endpoints and transaction defaults.
type Config struct {
	Network       string
	NodeURL       string
	FaucetURL     string
	ExplorerURL   string
	ModuleAddress string
	CoinType      string
	SubmitTimeout time.Duration
	MaxGasAmount  uint64
	GasUnitPrice  uint64
	TxnTTL        time.Duration
}

// Client talks to a Movement fullnode over its REST API.
type Client struct {
	cfg     Config
	http    *http.Client
	sponsor *GasStation
	now     func() time.Time
}

func NewClient(cfg Config, sponsor *GasStation) *Client {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	if cfg.MaxGasAmount == 0 {
		cfg.MaxGasAmount = 100000
	}
	if cfg.GasUnitPrice == 0 {
		cfg.GasUnitPrice = 100
	}
	if cfg.TxnTTL <= 0 {
		cfg.TxnTTL = 2 * time.Minute
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.SubmitTimeout},
		sponsor: sponsor,
		now:     time.Now,
	}
}

func (c *Client) NetworkConfig() NetworkConfig {
	return NetworkConfig{
		Network:       c.cfg.Network,
		NodeURL:       c.cfg.NodeURL,
		ExplorerURL:   c.cfg.ExplorerURL,
		ModuleAddress: c.cfg.ModuleAddress,
		CoinType:      c.cfg.CoinType,
		GasSponsored:  c.sponsor != nil,
	}
}

type entryFunctionPayload struct {
	Type          string        `json:"type"`
	Function      string        `json:"function"`
	TypeArguments []string      `json:"type_arguments"`
	Arguments     []interface{} `json:"arguments"`
}

type transactionRequest struct {
	Sender                  string               `json:"sender"`
	SequenceNumber          string               `json:"sequence_number"`
	MaxGasAmount            string               `json:"max_gas_amount"`
	GasUnitPrice            string               `json:"gas_unit_price"`
	ExpirationTimestampSecs string               `json:"expiration_timestamp_secs"`
	Payload                 entryFunctionPayload `json:"payload"`
}

// BuildPaymentTransaction prepares a payment call against the on-chain
// payment module, falling back to a plain coin transfer when no module
// address is configured.
func (c *Client) BuildPaymentTransaction(ctx context.Context, sender, recipient, amountRaw, paymentID, memo string) (*BuiltTransaction, error) {
	seq, err := c.sequenceNumber(ctx, sender)
	if err != nil {
		return nil, err
	}

	var payload entryFunctionPayload
	if c.cfg.ModuleAddress != "" {
		payload = entryFunctionPayload{
			Type:          "entry_function_payload",
			Function:      c.cfg.ModuleAddress + "::payment::pay",
			TypeArguments: []string{c.cfg.CoinType},
			Arguments:     []interface{}{recipient, amountRaw, "0x" + hex.EncodeToString([]byte(paymentID)), memo},
		}
	} else {
		payload = entryFunctionPayload{
			Type:          "entry_function_payload",
			Function:      "0x1::aptos_account::transfer_coins",
			TypeArguments: []string{c.cfg.CoinType},
			Arguments:     []interface{}{recipient, amountRaw},
		}
	}

	req := transactionRequest{
		Sender:                  sender,
		SequenceNumber:          seq,
		MaxGasAmount:            fmt.Sprintf("%d", c.cfg.MaxGasAmount),
		GasUnitPrice:            fmt.Sprintf("%d", c.cfg.GasUnitPrice),
		ExpirationTimestampSecs: fmt.Sprintf("%d", c.now().Add(c.cfg.TxnTTL).Unix()),
		Payload:                 payload,
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var signingMessage string
	if err := c.post(ctx, "/transactions/encode_submission", raw, &signingMessage); err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	return &BuiltTransaction{
		SigningMessage: signingMessage,
		RawTransaction: raw,
		PaymentID:      paymentID,
	}, nil
}

// Submit sends a signed transaction and waits for it to commit. When a gas
// station is configured the submission is routed through it so the sender
// pays no gas.
func (c *Client) Submit(ctx context.Context, signed *SignedTransaction) (*SubmitResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SubmitTimeout)
	defer cancel()

	var (
		hash      string
		sponsored bool
		err       error
	)
	if c.sponsor != nil {
		hash, err = c.sponsor.SponsorAndSubmit(ctx, signed)
		sponsored = true
	} else {
		hash, err = c.submitDirect(ctx, signed)
	}
	if err != nil {
		return nil, err
	}

	status, err := c.waitForTransaction(ctx, hash)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		Success:   status.Success,
		Hash:      hash,
		VMStatus:  status.VMStatus,
		Sponsored: sponsored,
	}, nil
}

func (c *Client) submitDirect(ctx context.Context, signed *SignedTransaction) (string, error) {
	var txn map[string]interface{}
	if err := json.Unmarshal(signed.RawTransaction, &txn); err != nil {
		return "", fmt.Errorf("decode raw transaction: %w", err)
	}
	txn["signature"] = map[string]string{
		"type":       "ed25519_signature",
		"public_key": normalizePublicKey(signed.PublicKey),
		"signature":  with0x(signed.Signature),
	}

	body, err := json.Marshal(txn)
	if err != nil {
		return "", err
	}

	var pending struct {
		Hash string `json:"hash"`
	}
	if err := c.post(ctx, "/transactions", body, &pending); err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	return pending.Hash, nil
}

func (c *Client) waitForTransaction(ctx context.Context, hash string) (*TransactionStatus, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		status, err := c.GetTransactionStatus(ctx, hash)
		if err != nil {
			return nil, err
		}
		if status.Exists && !status.Pending {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for transaction %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetTransactionStatus looks up a hash on the fullnode. A 404 means the
// node never saw the transaction.
func (c *Client) GetTransactionStatus(ctx context.Context, txHash string) (*TransactionStatus, error) {
	var txn struct {
		Type      string `json:"type"`
		Success   bool   `json:"success"`
		VMStatus  string `json:"vm_status"`
		Timestamp string `json:"timestamp"`
	}
	code, err := c.get(ctx, "/transactions/by_hash/"+url.PathEscape(txHash), &txn)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return &TransactionStatus{Exists: false}, nil
	}
	if txn.Type == "pending_transaction" {
		return &TransactionStatus{Exists: true, Pending: true}, nil
	}
	return &TransactionStatus{
		Exists:    true,
		Success:   txn.Success,
		VMStatus:  txn.VMStatus,
		Timestamp: txn.Timestamp,
	}, nil
}

// GetBalance returns the configured coin's balance in base units as a
// decimal string.
func (c *Client) GetBalance(ctx context.Context, address string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"function":       "0x1::coin::balance",
		"type_arguments": []string{c.cfg.CoinType},
		"arguments":      []string{address},
	})
	if err != nil {
		return "", err
	}

	var result []string
	if err := c.post(ctx, "/view", body, &result); err != nil {
		return "", fmt.Errorf("view balance: %w", err)
	}
	if len(result) == 0 {
		return "0", nil
	}
	return result[0], nil
}

// Fund requests test tokens from the faucet. Mainnet deployments leave the
// faucet URL empty.
func (c *Client) Fund(ctx context.Context, address, amount string) error {
	if c.cfg.FaucetURL == "" {
		return fmt.Errorf("faucet not configured")
	}

	u := fmt.Sprintf("%s?amount=%s&address=%s",
		strings.TrimSuffix(c.cfg.FaucetURL, "/"), url.QueryEscape(amount), url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("faucet request failed: %d %s", resp.StatusCode, string(b))
	}
	return nil
}

func (c *Client) sequenceNumber(ctx context.Context, address string) (string, error) {
	var account struct {
		SequenceNumber string `json:"sequence_number"`
	}
	code, err := c.get(ctx, "/accounts/"+url.PathEscape(address), &account)
	if err != nil {
		return "", err
	}
	if code == http.StatusNotFound {
		return "", fmt.Errorf("account %s not found on chain", address)
	}
	return account.SequenceNumber, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.NodeURL+path, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("fullnode GET %s: %d %s", path, resp.StatusCode, string(b))
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) post(ctx context.Context, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.NodeURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fullnode POST %s: %d %s", path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizePublicKey strips the 00 multisig-scheme prefix some wallets
// prepend and ensures the 0x form the node expects.
func normalizePublicKey(pk string) string {
	clean := strings.TrimPrefix(strings.ToLower(pk), "0x")
	if len(clean) == 66 && strings.HasPrefix(clean, "00") {
		clean = clean[2:]
	}
	return "0x" + clean
}

func with0x(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}
	return "0x" + s
}
