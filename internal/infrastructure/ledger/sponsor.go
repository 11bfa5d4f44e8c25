package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GasStation submits signed transactions through a sponsorship service so
// the sender pays no gas. Nil means sponsorship is disabled and submissions
// go straight to the fullnode.
type GasStation struct {
	url  string
	http *http.Client
}

func NewGasStation(url, accessKey string, timeout time.Duration) *GasStation {
	if url == "" || accessKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GasStation{
		url:  url + "/" + accessKey,
		http: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SponsorAndSubmit forwards the signed transaction to the gas station,
// which attaches the fee payer signature and submits on our behalf.
func (g *GasStation) SponsorAndSubmit(ctx context.Context, signed *SignedTransaction) (string, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "gas_sponsorAndSubmitSignedTransaction",
		Params:  []interface{}{signed.RawTransaction, signed.PublicKey, signed.Signature},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gas station: %d %s", resp.StatusCode, string(b))
	}

	var rpcResp struct {
		Result struct {
			Hash string `json:"hash"`
		} `json:"result"`
		Error *rpcError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return "", err
	}
	if rpcResp.Error != nil {
		return "", fmt.Errorf("gas station: %s (code %d)", rpcResp.Error.Message, rpcResp.Error.Code)
	}
	return rpcResp.Result.Hash, nil
}
