// Package solana is a minimal JSON-RPC client for watching SPL token
// transfers into the treasury account. It only implements the two calls the
// poller needs.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/magiccarpet/presale_bot/utils"
	"github.com/shopspring/decimal"
)

// Transfer is one observed treasury deposit. Signature is globally unique and
// serves as the ledger's deduplication key; Reference is the memo the buyer
// attached so the payment can be attributed to a user.
type Transfer struct {
	Signature string
	Amount    decimal.Decimal
	Reference string
}

type Client struct {
	rpcURL     string
	treasury   string
	mint       string
	httpClient *http.Client
	logger     *utils.Logger
}

func NewClient(rpcURL, treasury, mint string, logger *utils.Logger) *Client {
	return &Client{
		rpcURL:     rpcURL,
		treasury:   treasury,
		mint:       mint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type rpcRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	payload, err := json.Marshal(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}

	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return nil
}

// RecentTransfers lists recent confirmed transactions touching the treasury
// and resolves each one to the USDT amount it deposited. A lookup failure for
// a single signature skips that entry only; it will be observed again on the
// next poll.
func (c *Client) RecentTransfers(ctx context.Context) ([]Transfer, error) {
	var sigs []struct {
		Signature string      `json:"signature"`
		Memo      *string     `json:"memo"`
		Err       interface{} `json:"err"`
	}

	params := []interface{}{
		c.treasury,
		map[string]interface{}{"limit": 100, "commitment": "confirmed"},
	}
	if err := c.call(ctx, "getSignaturesForAddress", params, &sigs); err != nil {
		return nil, err
	}

	var transfers []Transfer
	for _, sig := range sigs {
		if sig.Err != nil {
			continue
		}

		amount, err := c.depositedAmount(ctx, sig.Signature)
		if err != nil {
			c.logger.Warnf("Failed to resolve transfer %s: %v", sig.Signature, err)
			continue
		}
		if !amount.IsPositive() {
			continue
		}

		transfers = append(transfers, Transfer{
			Signature: sig.Signature,
			Amount:    amount,
			Reference: parseMemo(sig.Memo),
		})
	}

	return transfers, nil
}

// depositedAmount computes how much of the configured mint the transaction
// moved into the treasury, from the pre/post token balance snapshots.
func (c *Client) depositedAmount(ctx context.Context, signature string) (decimal.Decimal, error) {
	var tx struct {
		Meta *struct {
			PreTokenBalances  []tokenBalance `json:"preTokenBalances"`
			PostTokenBalances []tokenBalance `json:"postTokenBalances"`
		} `json:"meta"`
	}

	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}
	if err := c.call(ctx, "getTransaction", params, &tx); err != nil {
		return decimal.Zero, err
	}
	if tx.Meta == nil {
		return decimal.Zero, fmt.Errorf("transaction %s has no meta", signature)
	}

	pre := c.treasuryBalance(tx.Meta.PreTokenBalances)
	post := c.treasuryBalance(tx.Meta.PostTokenBalances)
	return post.Sub(pre), nil
}

type tokenBalance struct {
	Mint          string `json:"mint"`
	Owner         string `json:"owner"`
	UITokenAmount struct {
		Amount   string `json:"amount"`
		Decimals int32  `json:"decimals"`
	} `json:"uiTokenAmount"`
}

func (c *Client) treasuryBalance(balances []tokenBalance) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		if b.Owner != c.treasury || b.Mint != c.mint {
			continue
		}
		raw, err := decimal.NewFromString(b.UITokenAmount.Amount)
		if err != nil {
			c.logger.Warnf("Invalid token amount %q: %v", b.UITokenAmount.Amount, err)
			continue
		}
		total = total.Add(raw.Shift(-b.UITokenAmount.Decimals))
	}
	return total
}

// parseMemo strips the "[len] " prefix the RPC node prepends to memo strings.
func parseMemo(memo *string) string {
	if memo == nil {
		return ""
	}
	s := strings.TrimSpace(*memo)
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "] "); idx >= 0 {
			s = s[idx+2:]
		}
	}
	return strings.TrimSpace(s)
}
