package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Gate answers whether a wallet may be accepted as a payer. Callers must
// fail closed when the gate itself errors.
type Gate interface {
	IsWalletEligible(ctx context.Context, address string) (bool, error)
}

// AllowAll passes every wallet. Used when no reputation source is configured.
type AllowAll struct{}

func (AllowAll) IsWalletEligible(context.Context, string) (bool, error) {
	return true, nil
}

// Denylist blocks a fixed set of wallet addresses.
type Denylist struct {
	blocked map[string]struct{}
}

// NewDenylist builds a gate from address strings. Invalid entries are
// ignored rather than silently blocking valid wallets.
func NewDenylist(addresses []string) *Denylist {
	blocked := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		if !common.IsHexAddress(a) {
			continue
		}
		blocked[strings.ToLower(common.HexToAddress(a).Hex())] = struct{}{}
	}
	return &Denylist{blocked: blocked}
}

func (d *Denylist) IsWalletEligible(_ context.Context, address string) (bool, error) {
	if !common.IsHexAddress(address) {
		return false, nil
	}
	_, found := d.blocked[strings.ToLower(common.HexToAddress(address).Hex())]
	return !found, nil
}

// HTTPGate consults a remote wallet-reputation service.
type HTTPGate struct {
	baseURL string
	client  *http.Client
}

func NewHTTPGate(baseURL string, timeout time.Duration) *HTTPGate {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGate{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGate) IsWalletEligible(ctx context.Context, address string) (bool, error) {
	endpoint := g.baseURL + "/wallets/" + url.PathEscape(address) + "/eligibility"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("reputation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("reputation service returned status %d", resp.StatusCode)
	}

	var body struct {
		Eligible bool `json:"eligible"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode reputation response: %w", err)
	}
	return body.Eligible, nil
}
