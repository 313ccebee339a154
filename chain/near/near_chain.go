package near

import (
	"context"
	"encoding/json"
	"fmt"
)

const Family = "near"

// Chain represents a NEAR network reached through a Client.
type Chain struct {
	// NetworkID is the NEAR network name, e.g. "testnet" or "mainnet".
	NetworkID string
	// NodeURL is the RPC endpoint of the node the client talks to.
	NodeURL string
	// Client submits calls and views.
	Client Client
}

// Name returns the network id of the chain.
func (c Chain) Name() string {
	return c.NetworkID
}

// String returns "near <network id> (<node url>)".
func (c Chain) String() string {
	if c.NodeURL == "" {
		return Family + " " + c.NetworkID
	}

	return fmt.Sprintf("%s %s (%s)", Family, c.NetworkID, c.NodeURL)
}

// Family returns the family of the chain.
func (c Chain) Family() string {
	return Family
}

// Call forwards to the chain client.
func (c Chain) Call(ctx context.Context, req CallRequest) (json.RawMessage, error) {
	return c.Client.Call(ctx, req)
}

// View forwards to the chain client.
func (c Chain) View(ctx context.Context, req ViewRequest) (json.RawMessage, error) {
	return c.Client.View(ctx, req)
}

// ViewInto runs a view and decodes its JSON result into out.
func (c Chain) ViewInto(ctx context.Context, req ViewRequest, out any) error {
	raw, err := c.Client.View(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s.%s result: %w", req.Receiver, req.Method, err)
	}

	return nil
}
