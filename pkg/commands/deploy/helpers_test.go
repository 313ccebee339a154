package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/chain"
	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/engine/config"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// fakeClient records every request and answers from a per-method table.
type fakeClient struct {
	mu        sync.Mutex
	calls     []near.CallRequest
	views     []near.ViewRequest
	order     []string
	responses map[string]json.RawMessage
	failures  map[string]error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: make(map[string]json.RawMessage),
		failures:  make(map[string]error),
	}
}

func (c *fakeClient) Call(_ context.Context, req near.CallRequest) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)
	c.order = append(c.order, req.Method)

	return c.answer(req.Method)
}

func (c *fakeClient) View(_ context.Context, req near.ViewRequest) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, req)
	c.order = append(c.order, req.Method)

	return c.answer(req.Method)
}

func (c *fakeClient) answer(method string) (json.RawMessage, error) {
	if err, ok := c.failures[method]; ok {
		return nil, err
	}
	if resp, ok := c.responses[method]; ok {
		return resp, nil
	}

	return json.RawMessage("null"), nil
}

func (c *fakeClient) call(t *testing.T, method string) near.CallRequest {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.calls {
		if r.Method == method {
			return r
		}
	}
	t.Fatalf("no %s call", method)

	return near.CallRequest{}
}

func (c *fakeClient) view(t *testing.T, method string) near.ViewRequest {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.views {
		if r.Method == method {
			return r
		}
	}
	t.Fatalf("no %s view", method)

	return near.ViewRequest{}
}

// fakeProvider serves a NEAR chain backed by a fake client.
type fakeProvider struct {
	chain near.Chain
	err   error
}

func (p *fakeProvider) Initialize(context.Context) (chain.BlockChain, error) {
	if p.err != nil {
		return nil, p.err
	}

	return p.chain, nil
}

func (*fakeProvider) Name() string { return "Fake NEAR Chain Provider" }

func (p *fakeProvider) BlockChain() chain.BlockChain { return p.chain }

// testConfig returns a valid config writing artifacts to a temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Network: config.NetworkConfig{
			NetworkID:   "testnet",
			Transport:   config.TransportCLI,
			StepTimeout: time.Minute,
		},
		Deployment: config.DeploymentConfig{
			BaseAccountID:  "locked-ft.testnet",
			StorageDeposit: "0.5",
			CreateTokenGas: "200000000000000",
			Token: config.TokenConfig{
				TokenID:     "near_6",
				AssetID:     "wrap.testnet",
				Title:       "near",
				Decimals:    24,
				TargetPrice: "100000",
				Metadata: config.MetadataConfig{
					Spec:     near.FTMetadataSpec,
					Name:     "Locked NEAR",
					Symbol:   "LNEAR",
					Decimals: 24,
				},
				BackupTriggerAccountID: "trigger.testnet",
				PriceOracleAccountID:   "priceoracle.testnet",
			},
			Oracle: config.OracleConfig{
				AssetIDs: []string{"wrap.testnet"},
				Deposit:  "1",
			},
		},
		Reports: config.ReportsConfig{ArtifactsDir: t.TempDir()},
	}
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// testDeps returns deps serving c and a fake chain backed by client.
func testDeps(c *config.Config, client near.Client) Deps {
	return Deps{
		ConfigLoader: func(string) (*config.Config, error) { return c, nil },
		ChainLoader: func(cfg config.NetworkConfig, _ logger.Logger) (chain.Provider, error) {
			return &fakeProvider{chain: near.Chain{NetworkID: cfg.NetworkID, Client: client}}, nil
		},
		ReporterLoader: func(context.Context, string, string) (operations.Reporter, func() error, error) {
			return operations.NewMemoryReporter(), nil, nil
		},
		Now: func() time.Time { return testNow },
	}
}

// execute runs sub under a root command carrying the --config flag and returns its stdout.
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "near-deployer", SilenceUsage: true, SilenceErrors: true}
	flags.Config(root)
	root.AddCommand(sub)

	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{sub.Name()}, args...))

	err := root.ExecuteContext(t.Context())

	return out.String(), err
}

func testCfg(c *config.Config, client near.Client) Config {
	return Config{Logger: logger.Nop(), Deps: testDeps(c, client)}
}

func requireJSON(t *testing.T, want string, got json.RawMessage) {
	t.Helper()

	require.JSONEq(t, want, string(got))
}
