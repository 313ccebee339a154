/*
Package chain provides the blockchain abstraction the deployment tooling runs against.

# BlockChain

Every chain implementation satisfies the BlockChain interface. The only family implemented is
NEAR (see the near subpackage), and chains are identified by their network name:

	c := near.Chain{NetworkID: "testnet", NodeURL: "https://rpc.testnet.near.org", Client: client}
	fmt.Println(c.String()) // "near testnet (https://rpc.testnet.near.org)"

# BlockChains Collection

BlockChains holds chains keyed by network name. Chains are either loaded upfront:

	chains := chain.NewBlockChainsFromSlice([]chain.BlockChain{testnet, mainnet})

or loaded on first access through a ChainLoader per network:

	chains := chain.NewLazyBlockChains(ctx, map[string]chain.ChainLoader{
		"testnet": chain.ProviderLoader(provider.NewRPCChainProvider("testnet", cfg)),
	}, lggr)

	testnet, err := chains.NearChain("testnet")

# Provider System

A Provider validates its configuration and builds a chain with a ready to use client:

	type Provider interface {
		Initialize(ctx context.Context) (BlockChain, error)
		Name() string
		BlockChain() BlockChain
	}
*/
package chain
