package chain

import "context"

// Provider builds a BlockChain, e.g. a NEAR chain backed by near-cli or by JSON-RPC.
// BlockChain returns nil until Initialize succeeded.
type Provider interface {
	Initialize(ctx context.Context) (BlockChain, error)
	Name() string
	BlockChain() BlockChain
}

// ChainLoader loads the chain of a network on demand, see NewLazyBlockChains.
type ChainLoader interface {
	Load(ctx context.Context, network string) (BlockChain, error)
}

// ChainLoaderFunc adapts a function to a ChainLoader.
type ChainLoaderFunc func(ctx context.Context, network string) (BlockChain, error)

func (f ChainLoaderFunc) Load(ctx context.Context, network string) (BlockChain, error) {
	return f(ctx, network)
}

// ProviderLoader returns a ChainLoader initializing p.
func ProviderLoader(p Provider) ChainLoader {
	return ChainLoaderFunc(func(ctx context.Context, _ string) (BlockChain, error) {
		return p.Initialize(ctx)
	})
}
