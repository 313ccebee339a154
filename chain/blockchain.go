package chain

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

var ErrBlockChainNotFound = errors.New("blockchain not found")

var _ BlockChain = near.Chain{}

// BlockChain is a configured network the deployer can talk to.
type BlockChain interface {
	String() string
	// Name is the network id, e.g. "testnet".
	Name() string
	Family() string
}

// BlockChains holds chains keyed by network id. Chains are either given up front or loaded on
// first use.
type BlockChains struct {
	chains map[string]BlockChain

	// nil unless built with NewLazyBlockChains
	lazyState *lazyLoadingState
}

type lazyLoadingState struct {
	mu           sync.RWMutex
	loadedChains map[string]BlockChain
	loaders      map[string]ChainLoader
	ctx          context.Context //nolint:containedctx // loaders run outside of any call context
	lggr         logger.Logger
}

// NewBlockChains returns eagerly loaded chains. The map is copied.
func NewBlockChains(chains map[string]BlockChain) BlockChains {
	return BlockChains{chains: maps.Clone(chains)}
}

// NewBlockChainsFromSlice keys chains by their Name.
func NewBlockChainsFromSlice(chains []BlockChain) BlockChains {
	byName := make(map[string]BlockChain, len(chains))
	for _, c := range chains {
		byName[c.Name()] = c
	}

	return BlockChains{chains: byName}
}

// NewLazyBlockChains returns chains loaded on first access, each at most once. A failed load is
// retried on the next access.
func NewLazyBlockChains(ctx context.Context, loaders map[string]ChainLoader, lggr logger.Logger) BlockChains {
	return BlockChains{
		lazyState: &lazyLoadingState{
			loadedChains: make(map[string]BlockChain),
			loaders:      loaders,
			ctx:          ctx,
			lggr:         lggr,
		},
	}
}

// GetByName returns a blockchain by its network name, loading it first in lazy mode.
func (b *BlockChains) GetByName(name string) (BlockChain, error) {
	if b.lazyState == nil {
		if c, ok := b.chains[name]; ok {
			return c, nil
		}

		return nil, fmt.Errorf("%w: %s", ErrBlockChainNotFound, name)
	}

	return b.lazyState.load(name)
}

func (lazy *lazyLoadingState) load(name string) (BlockChain, error) {
	lazy.mu.RLock()
	c, ok := lazy.loadedChains[name]
	lazy.mu.RUnlock()
	if ok {
		return c, nil
	}

	lazy.mu.Lock()
	defer lazy.mu.Unlock()
	if c, ok := lazy.loadedChains[name]; ok {
		return c, nil
	}

	loader, ok := lazy.loaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockChainNotFound, name)
	}

	c, err := loader.Load(lazy.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load chain %s: %w", name, err)
	}
	lazy.loadedChains[name] = c

	return c, nil
}

// Exists reports whether name is known, loaded or not.
func (b BlockChains) Exists(name string) bool {
	if b.lazyState != nil {
		_, ok := b.lazyState.loaders[name]
		return ok
	}
	_, ok := b.chains[name]

	return ok
}

// Names returns the sorted network names of all chains.
func (b BlockChains) Names() []string {
	if b.lazyState != nil {
		return slices.Sorted(maps.Keys(b.lazyState.loaders))
	}

	return slices.Sorted(maps.Keys(b.chains))
}

// All returns an iterator over all chains in name order. In lazy mode chains are loaded during
// iteration and chains failing to load are logged and skipped.
func (b *BlockChains) All() iter.Seq2[string, BlockChain] {
	return func(yield func(string, BlockChain) bool) {
		for _, name := range b.Names() {
			c, err := b.GetByName(name)
			if err != nil {
				if b.lazyState != nil {
					b.lazyState.lggr.Errorw("Skipping chain that failed to load", "network", name, "error", err)
				}

				continue
			}
			if !yield(name, c) {
				return
			}
		}
	}
}

// NearChains returns all NEAR chains keyed by network name.
func (b *BlockChains) NearChains() map[string]near.Chain {
	out := make(map[string]near.Chain)
	for name, c := range b.All() {
		switch v := c.(type) {
		case near.Chain:
			out[name] = v
		case *near.Chain:
			out[name] = *v
		}
	}

	return out
}

// NearChain returns the NEAR chain of the given network.
func (b *BlockChains) NearChain(name string) (near.Chain, error) {
	c, err := b.GetByName(name)
	if err != nil {
		return near.Chain{}, err
	}

	switch v := c.(type) {
	case near.Chain:
		return v, nil
	case *near.Chain:
		return *v, nil
	default:
		return near.Chain{}, fmt.Errorf("chain %s is a %s chain, not %s", name, c.Family(), near.Family)
	}
}
