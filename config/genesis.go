package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// =============================================================================
// Protocol Rules (immutable, defined in genesis)
// These MUST match across all nodes or consensus breaks.
// =============================================================================

// Denomination constants.
// 1 coin = 10^8 base units. All on-chain values are in base units.
const (
	Decimals  = 8
	Coin      = 100_000_000
	MilliCoin = Coin / 1_000
)

// NumGenesisDelegates is the protocol's fixed delegate-slate size.
const NumGenesisDelegates = 101

// RewardMilestone is one entry of the reward schedule's milestone table:
// rewardAt(height) returns the Reward of the milestone with the greatest
// Height not exceeding the queried height.
type RewardMilestone struct {
	Height uint64 `json:"height"`
	Reward uint64 `json:"reward"`
}

// RewardAt walks milestones (assumed sorted ascending by Height) and
// returns the reward in effect at the given height. Height 1 is the
// genesis block and is never checked against this schedule by the
// verifier, so its value here is inconsequential.
func (g *Genesis) RewardAt(height uint64) uint64 {
	milestones := g.Protocol.Consensus.RewardMilestones
	var reward uint64
	for _, m := range milestones {
		if m.Height > height {
			break
		}
		reward = m.Reward
	}
	return reward
}

// ConsensusRules defines the DPoS consensus parameters. All nodes MUST
// agree on these values; any divergence forks the network.
type ConsensusRules struct {
	// Epoch is the unix timestamp (seconds) slot 0 begins at.
	Epoch uint64 `json:"epoch"`

	// SlotInterval is the duration of a single slot, in seconds.
	SlotInterval uint64 `json:"slot_interval"`

	// BlockSlotWindow (W) bounds both how stale a received block's slot
	// may be and the length of the recent-id FIFO.
	BlockSlotWindow int `json:"block_slot_window"`

	// MaxPayloadLength is the maximum total signing-byte length of a
	// block's transactions.
	MaxPayloadLength int `json:"max_payload_length"`

	// MaxTxsPerBlock bounds numberOfTransactions.
	MaxTxsPerBlock int `json:"max_txs_per_block"`

	// RewardMilestones is the height-ordered reward schedule.
	RewardMilestones []RewardMilestone `json:"reward_milestones"`

	// RewardExceptions lists (hex) block ids exempt from the reward
	// check — a historical allowlist for blocks accepted before a
	// reward-schedule correction.
	RewardExceptions []string `json:"reward_exceptions,omitempty"`

	// MaxSupply caps total issuance in base units (0 = unlimited).
	MaxSupply uint64 `json:"max_supply"`
}

// ForkSchedule defines block heights at which protocol upgrades activate.
// A zero value means the fork is not scheduled.
type ForkSchedule struct {
	// Future forks are added here as fields.
}

// IsActive returns true if a fork at forkHeight has activated at currentHeight.
// Returns false if forkHeight is 0 (not scheduled).
func (f *ForkSchedule) IsActive(forkHeight, currentHeight uint64) bool {
	return forkHeight > 0 && currentHeight >= forkHeight
}

// ProtocolConfig holds consensus-critical rules. All nodes MUST agree on
// these values.
type ProtocolConfig struct {
	Consensus ConsensusRules `json:"consensus"`
	Forks     ForkSchedule   `json:"forks,omitempty"`
}

// DelegateGenesis describes one of the genesis delegate slate entries.
type DelegateGenesis struct {
	Name      string `json:"name"`
	PublicKey string `json:"public_key"` // hex, compressed secp256k1
	Address   string `json:"address"`    // bech32
}

// Genesis holds the genesis block configuration and protocol rules.
// This is immutable after chain launch - changes require a hard fork.
type Genesis struct {
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`
	Symbol    string `json:"symbol,omitempty"`

	Timestamp uint64 `json:"timestamp"`
	ExtraData string `json:"extra_data,omitempty"`

	// Alloc maps bech32 address to its genesis balance in base units.
	Alloc map[string]uint64 `json:"alloc"`

	// Delegates is the initial delegate slate. The accounts module
	// (out of scope here) is expected to mark each as isDelegate=true.
	Delegates []DelegateGenesis `json:"delegates"`

	Protocol ProtocolConfig `json:"protocol"`
}

// =============================================================================
// Testnet Identity
//
// Derived from the well-known BIP-39 test mnemonic (DO NOT use on mainnet):
//
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon art
//
// Derivation path: m/44'/8888'/0'/0/0 (no passphrase)
// =============================================================================

const (
	// TestnetMnemonic is the well-known seed phrase for the testnet
	// delegate slate. Devnet tooling derives the remaining
	// NumGenesisDelegates-1 delegate keys as HD children of this seed
	// at m/44'/8888'/<index>'/0/0.
	TestnetMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

	// TestnetDelegatePubKey is the compressed public key (hex) derived
	// from TestnetMnemonic at index 0.
	TestnetDelegatePubKey = "030bef68f8657df88098a0546da1712c88b459788bea1a6bbe964004166a25144f"

	// TestnetDelegatePrivKey is the private key (hex) derived from
	// TestnetMnemonic at index 0.
	TestnetDelegatePrivKey = "1f0717e6e34acc6721021f4dfed54558ec8452452b6195545d06dd348b220091"

	// TestnetAddress is the address (bech32, tfgn) derived from
	// TestnetMnemonic's index-0 key.
	TestnetAddress = "tfgn13uayfwq9djh7cd5dagxtuzk3mx7r7sc9xv4h52"
)

// =============================================================================
// Pre-defined genesis configurations
// =============================================================================

// MainnetGenesis returns the mainnet genesis configuration.
func MainnetGenesis() *Genesis {
	return &Genesis{
		ChainID:   "forgenet-mainnet-1",
		ChainName: "Forgenet Mainnet",
		Symbol:    "FGN",
		Timestamp: 1770734103, // 2026-02-10
		ExtraData: "Forgenet Genesis",
		Alloc: map[string]uint64{
			"fgn1a8tfl79jgres7t90tttkc7ytjmhs5lpdn5ag4l": 100_000 * Coin,
		},
		Delegates: nil, // populated via governance after launch
		Protocol: ProtocolConfig{
			Consensus: ConsensusRules{
				Epoch:            1770734103,
				SlotInterval:     10, // 10 second slots
				BlockSlotWindow:  5,
				MaxPayloadLength: 1_048_576, // 1 MiB
				MaxTxsPerBlock:   25,
				RewardMilestones: []RewardMilestone{
					{Height: 2, Reward: 5 * Coin},
					{Height: 3_000_000, Reward: 250 * MilliCoin},
					{Height: 6_000_000, Reward: 125 * MilliCoin},
					{Height: 9_000_000, Reward: 50 * MilliCoin},
					{Height: 12_000_000, Reward: 25 * MilliCoin},
				},
				MaxSupply: 100_000_000 * Coin,
			},
		},
	}
}

// TestnetGenesis returns the testnet genesis configuration.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.ChainID = "forgenet-testnet-1"
	g.ChainName = "Forgenet Testnet"
	g.ExtraData = "Forgenet Testnet Genesis"

	// More relaxed timing for local development.
	g.Protocol.Consensus.SlotInterval = 3
	g.Protocol.Consensus.MaxTxsPerBlock = 200

	g.Alloc = map[string]uint64{
		TestnetAddress: 200_000 * Coin,
	}
	g.Delegates = []DelegateGenesis{
		{Name: "genesis-delegate-0", PublicKey: TestnetDelegatePubKey, Address: TestnetAddress},
	}

	return g
}

// GenesisFor returns the genesis config for the given network.
func GenesisFor(network NetworkType) *Genesis {
	switch network {
	case Testnet:
		return TestnetGenesis()
	default:
		return MainnetGenesis()
	}
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}

	if g.Protocol.Consensus.SlotInterval == 0 {
		return fmt.Errorf("consensus.slot_interval must be positive")
	}
	if g.Protocol.Consensus.BlockSlotWindow <= 0 {
		return fmt.Errorf("consensus.block_slot_window must be positive")
	}
	if g.Protocol.Consensus.MaxPayloadLength <= 0 {
		return fmt.Errorf("consensus.max_payload_length must be positive")
	}
	if g.Protocol.Consensus.MaxTxsPerBlock <= 0 {
		return fmt.Errorf("consensus.max_txs_per_block must be positive")
	}
	if !sort.SliceIsSorted(g.Protocol.Consensus.RewardMilestones, func(i, j int) bool {
		return g.Protocol.Consensus.RewardMilestones[i].Height < g.Protocol.Consensus.RewardMilestones[j].Height
	}) {
		return fmt.Errorf("consensus.reward_milestones must be sorted ascending by height")
	}

	var totalAlloc uint64
	for addrStr, v := range g.Alloc {
		if _, err := types.ParseAddress(addrStr); err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		totalAlloc += v
	}
	if g.Protocol.Consensus.MaxSupply > 0 && totalAlloc > g.Protocol.Consensus.MaxSupply {
		return fmt.Errorf("genesis allocations (%d) exceed max_supply (%d)",
			totalAlloc, g.Protocol.Consensus.MaxSupply)
	}

	for _, d := range g.Delegates {
		if _, err := types.ParseAddress(d.Address); err != nil {
			return fmt.Errorf("invalid delegate address %q: %w", d.Address, err)
		}
	}

	return nil
}

// Hash returns a BLAKE3 hash of the genesis configuration, used to
// identify the chain and detect genesis mismatches between peers.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
