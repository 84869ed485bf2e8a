package consensus

import "github.com/forgenet-io/forgenet-chain/config"

// RewardAt returns the protocol reward due a block at the given height,
// per the genesis reward-milestone table. Height 1 (genesis) is exempt
// from the reward check entirely by convention; callers should not
// consult this function for height 1.
func RewardAt(genesis *config.Genesis, height uint64) uint64 {
	return genesis.RewardAt(height)
}

// RewardException reports whether blockID is on the reward-exceptions
// allowlist, exempting it from the RewardAt check.
func RewardException(genesis *config.Genesis, blockIDHex string) bool {
	for _, id := range genesis.Protocol.Consensus.RewardExceptions {
		if id == blockIDHex {
			return true
		}
	}
	return false
}
