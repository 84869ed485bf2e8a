package consensus

import (
	"testing"

	"github.com/forgenet-io/forgenet-chain/config"
)

func TestRewardAt_FollowsGenesisSchedule(t *testing.T) {
	g := config.MainnetGenesis()
	if got := RewardAt(g, 2); got != 5*config.Coin {
		t.Errorf("RewardAt(2) = %d, want %d", got, 5*config.Coin)
	}
}

func TestRewardException_NotListed(t *testing.T) {
	g := config.MainnetGenesis()
	if RewardException(g, "deadbeef") {
		t.Error("unlisted block id should not be a reward exception")
	}
}

func TestRewardException_Listed(t *testing.T) {
	g := config.MainnetGenesis()
	g.Protocol.Consensus.RewardExceptions = []string{"deadbeef"}
	if !RewardException(g, "deadbeef") {
		t.Error("listed block id should be a reward exception")
	}
}
