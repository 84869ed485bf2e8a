// Forgenet chain node daemon.
//
// Usage:
//
//	forgenetd [options]   Run node, reading newline-delimited block JSON
//	                      from stdin (gossip is out of scope; pipe a
//	                      replay file in with `forgenetd < blocks.jsonl`)
//	forgenetd --help      Show help
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgenet-io/forgenet-chain/config"
	"github.com/forgenet-io/forgenet-chain/internal/chain"
	"github.com/forgenet-io/forgenet-chain/internal/consensus"
	flog "github.com/forgenet-io/forgenet-chain/internal/log"
	"github.com/forgenet-io/forgenet-chain/internal/storage"
	"github.com/forgenet-io/forgenet-chain/internal/wallet"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
	"golang.org/x/term"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Network == config.Testnet {
		types.SetAddressHRP(types.TestnetHRP)
	} else {
		types.SetAddressHRP(types.MainnetHRP)
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logs dir: %v\n", err)
			os.Exit(1)
		}
		logFile = logsDir + "/forgenet.log"
	}
	if err := flog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := flog.WithComponent("node")

	genesis := config.GenesisFor(cfg.Network)
	logger.Info().
		Str("chain_id", genesis.ChainID).
		Str("network", string(cfg.Network)).
		Uint64("epoch", genesis.Protocol.Consensus.Epoch).
		Uint64("slot_interval", genesis.Protocol.Consensus.SlotInterval).
		Msg("Starting Forgenet Chain Node")

	db, err := storage.NewBadger(cfg.ChainDataDir())
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.ChainDataDir()).Msg("Failed to open database")
	}
	defer db.Close()

	blocks := chain.NewBlockStore(db)
	if err := blocks.LoadTip(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load chain tip")
	}
	accounts := chain.NewAccountStore(db, blocks)
	txIndex := chain.NewTxIndex(db)

	if blocks.LastBlock() == nil {
		if err := initFromGenesis(genesis, accounts); err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize from genesis")
		}
		logger.Info().Msg("Chain initialized from genesis")
	} else {
		logger.Info().Uint64("height", blocks.LastBlock().Header.Height).Msg("Chain resumed from database")
	}

	delegateKeys := make([][]byte, 0, len(genesis.Delegates))
	for _, d := range genesis.Delegates {
		pub, err := hex.DecodeString(d.PublicKey)
		if err != nil {
			logger.Fatal().Err(err).Str("delegate", d.Name).Msg("Invalid delegate public key in genesis")
		}
		delegateKeys = append(delegateKeys, pub)
	}
	delegates := consensus.NewDelegateSet(delegateKeys, genesis.Protocol.Consensus.Epoch, genesis.Protocol.Consensus.SlotInterval)

	if cfg.Forging.Force {
		secrets, err := wallet.LoadForgingKeyfile(cfg.KeystoreFile())
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.KeystoreFile()).Msg("Failed to read forging keyfile")
		}
		cfg.Forging.Secret = secrets

		if len(secrets) > 0 {
			passphrase, err := readPassphrase("Enter forging keystore passphrase: ")
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to read passphrase")
			}
			keypairs, err := consensus.LoadDelegates(cfg.Forging, accounts, passphrase)
			for i := range passphrase {
				passphrase[i] = 0
			}
			if err != nil {
				logger.Fatal().Err(err).Msg("Failed to load forging delegates")
			}
			logger.Info().Int("count", len(keypairs)).Msg("Forging delegates loaded")
		}
	}

	pipeline := &chain.Pipeline{
		Blocks:    blocks,
		Accounts:  accounts,
		Delegates: delegates,
		Txs:       txIndex,
		Process: &consensus.ProcessVerifier{
			Genesis:   genesis,
			Blocks:    blocks,
			Delegates: delegates,
			Now:       consensus.WallClockSeconds,
		},
		Broadcast: noopBroadcaster{},
		Window:    consensus.NewIDWindow(genesis.Protocol.Consensus.BlockSlotWindow),
	}
	pipeline.OnBind()
	if err := pipeline.OnBlockchainReady(genesis.Protocol.Consensus.BlockSlotWindow); err != nil {
		logger.Error().Err(err).Msg("Failed to prime recent-id window")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		blocks.BeginCleanup()
		logger.Info().Msg("Shutting down")
	}()

	logger.Info().Msg("Node ready, reading blocks from stdin")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var blk block.Block
		if err := json.Unmarshal(line, &blk); err != nil {
			logger.Error().Err(err).Msg("Failed to decode block")
			continue
		}
		result, err := pipeline.ProcessBlock(&blk, false, true)
		if err != nil {
			logger.Error().Err(err).Msg("Block rejected")
			continue
		}
		logger.Info().Bool("accepted", result.Accepted).Uint64("height", blk.Header.Height).Msg("Block processed")
	}
}

// initFromGenesis seeds account balances from the genesis allocation
// table and marks the genesis delegate slate.
func initFromGenesis(genesis *config.Genesis, accounts *chain.AccountStore) error {
	delegateAddrs := make(map[string]bool, len(genesis.Delegates))
	for _, d := range genesis.Delegates {
		delegateAddrs[d.Address] = true
	}
	for bech32Addr, amount := range genesis.Alloc {
		addr, err := types.ParseAddress(bech32Addr)
		if err != nil {
			return fmt.Errorf("parse genesis alloc address %s: %w", bech32Addr, err)
		}
		if err := accounts.CreditGenesis(addr, amount, delegateAddrs[bech32Addr]); err != nil {
			return fmt.Errorf("credit genesis account %s: %w", bech32Addr, err)
		}
	}
	return nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastReducedBlock(reduced map[string]any, broadcast bool) {}

func readPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return passphrase, nil
}
