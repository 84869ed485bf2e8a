// Package block defines the block type, its payload derivation, and the
// structural validation the core verifier predicates build on.
package block

import "github.com/forgenet-io/forgenet-chain/pkg/tx"

// Block is a candidate to extend the chain: a header plus its ordered
// transaction payload.
type Block struct {
	Header       *Header           `json:"header"`
	Transactions []*tx.Transaction `json:"transactions"`
}

// NewBlock creates a new block with the given header and transactions.
func NewBlock(header *Header, txs []*tx.Transaction) *Block {
	return &Block{
		Header:       header,
		Transactions: txs,
	}
}
