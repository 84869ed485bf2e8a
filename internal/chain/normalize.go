package chain

import (
	"encoding/json"
	"fmt"

	"github.com/forgenet-io/forgenet-chain/pkg/block"
)

// blockToRaw renders blk as the dynamic record component F's
// AddBlockProperties/DeleteBlockProperties operate on. The wire Block
// shape nests header fields under a "header" object (pkg/block/block.go),
// but F's canonical defaults ("version", "reward", "totalAmount", …) are
// keyed at the top level, matching the original protocol's flat block
// record. blockToRaw flattens the header up a level so F actually sees
// the fields it is meant to fill or strip; rawToBlock is its inverse.
func blockToRaw(blk *block.Block) map[string]any {
	data, err := json.Marshal(blk)
	if err != nil {
		// Marshal of a well-formed Block cannot fail; a failure here
		// indicates a construction bug upstream, not a runtime condition
		// to recover from.
		panic(fmt.Sprintf("marshal block: %v", err))
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		panic(fmt.Sprintf("unmarshal block to raw record: %v", err))
	}

	raw := make(map[string]any, len(nested))
	if header, ok := nested["header"].(map[string]any); ok {
		for k, v := range header {
			raw[k] = v
		}
	}
	if txs, ok := nested["transactions"]; ok {
		raw["transactions"] = txs
	}
	return raw
}

// rawToBlock decodes a normalised raw record back into dst, re-nesting
// every field but "transactions" under "header" to match Block's wire
// shape.
func rawToBlock(raw map[string]any, dst *block.Block) error {
	header := make(map[string]any, len(raw))
	nested := make(map[string]any, 2)
	for k, v := range raw {
		if k == "transactions" {
			nested["transactions"] = v
			continue
		}
		header[k] = v
	}
	nested["header"] = header

	data, err := json.Marshal(nested)
	if err != nil {
		return fmt.Errorf("marshal raw record: %w", err)
	}
	return json.Unmarshal(data, dst)
}
