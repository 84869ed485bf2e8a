package block

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// CurrentVersion is the only block version the protocol currently accepts.
const CurrentVersion uint32 = 0

// Header carries the consensus-relevant metadata of a block. Transactions
// live alongside it in Block; everything needed to verify and sign a block
// other than its payload is here.
type Header struct {
	Version              uint32      `json:"version"`
	Height               uint64      `json:"height"`
	PreviousBlock        *types.Hash `json:"previousBlock,omitempty"`
	Timestamp            uint64      `json:"timestamp"`
	Reward               uint64      `json:"reward"`
	PayloadHash          types.Hash  `json:"payloadHash"`
	PayloadLength        uint32      `json:"payloadLength"`
	NumberOfTransactions uint32      `json:"numberOfTransactions"`
	TotalAmount          uint64      `json:"totalAmount"`
	TotalFee             uint64      `json:"totalFee"`
	GeneratorPublicKey   []byte      `json:"generatorPublicKey"`
	Signature            []byte      `json:"blockSignature"`

	// ID caches the id recomputed by verifyId (receipt step 8). It is
	// filled as a side effect of verification when absent; it is not part
	// of the signing bytes.
	ID *types.Hash `json:"id,omitempty"`
}

// headerJSON shadows Header for hex-encoded byte fields.
type headerJSON struct {
	Version              uint32      `json:"version"`
	Height               uint64      `json:"height"`
	PreviousBlock        *types.Hash `json:"previousBlock,omitempty"`
	Timestamp            uint64      `json:"timestamp"`
	Reward               uint64      `json:"reward"`
	PayloadHash          types.Hash  `json:"payloadHash"`
	PayloadLength        uint32      `json:"payloadLength"`
	NumberOfTransactions uint32      `json:"numberOfTransactions"`
	TotalAmount          uint64      `json:"totalAmount"`
	TotalFee             uint64      `json:"totalFee"`
	GeneratorPublicKey   string      `json:"generatorPublicKey,omitempty"`
	Signature            string      `json:"blockSignature,omitempty"`
	ID                   *types.Hash `json:"id,omitempty"`
}

// MarshalJSON encodes the header with hex-encoded generator key and signature.
func (h *Header) MarshalJSON() ([]byte, error) {
	j := headerJSON{
		Version:              h.Version,
		Height:                h.Height,
		PreviousBlock:        h.PreviousBlock,
		Timestamp:            h.Timestamp,
		Reward:               h.Reward,
		PayloadHash:          h.PayloadHash,
		PayloadLength:        h.PayloadLength,
		NumberOfTransactions: h.NumberOfTransactions,
		TotalAmount:          h.TotalAmount,
		TotalFee:             h.TotalFee,
		ID:                   h.ID,
	}
	if h.GeneratorPublicKey != nil {
		j.GeneratorPublicKey = hex.EncodeToString(h.GeneratorPublicKey)
	}
	if h.Signature != nil {
		j.Signature = hex.EncodeToString(h.Signature)
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a header with hex-encoded generator key and signature.
func (h *Header) UnmarshalJSON(data []byte) error {
	var j headerJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	h.Version = j.Version
	h.Height = j.Height
	h.PreviousBlock = j.PreviousBlock
	h.Timestamp = j.Timestamp
	h.Reward = j.Reward
	h.PayloadHash = j.PayloadHash
	h.PayloadLength = j.PayloadLength
	h.NumberOfTransactions = j.NumberOfTransactions
	h.TotalAmount = j.TotalAmount
	h.TotalFee = j.TotalFee
	h.ID = j.ID
	if j.GeneratorPublicKey != "" {
		b, err := hex.DecodeString(j.GeneratorPublicKey)
		if err != nil {
			return err
		}
		h.GeneratorPublicKey = b
	}
	if j.Signature != "" {
		b, err := hex.DecodeString(j.Signature)
		if err != nil {
			return err
		}
		h.Signature = b
	}
	return nil
}

// SigningBytes returns the canonical bytes a block's id and signature are
// derived from. Excludes Signature and the cached ID.
// Format: version(4) | height(8) | previousBlock(32, zero if absent) |
// timestamp(8) | reward(8) | payloadHash(32) | payloadLength(4) |
// numberOfTransactions(4) | totalAmount(8) | totalFee(8) | generatorPublicKey
func (h *Header) SigningBytes() []byte {
	buf := make([]byte, 0, 4+8+32+8+8+32+4+4+8+8+33)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = binary.LittleEndian.AppendUint64(buf, h.Height)
	if h.PreviousBlock != nil {
		buf = append(buf, h.PreviousBlock[:]...)
	} else {
		buf = append(buf, make([]byte, types.HashSize)...)
	}
	buf = binary.LittleEndian.AppendUint64(buf, h.Timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, h.Reward)
	buf = append(buf, h.PayloadHash[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.PayloadLength)
	buf = binary.LittleEndian.AppendUint32(buf, h.NumberOfTransactions)
	buf = binary.LittleEndian.AppendUint64(buf, h.TotalAmount)
	buf = binary.LittleEndian.AppendUint64(buf, h.TotalFee)
	buf = append(buf, h.GeneratorPublicKey...)
	return buf
}

// Hash computes the block id: BLAKE3 over the header's signing bytes.
func (h *Header) Hash() types.Hash {
	return crypto.Hash(h.SigningBytes())
}

// Sign signs the header's id with the given private key, storing the
// result in Signature. The private key must belong to GeneratorPublicKey.
func (h *Header) Sign(key *crypto.PrivateKey) error {
	id := h.Hash()
	sig, err := key.Sign(id[:])
	if err != nil {
		return err
	}
	h.Signature = sig
	return nil
}

// VerifySignature checks the header's signature against GeneratorPublicKey
// and the header's id.
func (h *Header) VerifySignature() bool {
	if len(h.GeneratorPublicKey) == 0 || len(h.Signature) == 0 {
		return false
	}
	id := h.Hash()
	return crypto.VerifySignature(id[:], h.Signature, h.GeneratorPublicKey)
}
