package wrap

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Receipt store keys.
var (
	prefixReceipt = []byte("r/") // r/<seq(8 BE)> -> Receipt JSON
	keyReceiptSeq = []byte("rseq")
)

// ReceiptKind distinguishes wrap settlements from unwrap completions.
type ReceiptKind string

// Receipt kinds.
const (
	ReceiptWrap   ReceiptKind = "wrap"
	ReceiptUnwrap ReceiptKind = "unwrap"
)

// Receipt is one audit row written when a wrap settles or an unwrap
// completes. Refunded records the actual refund of an unwrap, which under
// the shared-balance refund can differ from the burned quantity.
type Receipt struct {
	ID          string      `json:"id"`
	Kind        ReceiptKind `json:"kind"`
	Seq         uint64      `json:"seq"`
	Account     types.Name  `json:"account"`
	Quantity    types.Asset `json:"quantity"`
	Payout      types.Asset `json:"payout,omitempty"`
	Fee         types.Asset `json:"fee,omitempty"`
	Refunded    types.Asset `json:"refunded,omitempty"`
	UsageBefore uint64      `json:"usage_before,omitempty"`
	UsageAfter  uint64      `json:"usage_after,omitempty"`
}

// ReceiptStore appends and lists receipts.
type ReceiptStore struct {
	db storage.DB
}

// NewReceiptStore creates a receipt store backed by the given database.
func NewReceiptStore(db storage.DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

// Append assigns the next sequence number and a content-derived ID, then
// persists the receipt.
func (s *ReceiptStore) Append(r *Receipt) error {
	seq, err := s.nextSeq()
	if err != nil {
		return err
	}
	r.Seq = seq
	r.ID = ""

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("receipt marshal: %w", err)
	}
	sum := blake3.Sum256(data)
	r.ID = hex.EncodeToString(sum[:])

	data, err = json.Marshal(r)
	if err != nil {
		return fmt.Errorf("receipt marshal: %w", err)
	}
	return s.db.Put(receiptKey(seq), data)
}

// List returns all receipts in sequence order.
func (s *ReceiptStore) List() ([]Receipt, error) {
	var receipts []Receipt
	err := s.db.ForEach(prefixReceipt, func(_, value []byte) error {
		var r Receipt
		if err := json.Unmarshal(value, &r); err != nil {
			return nil // Skip corrupt entries.
		}
		receipts = append(receipts, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// The memory backend iterates in map order.
	sort.Slice(receipts, func(i, j int) bool { return receipts[i].Seq < receipts[j].Seq })
	return receipts, nil
}

func (s *ReceiptStore) nextSeq() (uint64, error) {
	var seq uint64
	ok, err := s.db.Has(keyReceiptSeq)
	if err != nil {
		return 0, fmt.Errorf("receipt seq: %w", err)
	}
	if ok {
		raw, err := s.db.Get(keyReceiptSeq)
		if err != nil {
			return 0, fmt.Errorf("receipt seq: %w", err)
		}
		if len(raw) == 8 {
			seq = binary.BigEndian.Uint64(raw)
		}
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], seq+1)
	if err := s.db.Put(keyReceiptSeq, raw[:]); err != nil {
		return 0, fmt.Errorf("receipt seq: %w", err)
	}
	return seq, nil
}

func receiptKey(seq uint64) []byte {
	key := make([]byte, len(prefixReceipt)+8)
	copy(key, prefixReceipt)
	binary.BigEndian.PutUint64(key[len(prefixReceipt):], seq)
	return key
}
