package core

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// ErrChainMismatch describes a candidate block that does not extend the
// current chain head. Append reports that case by returning false; it does
// not return this error.
var ErrChainMismatch = errors.New("core: block does not extend chain head")

// Ledger is an in-memory, hash-chained, append-only sequence of Blocks. It
// holds no durable state; persistence is out of scope.
type Ledger struct {
	blocks []Block
	log    *logrus.Entry
}

// New returns a Ledger seeded with a genesis block: index 0, no
// transactions, a zero timestamp and the sentinel previous hash "0".
func New() *Ledger {
	l := &Ledger{log: logrus.WithField("component", "ledger")}
	genesis := Block{
		Index:        0,
		Transactions: nil,
		Timestamp:    0,
		PreviousHash: "0",
		Nonce:        0,
	}
	hash, err := blockHash(genesis)
	if err != nil {
		// canonicalJSON of a static, trivial struct cannot fail.
		l.log.WithError(err).Panic("failed to hash genesis block")
	}
	genesis.Hash = hash
	l.blocks = []Block{genesis}
	return l
}

// Last returns the current chain head.
func (l *Ledger) Last() Block {
	return l.blocks[len(l.blocks)-1]
}

// Height returns the number of blocks in the chain, including genesis.
func (l *Ledger) Height() int {
	return len(l.blocks)
}

// Append validates and appends a candidate block to the chain. It returns
// false, without mutating the ledger, if the block's index does not
// immediately follow the current head, if its PreviousHash does not match
// the head's Hash, or if its own Hash does not match its recomputed content
// hash.
func (l *Ledger) Append(b Block) bool {
	head := l.Last()
	if b.Index != head.Index+1 {
		l.log.WithFields(logrus.Fields{"got": b.Index, "want": head.Index + 1}).Debug("ledger: rejecting block with bad index")
		return false
	}
	if b.PreviousHash != head.Hash {
		l.log.Debug("ledger: rejecting block with stale previous hash")
		return false
	}
	want, err := blockHash(b)
	if err != nil {
		l.log.WithError(err).Debug("ledger: rejecting block that failed to hash")
		return false
	}
	if b.Hash != want {
		l.log.Debug("ledger: rejecting block with invalid hash")
		return false
	}
	l.blocks = append(l.blocks, b)
	l.log.WithFields(logrus.Fields{"index": b.Index, "hash": b.Hash}).Debug("ledger: appended block")
	return true
}

// NewBlock builds and hashes a candidate block extending the current head,
// ready to be passed to Append.
func (l *Ledger) NewBlock(txs []Transaction, timestamp float64) (Block, error) {
	head := l.Last()
	b := Block{
		Index:        head.Index + 1,
		Transactions: txs,
		Timestamp:    timestamp,
		PreviousHash: head.Hash,
		Nonce:        0,
	}
	hash, err := blockHash(b)
	if err != nil {
		return Block{}, err
	}
	b.Hash = hash
	return b, nil
}

// MerkleRoot returns the hex-encoded Merkle root over txs, computed by
// pairwise hex-string concatenation of per-transaction SHA-256 digests with
// duplicate-last padding at odd levels.
func MerkleRoot(txs []Transaction) (string, error) {
	return merkleRoot(txs)
}
