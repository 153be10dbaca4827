package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// canonicalJSON re-marshals v through a map[string]interface{} so that
// object keys come out sorted, as with Python's json.dumps(..., sort_keys=True).
// encoding/json already sorts map[string]interface{} keys on marshal, so
// round-tripping through one is sufficient to keep the key order, and so the
// hash, stable across processes. The output is compact (no space after ','
// or ':') and numbers use Go's formatting (0.0 is written as 0), so the bytes
// differ from Python's default json.dumps output.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// canonicalTxJSON returns the canonical JSON string for a single transaction,
// pre-serialised the way the block hash embeds it (as a string, not a nested
// object) so that transaction and block hashing share one code path.
func canonicalTxJSON(tx Transaction) (string, error) {
	b, err := canonicalJSON(tx)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// blockHash computes a block's content hash: every transaction is first
// serialised to its own canonical JSON string, and those strings (not the
// transaction objects) are embedded in the outer, also canonically
// serialised, block document before SHA-256 hashing the result.
func blockHash(b Block) (string, error) {
	txStrs := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		s, err := canonicalTxJSON(tx)
		if err != nil {
			return "", err
		}
		txStrs[i] = s
	}
	doc := struct {
		Index        int      `json:"index"`
		Transactions []string `json:"transactions"`
		Timestamp    float64  `json:"timestamp"`
		PreviousHash string   `json:"previous_hash"`
		Nonce        int      `json:"nonce"`
	}{
		Index:        b.Index,
		Transactions: txStrs,
		Timestamp:    b.Timestamp,
		PreviousHash: b.PreviousHash,
		Nonce:        b.Nonce,
	}
	encoded, err := canonicalJSON(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// transactionDigest hashes a single transaction's canonical JSON form. Used
// by the PBFT replica to identify the transaction a PRE-PREPARE refers to.
func transactionDigest(tx Transaction) (string, error) {
	s, err := canonicalTxJSON(tx)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// merkleRoot builds a Merkle tree over the transactions' canonical JSON
// digests and returns the hex-encoded root. An empty transaction set yields
// the hash of the empty byte string.
// Hashing pairs concatenates their hex strings (not raw bytes) before
// re-hashing; an odd level duplicates its last node.
func merkleRoot(txs []Transaction) (string, error) {
	if len(txs) == 0 {
		sum := sha256.Sum256(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	level := make([]string, len(txs))
	for i, tx := range txs {
		d, err := transactionDigest(tx)
		if err != nil {
			return "", err
		}
		level[i] = d
	}

	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]string, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			sum := sha256.Sum256([]byte(level[i] + level[i+1]))
			next = append(next, hex.EncodeToString(sum[:]))
		}
		level = next
	}
	return level[0], nil
}

// sortedReplicaIDs returns ids sorted ascending, used to pick a deterministic
// primary for a given view.
func sortedReplicaIDs(ids []ReplicaID) []ReplicaID {
	out := make([]ReplicaID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
