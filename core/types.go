package core

// Transaction is the unit of work submitted by a client and carried through
// the PBFT pipeline into a Block. Sender and Recipient are opaque client
// identifiers (e.g. "client", "node1") rather than cryptographic addresses:
// signature verification is out of scope, and a message's sender is named
// only by the replica-id tag (Message.From) that the sender itself sets.
type Transaction struct {
	Sender       string `json:"sender"`
	Recipient    string `json:"recipient"`
	Amount       int64  `json:"amount"`
	ContractCode string `json:"contract_code,omitempty"`
	GasLimit     uint64 `json:"gas_limit,omitempty"`
}

// Block is an entry in the Ledger's hash chain. Hash and PreviousHash are
// lowercase hex-encoded SHA-256 digests; the genesis block's PreviousHash is
// the literal string "0".
type Block struct {
	Index        int           `json:"index"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    float64       `json:"timestamp"`
	PreviousHash string        `json:"previous_hash"`
	Nonce        int           `json:"nonce"`
	Hash         string        `json:"hash"`
}

// ReplicaID names one member of a PBFT cluster. Replica sets are ordered by
// this value to deterministically pick a view's primary.
type ReplicaID string
