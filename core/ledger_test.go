package core

import "testing"

func TestNewProducesGenesisBlock(t *testing.T) {
	l := New()
	head := l.Last()
	if head.Index != 0 {
		t.Fatalf("expected genesis index 0, got %d", head.Index)
	}
	if head.PreviousHash != "0" {
		t.Fatalf("expected genesis previous hash \"0\", got %q", head.PreviousHash)
	}
	if len(head.Transactions) != 0 {
		t.Fatalf("expected genesis to carry no transactions, got %d", len(head.Transactions))
	}
	if head.Hash == "" {
		t.Fatalf("expected genesis to be hashed")
	}
}

func TestAppendExtendsChain(t *testing.T) {
	l := New()
	b, err := l.NewBlock([]Transaction{{Sender: "a", Recipient: "b", Amount: 10}}, 1)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	if !l.Append(b) {
		t.Fatalf("expected valid block to be appended")
	}
	if l.Height() != 2 {
		t.Fatalf("expected height 2, got %d", l.Height())
	}
	if l.Last().Hash != b.Hash {
		t.Fatalf("chain head does not match appended block")
	}
}

func TestAppendRejectsBadIndex(t *testing.T) {
	l := New()
	b, err := l.NewBlock(nil, 1)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	b.Index = 5
	if l.Append(b) {
		t.Fatalf("expected block with wrong index to be rejected")
	}
	if l.Height() != 1 {
		t.Fatalf("ledger height should be unchanged after rejection")
	}
}

func TestAppendRejectsStalePreviousHash(t *testing.T) {
	l := New()
	b, err := l.NewBlock(nil, 1)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	b.PreviousHash = "deadbeef"
	if l.Append(b) {
		t.Fatalf("expected block with stale previous hash to be rejected")
	}
}

func TestAppendRejectsTamperedHash(t *testing.T) {
	l := New()
	b, err := l.NewBlock([]Transaction{{Sender: "a", Recipient: "b", Amount: 1}}, 1)
	if err != nil {
		t.Fatalf("NewBlock failed: %v", err)
	}
	b.Hash = "0000000000000000000000000000000000000000000000000000000000000"
	if l.Append(b) {
		t.Fatalf("expected block with tampered hash to be rejected")
	}
}

func TestMerkleRootEmpty(t *testing.T) {
	root, err := MerkleRoot(nil)
	if err != nil {
		t.Fatalf("MerkleRoot failed: %v", err)
	}
	if len(root) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(root))
	}
}

func TestMerkleRootDeterministic(t *testing.T) {
	txs := []Transaction{
		{Sender: "a", Recipient: "b", Amount: 1},
		{Sender: "c", Recipient: "d", Amount: 2},
		{Sender: "e", Recipient: "f", Amount: 3},
	}
	r1, err := MerkleRoot(txs)
	if err != nil {
		t.Fatalf("MerkleRoot failed: %v", err)
	}
	r2, err := MerkleRoot(txs)
	if err != nil {
		t.Fatalf("MerkleRoot failed: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("expected deterministic merkle root, got %q vs %q", r1, r2)
	}
	if len(r1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(r1))
	}
}

func TestMerkleRootOddLeafCountDuplicatesLast(t *testing.T) {
	txs := []Transaction{
		{Sender: "a", Recipient: "b", Amount: 1},
		{Sender: "c", Recipient: "d", Amount: 2},
		{Sender: "e", Recipient: "f", Amount: 3},
	}
	// Duplicating the last transaction should not change the root, since the
	// tree already pads an odd level by repeating the final node.
	padded := append(append([]Transaction{}, txs...), txs[2])
	r1, err := MerkleRoot(txs)
	if err != nil {
		t.Fatalf("MerkleRoot failed: %v", err)
	}
	r2, err := MerkleRoot(padded)
	if err != nil {
		t.Fatalf("MerkleRoot failed: %v", err)
	}
	if r1 != r2 {
		t.Fatalf("expected padding-equivalent transaction sets to share a root")
	}
}
