package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// replicaMetrics are the Prometheus series a Replica reports. They are
// created per-replica (not package-global) so a demo cluster running many
// replicas in one process can register each under a distinct "replica"
// label without collector name collisions.
type replicaMetrics struct {
	commits     prometheus.Counter
	viewChanges prometheus.Counter
	gasUsed     prometheus.Histogram
}

func newReplicaMetrics(reg prometheus.Registerer, id ReplicaID) *replicaMetrics {
	m := &replicaMetrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pbft_commits_total",
			Help:        "Number of blocks committed by this replica.",
			ConstLabels: prometheus.Labels{"replica": string(id)},
		}),
		viewChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pbft_view_changes_total",
			Help:        "Number of view changes observed by this replica.",
			ConstLabels: prometheus.Labels{"replica": string(id)},
		}),
		gasUsed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "pbft_contract_gas_used",
			Help:        "Gas consumed by contract executions run by this replica, successful or not.",
			ConstLabels: prometheus.Labels{"replica": string(id)},
			Buckets:     prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.commits, m.viewChanges, m.gasUsed)
	}
	return m
}

// defaultTimeout is how long a replica waits on its mailbox before treating
// the primary as unresponsive and starting a view change.
const defaultTimeout = 5 * time.Second

// defaultGasLimit is the gas budget applied to a transaction's contract
// execution when it does not specify its own GasLimit.
const defaultGasLimit uint64 = 1_000_000

// Replica is one member of a PBFT cluster. It implements the three-phase
// pre-prepare/prepare/commit protocol with a rudimentary, notification-only
// view change: a replica that times out advances its own view and informs
// the others, but does not run a NEW-VIEW reconciliation.
type Replica struct {
	mu sync.Mutex

	id              ReplicaID
	all             []ReplicaID
	view            int
	seqNum          int
	f               int
	timeout         time.Duration
	defaultGasLimit uint64
	isClosed        bool

	prePrepareLog map[int]Message
	prepareLog    map[int]map[string]*voteSet
	commitLog     map[int]map[string]*voteSet

	transport *Transport
	ledger    *Ledger
	vm        *VM
	metrics   *replicaMetrics
	log       *logrus.Entry
}

// NewReplica returns a Replica named id, participating in a cluster of all,
// communicating over transport and appending committed blocks to ledger.
// f is derived as (len(all)-1)/3, matching the reference formula for the
// maximum tolerated number of faulty replicas.
func NewReplica(id ReplicaID, all []ReplicaID, transport *Transport, ledger *Ledger, reg prometheus.Registerer) *Replica {
	r := &Replica{
		id:              id,
		all:             sortedReplicaIDs(all),
		f:               (len(all) - 1) / 3,
		timeout:         defaultTimeout,
		defaultGasLimit: defaultGasLimit,
		prePrepareLog:   make(map[int]Message),
		prepareLog:      make(map[int]map[string]*voteSet),
		commitLog:       make(map[int]map[string]*voteSet),
		transport:       transport,
		ledger:          ledger,
		vm:              NewVM(),
		metrics:         newReplicaMetrics(reg, id),
		log:             logrus.WithFields(logrus.Fields{"component": "replica", "replica": string(id)}),
	}
	return r
}

// SetTimeout overrides the mailbox wait duration used by Run, primarily for
// tests that want faster view-change triggering.
func (r *Replica) SetTimeout(d time.Duration) {
	r.mu.Lock()
	r.timeout = d
	r.mu.Unlock()
}

// SetDefaultGasLimit overrides the gas budget applied to a transaction's
// contract execution when the transaction itself carries no GasLimit.
func (r *Replica) SetDefaultGasLimit(limit uint64) {
	r.mu.Lock()
	r.defaultGasLimit = limit
	r.mu.Unlock()
}

// View returns the replica's current view number.
func (r *Replica) View() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// primary returns the replica id that is primary for view v.
func (r *Replica) primary(v int) ReplicaID {
	return r.all[v%len(r.all)]
}

// IsPrimary reports whether this replica is primary for its current view.
func (r *Replica) IsPrimary() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id == r.primary(r.view)
}

// Run drives the replica's main loop until stop is closed. It blocks on the
// transport mailbox, dispatching each arriving message, and treats a mailbox
// timeout as a trigger for handleTimeout.
func (r *Replica) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		msg, ok := r.transport.Take(r.id, r.timeout)
		if !ok {
			r.handleTimeout()
			continue
		}
		r.handleMessage(msg)
	}
}

// Submit injects a client REQUEST directly into this replica's handling path,
// as if it had arrived over the transport, to kick off agreement on a
// transaction. The demo CLI and the tests send their REQUEST through
// Transport.Send instead.
func (r *Replica) Submit(tx Transaction) {
	r.handleMessage(Message{Type: MsgRequest, Transaction: tx, RequestID: uuid.NewString()})
}

func (r *Replica) handleMessage(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Type {
	case MsgRequest:
		r.handleRequestLocked(msg)
	case MsgPrePrepare:
		r.handlePrePrepareLocked(msg)
	case MsgPrepare:
		r.handlePrepareLocked(msg)
	case MsgCommit:
		r.handleCommitLocked(msg)
	case MsgViewChange:
		r.handleViewChangeLocked(msg)
	default:
		r.log.WithField("type", msg.Type).Debug("replica: ignoring unknown message type")
	}
}

func (r *Replica) handleRequestLocked(msg Message) {
	if r.id != r.primary(r.view) {
		return
	}
	r.seqNum++
	digest, err := transactionDigest(msg.Transaction)
	if err != nil {
		r.log.WithError(err).Warn("replica: failed to digest request, dropping")
		r.seqNum--
		return
	}
	pp := Message{
		Type:        MsgPrePrepare,
		From:        r.id,
		View:        r.view,
		Sequence:    r.seqNum,
		Digest:      digest,
		Transaction: msg.Transaction,
		Timestamp:   float64(time.Now().UnixNano()) / 1e9,
		RequestID:   msg.RequestID,
	}
	r.prePrepareLog[r.seqNum] = pp
	r.transport.Broadcast(r.id, pp)
}

func (r *Replica) handlePrePrepareLocked(msg Message) {
	if msg.View != r.view || msg.Sequence <= r.seqNum {
		return
	}
	r.seqNum = msg.Sequence
	r.prePrepareLog[msg.Sequence] = msg

	prepare := Message{
		Type:     MsgPrepare,
		From:     r.id,
		View:     r.view,
		Sequence: msg.Sequence,
		Digest:   msg.Digest,
	}
	r.transport.Broadcast(r.id, prepare)
}

func (r *Replica) handlePrepareLocked(msg Message) {
	if msg.View != r.view {
		return
	}
	if _, ok := r.prePrepareLog[msg.Sequence]; !ok {
		return
	}
	votes := r.votesFor(r.prepareLog, msg.Sequence, msg.Digest)
	n := votes.Add(msg.From)
	if n >= 2*r.f {
		commit := Message{
			Type:     MsgCommit,
			From:     r.id,
			View:     r.view,
			Sequence: msg.Sequence,
			Digest:   msg.Digest,
		}
		r.transport.Broadcast(r.id, commit)
	}
}

func (r *Replica) handleCommitLocked(msg Message) {
	if msg.View != r.view {
		return
	}
	if _, ok := r.prePrepareLog[msg.Sequence]; !ok {
		return
	}
	votes := r.votesFor(r.commitLog, msg.Sequence, msg.Digest)
	n := votes.Add(msg.From)
	if n >= 2*r.f+1 {
		r.executeLocked(msg.Sequence)
	}
}

// executeLocked applies the committed transaction at seq to the ledger.
// Popping the pre-prepare entry makes execution at-most-once: a later commit
// quorum observed for the same sequence number after it has already been
// executed finds nothing to pop and is a no-op.
func (r *Replica) executeLocked(seq int) {
	pp, ok := r.prePrepareLog[seq]
	if !ok {
		return
	}
	delete(r.prePrepareLog, seq)

	tx := pp.Transaction
	if tx.ContractCode != "" {
		limit := tx.GasLimit
		if limit == 0 {
			limit = r.defaultGasLimit
		}
		_, _, gasUsed, err := r.vm.Execute(tx.ContractCode, limit)
		r.metrics.gasUsed.Observe(float64(gasUsed))
		if err != nil {
			r.log.WithError(err).WithField("seq", seq).Warn("replica: contract execution failed, block not committed")
			return
		}
	}

	block, err := r.ledger.NewBlock([]Transaction{tx}, pp.Timestamp)
	if err != nil {
		r.log.WithError(err).WithField("seq", seq).Warn("replica: failed to build block")
		return
	}
	if !r.ledger.Append(block) {
		r.log.WithField("seq", seq).Warn("replica: ledger rejected committed block")
		return
	}
	r.metrics.commits.Inc()
	r.log.WithFields(logrus.Fields{"seq": seq, "index": block.Index}).Info("replica: block committed")
}

func (r *Replica) handleTimeout() {
	r.mu.Lock()
	r.view++
	r.metrics.viewChanges.Inc()
	v := r.view
	r.mu.Unlock()

	r.log.WithField("view", v).Debug("replica: mailbox timeout, starting view change")
	r.transport.Broadcast(r.id, Message{Type: MsgViewChange, From: r.id, View: v})
}

func (r *Replica) handleViewChangeLocked(msg Message) {
	if msg.View > r.view {
		r.view = msg.View
		r.log.WithField("view", r.view).Debug("replica: adopted newer view")
	}
}

func (r *Replica) votesFor(logs map[int]map[string]*voteSet, seq int, digest string) *voteSet {
	byDigest, ok := logs[seq]
	if !ok {
		byDigest = make(map[string]*voteSet)
		logs[seq] = byDigest
	}
	vs, ok := byDigest[digest]
	if !ok {
		vs = newVoteSet()
		byDigest[digest] = vs
	}
	return vs
}
