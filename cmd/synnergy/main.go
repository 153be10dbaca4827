package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	appconfig "synnergy-network/cmd/config"
	"synnergy-network/core"
	"synnergy-network/symbolic"
)

func main() {
	_ = godotenv.Load()
	appconfig.LoadConfig(os.Getenv("SYNN_ENV"))

	rootCmd := &cobra.Command{Use: "synnergy"}
	rootCmd.AddCommand(clusterCmd())
	rootCmd.AddCommand(calcCmd())
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("synnergy: command failed")
		os.Exit(1)
	}
}

// clusterCmd spins up an in-memory PBFT cluster of N replicas, submits one
// client transaction, and reports the resulting chain height on every
// replica. A --metrics-addr flag exposes Prometheus counters over HTTP for
// the lifetime of the run.
func clusterCmd() *cobra.Command {
	cfg := appconfig.AppConfig

	defaultReplicas := len(cfg.Cluster.ReplicaIDs)
	if defaultReplicas == 0 {
		defaultReplicas = 4
	}

	var replicaCount int
	var metricsAddr string
	var requestsPerSecond float64
	var timeoutSeconds int
	var gasLimit uint64

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "run a local in-memory PBFT cluster and submit a demo transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := replicaIDs(cfg.Cluster.ReplicaIDs, replicaCount)

			transport := core.NewTransport(ids, requestsPerSecond)
			reg := prometheus.NewRegistry()
			ledgers := make(map[core.ReplicaID]*core.Ledger, len(ids))
			replicas := make(map[core.ReplicaID]*core.Replica, len(ids))
			for _, id := range ids {
				l := core.New()
				ledgers[id] = l
				r := core.NewReplica(id, ids, transport, l, reg)
				r.SetTimeout(time.Duration(timeoutSeconds) * time.Second)
				r.SetDefaultGasLimit(gasLimit)
				replicas[id] = r
			}

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, reg)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			group, _ := errgroup.WithContext(ctx)
			stop := make(chan struct{})
			for _, r := range replicas {
				r := r
				group.Go(func() error {
					r.Run(stop)
					return nil
				})
			}

			var primary core.ReplicaID
			for _, id := range ids {
				if replicas[id].IsPrimary() {
					primary = id
				}
			}
			requestID := uuid.NewString()
			logrus.WithFields(logrus.Fields{"primary": primary, "request_id": requestID}).Info("synnergy: submitting demo transaction")

			tx := core.Transaction{Sender: "client", Recipient: string(primary), Amount: 100}
			if err := transport.Send(primary, core.Message{Type: core.MsgRequest, Transaction: tx, RequestID: requestID}); err != nil {
				close(stop)
				return err
			}

			deadline := time.Now().Add(5 * time.Second)
			for time.Now().Before(deadline) {
				if ledgers[primary].Height() >= 2 {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
			close(stop)
			_ = group.Wait()

			for _, id := range ids {
				fmt.Printf("%s: height=%d head=%s\n", id, ledgers[id].Height(), ledgers[id].Last().Hash)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&replicaCount, "replicas", defaultReplicas, "number of replicas in the demo cluster")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9100 (disabled if empty)")
	cmd.Flags().Float64Var(&requestsPerSecond, "requests-per-second", cfg.PBFT.RequestsPerSecond, "client request rate limit, 0 disables limiting")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout-seconds", cfg.PBFT.TimeoutSeconds, "replica mailbox timeout before a view change is triggered")
	cmd.Flags().Uint64Var(&gasLimit, "gas-limit", cfg.VM.DefaultGasLimit, "default gas limit applied to contract executions that don't specify their own")
	return cmd
}

// replicaIDs returns the configured cluster replica ids when their count
// matches count, or falls back to a generated node1..nodeN set. This lets an
// operator override --replicas without having to also edit the config's
// cluster.replica_ids list.
func replicaIDs(configured []string, count int) []core.ReplicaID {
	if len(configured) == count {
		ids := make([]core.ReplicaID, count)
		for i, name := range configured {
			ids[i] = core.ReplicaID(name)
		}
		return ids
	}
	ids := make([]core.ReplicaID, count)
	for i := 0; i < count; i++ {
		ids[i] = core.ReplicaID(fmt.Sprintf("node%d", i+1))
	}
	return ids
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: router}
	logrus.WithField("addr", addr).Info("synnergy: serving metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.WithError(err).Warn("synnergy: metrics server stopped")
	}
}

// calcCmd parses, simplifies, differentiates and (when possible) integrates
// an algebraic expression supplied on the command line.
func calcCmd() *cobra.Command {
	var withRespectTo string

	cmd := &cobra.Command{
		Use:   "calc [expression]",
		Short: "parse, simplify, differentiate and integrate a symbolic expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := symbolic.Parse(args[0])
			if err != nil {
				return err
			}
			simplified := expr.Simplify()
			fmt.Printf("simplified: %s\n", simplified)

			d, err := simplified.Differentiate(withRespectTo)
			if err != nil {
				fmt.Printf("d/d%s: error: %v\n", withRespectTo, err)
			} else {
				fmt.Printf("d/d%s: %s\n", withRespectTo, d)
			}

			integ, err := simplified.Integrate(withRespectTo)
			if err != nil {
				fmt.Printf("∫d%s: error: %v\n", withRespectTo, err)
			} else {
				fmt.Printf("∫d%s: %s\n", withRespectTo, integ)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&withRespectTo, "var", "x", "variable to differentiate/integrate with respect to")
	return cmd
}
