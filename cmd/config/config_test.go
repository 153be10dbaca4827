package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"synnergy-network/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Cluster.Name != "synnergy-demo-cluster" {
		t.Fatalf("unexpected cluster name: %s", AppConfig.Cluster.Name)
	}
	if len(AppConfig.Cluster.ReplicaIDs) != 4 {
		t.Fatalf("expected 4 replica ids, got %d", len(AppConfig.Cluster.ReplicaIDs))
	}
	if AppConfig.PBFT.TimeoutSeconds != 5 {
		t.Fatalf("expected timeout 5, got %d", AppConfig.PBFT.TimeoutSeconds)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Cluster.Name != "synnergy-bootstrap-cluster" {
		t.Fatalf("expected cluster name override, got %s", AppConfig.Cluster.Name)
	}
	if AppConfig.PBFT.TimeoutSeconds != 2 {
		t.Fatalf("expected timeout override 2, got %d", AppConfig.PBFT.TimeoutSeconds)
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("cluster:\n  name: sandbox\n  replica_ids: [a, b, c, d]\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Cluster.Name != "sandbox" {
		t.Fatalf("expected cluster name sandbox, got %s", AppConfig.Cluster.Name)
	}
	if len(AppConfig.Cluster.ReplicaIDs) != 4 {
		t.Fatalf("expected 4 replica ids, got %d", len(AppConfig.Cluster.ReplicaIDs))
	}
}
