// Package metertable is the meter table of a software defined networking switch.
//
// A meter table holds the rate meters a controller installs on a datapath.
// It applies meter modification requests, answers statistics, configuration
// and features requests, meters packets against the installed bands, and
// persists snapshots of the table to local filesystem, AWS S3, Alibaba Cloud
// OSS or Azure Blob Storage.
//
// # Getting started
//
// Use `go get` to add the module to your Go dependencies explicitly.
//
//	go get github.com/pingcap/metertable
//
// # Hello Meter Table
//
// This example creates a table, installs a meter and meters a packet.
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/pingcap/metertable/common"
//	    "github.com/pingcap/metertable/config"
//	    "github.com/pingcap/metertable/table"
//	)
//
//	func main() {
//	    cfg := config.DefaultConfig().
//	        WithDevelopmentLogger().
//	        WithMaxMeters(64)
//
//	    tbl := table.New(cfg, table.WithSender(table.SenderFunc(
//	        func(ctx context.Context, to *common.Remote, msg common.Message) error {
//	            fmt.Printf("reply to %s: %T\n", to.ID, msg)
//	            return nil
//	        })))
//	    defer tbl.Destroy()
//
//	    controller := &common.Remote{ID: "ctl-1", Role: common.RoleMaster}
//	    err := tbl.HandleMeterMod(context.Background(), &common.MeterMod{
//	        Command: common.CommandAdd,
//	        Flags:   common.MeterFlagKBPS | common.MeterFlagStats,
//	        MeterID: 1,
//	        Bands:   []common.Band{{Type: common.BandTypeDrop, Rate: 10000}},
//	    }, controller)
//	    if err != nil {
//	        log.Fatalf("Failed to add meter: %v", err)
//	    }
//
//	    verdict := tbl.Apply(&common.Packet{Size: 1500}, 1, 0)
//	    fmt.Println("verdict:", verdict)
//	}
//
// # Handling Controller Requests
//
// Handle routes any decoded request to its handler. Meter modifications from
// a slave controller are rejected with common.ErrIsSlave; failures are
// *common.Error values carrying the error type and code returned to the
// controller.
//
//	err := tbl.Handle(ctx, &common.MeterStatsRequest{MeterID: common.MeterAll}, controller)
//	var merr *common.Error
//	if errors.As(err, &merr) {
//	    fmt.Println("rejected:", merr.Reason())
//	}
//
// # Writing Snapshots
//
// Snapshots are gzip compressed JSON objects stored under
// metertable/snapshot/{datapath-id}/{timestamp}.json.gz.
//
//	provider, err := storage.NewObjectStorageProvider(&storage.ProviderConfig{
//	    Type:   storage.ProviderTypeS3,
//	    Bucket: "switch-state",
//	    Region: "us-west-2",
//	    Prefix: "meters",
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create storage provider: %v", err)
//	}
//
//	w := snapshotwriter.NewSnapshotWriter(provider, cfg)
//	defer w.Close()
//
//	if err := w.Write(ctx, tbl.Snapshot("dp0001")); err != nil {
//	    log.Fatalf("Failed to write snapshot: %v", err)
//	}
//
// # Restoring From Snapshots
//
// Latest returns the newest snapshot of a datapath. Restore only accepts an
// empty table and leaves it empty if any meter is rejected.
//
//	r, err := snapshotreader.NewSnapshotReader(provider, cfg, &snapshotreader.Config{
//	    Cache: &cache.Config{MaxEntries: 16, TTL: time.Minute},
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create snapshot reader: %v", err)
//	}
//	defer r.Close()
//
//	snap, err := r.Latest(ctx, "dp0001")
//	if err != nil {
//	    log.Fatalf("Failed to read snapshot: %v", err)
//	}
//	if err := table.New(cfg).Restore(snap); err != nil {
//	    log.Fatalf("Failed to restore meter table: %v", err)
//	}
//
// # Configuration
//
// Storage can be configured from a URI, see config.NewFromURI:
//
//	sc, err := config.NewFromURI("oss://switch-state/meters?region-id=oss-cn-hangzhou&datapath-id=dp0001")
//	provider, err := storage.NewObjectStorageProvider(sc.ToProviderConfig())
//
// or from a YAML, TOML or JSON file holding both table limits and snapshot
// storage, see config.LoadFile.
package metertable
