// Package pubgclient provides the entry point for constructing a PUBG API
// client that implements the pubg.Client interface.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/pubg/pkg/pubg"
//	  "github.com/fivetwenty-io/pubg/pkg/pubgclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := pubgclient.NewWithAPIKey(ctx, "my-api-key", pubg.ShardSteam)
//	  if err != nil { log.Fatal(err) }
//
//	  // Nothing is sent until the query is read.
//	  players := cli.Players().Filter(pubg.FilterPlayerNames, "shroud")
//	  seq, err := players.All(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  for obj, err := range seq {
//	    if err != nil { log.Fatal(err) }
//	    player := obj.(*pubg.Player)
//	    log.Println(player.Name, len(player.MatchIDs))
//	  }
//	}
//
// # Telemetry caching
//
// Telemetry documents never change once published. By default they are kept
// in a small in-memory cache. Set Config.TelemetryCache to a NATSKVCache to
// share them between processes, or to a NoOpCache to disable caching.
package pubgclient
