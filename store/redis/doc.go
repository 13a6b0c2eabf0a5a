// Package redis provides a store.BlobStore backed by Redis.
//
// Every blob is a plain string key: "<prefix><workspace>:<name>". A TTL can be set
// to let idle workspaces expire.
//
//	s := redis.New(redis.Options{
//		Addr:   "localhost:6379",
//		Prefix: "mindcanvas:",
//		TTL:    30 * 24 * time.Hour,
//	})
//	gw := store.NewGateway(s, store.WithWorkspace("physics"))
//
// NewFromClient accepts any redis.UniversalClient, so cluster and sentinel setups
// work the same way.
package redis
