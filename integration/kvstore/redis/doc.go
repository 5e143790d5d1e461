// Package redis provides a Redis-backed kvstore.Store for session
// persistence shared across processes, plus connection helpers with retry
// logic and health checking.
//
// Usage:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	kv, err := redis.NewStoreFromConfig(ctx, cfg)
//	if err != nil {
//		return err
//	}
//
//	sess, err := session.New(kv, session.WithBaseURL(apiURL))
//
// Entries are stored in the tagged envelope format produced by
// kvstore.Encode; values written by older clients in the untagged format are
// upgraded transparently on read.
package redis
