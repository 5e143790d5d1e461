// Package kvstore provides a narrow key/value persistence abstraction for
// session credentials and cached profile data.
//
// Values are wrapped in a tagged Entry envelope that records whether the
// payload is a plain string or a structured JSON value, so readers never have
// to guess the type from the raw bytes. Entries written by older clients
// without the envelope are still readable: bare JSON objects and arrays decode
// as JSON-kind entries, everything else as strings.
//
// # Basic Usage
//
//	kv := kvstore.NewMemory()
//
//	// Plain string values
//	_ = kv.Set(ctx, "token", kvstore.NewString("eyJhbGci..."))
//
//	// Structured values
//	entry, _ := kvstore.NewJSON(user)
//	_ = kv.Set(ctx, "userData", entry)
//
//	// Reading back
//	entry, err := kv.Get(ctx, "userData")
//	if errors.Is(err, kvstore.ErrNotFound) {
//		// key is unset
//	}
//	var user UserRecord
//	_ = entry.Decode(&user)
//
// Durable implementations live under integration/kvstore (Redis, BBolt,
// PostgreSQL); all of them store the JSON-encoded envelope produced by Encode.
package kvstore
