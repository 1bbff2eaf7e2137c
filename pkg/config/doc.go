// Package config provides the configuration surface for the tracing core.
//
// Configuration is loaded from a YAML file, filled in with defaults,
// overridden by TRACEHUB_* environment variables, and validated before use.
// Validation is fail-fast: an invalid sampling probability or malformed
// backend endpoint is an explicit error at load or refresh time, never a
// silently clamped value.
//
// # Runtime refresh
//
// The live configuration is held by a Store as an atomically-swapped
// snapshot. A Watcher observes the configuration file with fsnotify and
// publishes a new snapshot on change; components read the snapshot by
// pointer at each operation start, so a refresh takes effect for new spans
// without a process restart while in-flight spans keep the configuration
// they started with. A refresh that fails validation is rejected and the
// previous snapshot stays live.
//
// # Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("tracing.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := config.NewStore(cfg)
//
//	w, err := config.NewWatcher("tracing.yaml", store, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go w.Watch(ctx)
package config
