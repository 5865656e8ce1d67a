package config

// defaults returns the built-in configuration values, keyed the same way
// the JSON file is.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"dispatch.workers":              4,
		"dispatch.send_timeout_seconds": 30,

		"queue.backend":        "memory",
		"queue.buffer_size":    1000,
		"queue.redis.addr":     "localhost:6379",
		"queue.redis.password": "",
		"queue.redis.db":       0,
		"queue.redis.stream":   "notifycast:jobs",
		"queue.redis.group":    "notifycast-workers",
		"queue.redis.consumer": "",

		"log.level": "warn",
		"log.file":  "",

		"telemetry.enabled":         false,
		"telemetry.service_name":    "notifycast",
		"telemetry.service_version": "0.1.0",
		"telemetry.environment":     "development",
		"telemetry.otlp_endpoint":   "localhost:4318",
		"telemetry.sample_rate":     1.0,
	}
}

// Default returns the configuration produced by the built-in defaults
// alone.
func Default() *Configuration {
	cfg, err := Load("")
	if err != nil {
		// Defaults always validate; reaching here is a programming error.
		panic(err)
	}
	return cfg
}
