package observability

import "go.opentelemetry.io/otel"

// Tracer uses the global provider, which is a no-op unless one is installed.
var Tracer = otel.Tracer("genstub")
