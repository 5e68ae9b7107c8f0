package infrastructure

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpPathKey       = "http.path"
	httpStatusCodeKey = "http.status_code"
	statusKey         = "status"
	sourceKey         = "fix.source"
	transportKey      = "uplink.transport"
	sessionEventKey   = "session.event"
)

func HTTPMethodAttr(method string) attribute.KeyValue {
	return attribute.String(httpMethodKey, method)
}

func HTTPPathAttr(path string) attribute.KeyValue {
	return attribute.String(httpPathKey, path)
}

func HTTPStatusCodeAttr(code int) attribute.KeyValue {
	return attribute.String(httpStatusCodeKey, fmt.Sprintf("%d", code))
}

func StatusAttr(status string) attribute.KeyValue {
	return attribute.String(statusKey, status)
}

func SourceAttr(source string) attribute.KeyValue {
	return attribute.String(sourceKey, source)
}

func TransportAttr(transport string) attribute.KeyValue {
	return attribute.String(transportKey, transport)
}

func SessionEventAttr(event string) attribute.KeyValue {
	return attribute.String(sessionEventKey, event)
}
