package adapter

import (
	"time"

	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"

	"github.com/quarryql/quarry/value"
)

// FromProtoTimestamp converts a protobuf Timestamp into the Value the
// engine represents instants with: Unix nanoseconds as an Int64. This is
// the direct generalization of schemabuilder/types.go's Timestamp, which
// exists only to MarshalJSON a timestamp.Timestamp into an RFC3339
// string for an HTTP response; here there is no wire format to produce,
// only a Value an `@filter`/`@output` can act on, so the conversion
// target is the numeric instant rather than a formatted string.
func FromProtoTimestamp(ts *timestamp.Timestamp) value.Value {
	if ts == nil {
		return value.NullValue()
	}
	t := time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
	return value.FromInt64(t.UnixNano())
}

// FromProtoDuration converts a protobuf Duration into a Value holding
// its length in nanoseconds, the duration-side counterpart to
// FromProtoTimestamp. schemabuilder/types.go's Duration truncates to
// whole seconds when it formats for JSON; nanosecond precision is kept
// here since nothing downstream needs a human-facing rendering.
func FromProtoDuration(d *duration.Duration) value.Value {
	if d == nil {
		return value.NullValue()
	}
	total := d.Seconds*int64(time.Second) + int64(d.Nanos)
	return value.FromInt64(total)
}
