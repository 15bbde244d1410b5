package shift

// NoticeTone colors an operator-facing notice.
type NoticeTone string

const (
	ToneDefault NoticeTone = "default"
	ToneSuccess NoticeTone = "success"
	ToneError   NoticeTone = "error"
)

// Notice is a short operator-facing status message. Failures surface as
// notices, never as raw errors or stack traces.
type Notice struct {
	Message string
	Tone    NoticeTone
}

// NoticeSink receives notices raised by the machine.
type NoticeSink func(Notice)

// GeoStatus is the display state of the geolocation capability.
type GeoStatus string

const (
	GeoIdle    GeoStatus = "idle"
	GeoLoading GeoStatus = "loading"
	GeoReady   GeoStatus = "ready"
	GeoError   GeoStatus = "error"
)
