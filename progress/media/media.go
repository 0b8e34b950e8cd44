package media

// Phase represents a stage in the installation-media fetch lifecycle.
type Phase int

const (
	PhaseDownload Phase = iota // HTTP download started / advancing.
	PhaseExtract               // Boot-artifact extraction from the mounted ISO.
	PhaseDone                  // Media and boot artifacts in place.
)

// Event describes a single media fetch progress update.
type Event struct {
	Phase      Phase
	Distro     string
	BytesTotal int64 // Content-Length; -1 if unknown.
	BytesDone  int64 // Bytes downloaded so far (download phase only).
}
