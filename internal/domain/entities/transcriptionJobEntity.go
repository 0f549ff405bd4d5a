package entities

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "error"
)

// Terminal reports whether no further transition can happen from s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// TranscriptionJob is the remote view of an asynchronous transcription.
// It only lives for the duration of one polling loop.
type TranscriptionJob struct {
	ID         string
	Status     JobStatus
	Transcript string
	Error      string
}
