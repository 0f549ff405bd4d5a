package dto

type UploadAudioResponse struct {
	UploadURL string `json:"upload_url"`
}

type CreateTranscriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type TranscriptResponse struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Text   *string `json:"text"`
	Error  string  `json:"error,omitempty"`
}
