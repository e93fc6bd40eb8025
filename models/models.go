package models

// Wire payloads shared by the HTTP and socket transports.

// UploadResponse is returned after a dive log upload.
type UploadResponse struct {
	SessionID   string   `json:"sessionId"`
	DiveCount   int      `json:"diveCount"`
	DiveNumbers []string `json:"diveNumbers"`
}

// ChatRequest is one user message in a roast conversation, sent over the
// socket as a JSON string.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatChunk is one streamed fragment of the model's reply.
type ChatChunk struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// ChatComplete closes a streamed reply.
type ChatComplete struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// DashboardRequest asks for the dashboard of an uploaded log over the
// socket; the HTTP endpoint takes the session ID as a query parameter.
type DashboardRequest struct {
	SessionID string `json:"sessionId"`
}
