package types

// ErrorBody is the JSON shape of every failed response. Clients read Error as a plain string.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageBody carries a bare confirmation message, e.g. after a delete.
type MessageBody struct {
	Message string `json:"message"`
}

// StatusBody is returned by the health endpoints.
type StatusBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
