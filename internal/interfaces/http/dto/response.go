// Package dto defines the wire envelope of the bridge API. Every response
// carries an ok flag; everything else the caller needs rides in a small,
// endpoint-specific set of extra fields.
package dto

// Response is the plain envelope used for health checks and errors
type Response struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// PrintResponse acknowledges an accepted print job
type PrintResponse struct {
	OK      bool   `json:"ok"`
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// PrintersResponse lists the installed printer queues
type PrintersResponse struct {
	OK       bool     `json:"ok"`
	Printers []string `json:"printers"`
}

// NewSuccessResponse creates a success envelope with a message
func NewSuccessResponse(message string) Response {
	return Response{
		OK:      true,
		Message: message,
	}
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(message string) Response {
	return Response{
		OK:      false,
		Message: message,
	}
}

// NewPrintedResponse acknowledges that a job reached the spooler
func NewPrintedResponse(jobID string) PrintResponse {
	return PrintResponse{
		OK:      true,
		JobID:   jobID,
		Message: "printed",
	}
}

// NewPrintersResponse wraps the printer name list. A host without printers
// yields an empty array, never null.
func NewPrintersResponse(printers []string) PrintersResponse {
	if printers == nil {
		printers = []string{}
	}
	return PrintersResponse{
		OK:       true,
		Printers: printers,
	}
}
