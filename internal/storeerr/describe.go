package storeerr

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Payload is the JSON form of a storage error.
type Payload struct {
	// Name is the driver error kind, e.g. "CommandError", "WriteException",
	// or the server supplied code name such as "DuplicateKey".
	Name string `json:"name"`

	// Message is the driver or server message.
	Message string `json:"message"`

	// Code is the server error code, zero when the error did not come from the server.
	Code int `json:"code,omitempty"`

	// Labels are the server error labels (e.g. "TransientTransactionError").
	Labels []string `json:"labels,omitempty"`
}

// Describe converts an error returned by the storage layer into a Payload.
//
// Recognized shapes:
//   - mongo.WriteException: first write error code and message
//   - mongo.CommandError: server code, code name and labels
//   - mongo.BulkWriteException: first write error
//   - network errors and timeouts reported by the driver
//   - context cancellation and deadlines
//
// Anything else falls back to Name "Error" with the error text.
func Describe(err error) Payload {
	if err == nil {
		return Payload{}
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		payload := Payload{
			Name:    "WriteException",
			Message: writeErr.Error(),
			Labels:  writeErr.Labels,
		}
		if len(writeErr.WriteErrors) > 0 {
			payload.Code = writeErr.WriteErrors[0].Code
			payload.Message = writeErr.WriteErrors[0].Message
		} else if writeErr.WriteConcernError != nil {
			payload.Code = writeErr.WriteConcernError.Code
			payload.Message = writeErr.WriteConcernError.Message
		}
		return payload
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) {
		payload := Payload{
			Name:    "BulkWriteException",
			Message: bulkErr.Error(),
			Labels:  bulkErr.Labels,
		}
		if len(bulkErr.WriteErrors) > 0 {
			payload.Code = bulkErr.WriteErrors[0].Code
			payload.Message = bulkErr.WriteErrors[0].Message
		}
		return payload
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		name := cmdErr.Name
		if name == "" {
			name = "CommandError"
		}
		return Payload{
			Name:    name,
			Message: cmdErr.Message,
			Code:    int(cmdErr.Code),
			Labels:  cmdErr.Labels,
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		return Payload{Name: "Canceled", Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return Payload{Name: "Timeout", Message: err.Error()}
	case mongo.IsNetworkError(err):
		return Payload{Name: "NetworkError", Message: err.Error()}
	case errors.Is(err, mongo.ErrClientDisconnected):
		return Payload{Name: "ClientDisconnected", Message: err.Error()}
	}

	return Payload{Name: "Error", Message: err.Error()}
}
