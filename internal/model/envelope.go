package model

import "net/http"

// Response messages.
const (
	MessageUsersFetched = "User Data Successfully Fetched"
	MessageUserSaved    = "User Saved Successfully"
	MessageUserNotFound = "User Not Found"
	MessageUserUpdated  = "User Updated Successfully"
	MessageUserDeleted  = "User Deleted Successfully"

	MessageGetFailed    = "Failed to get data"
	MessageRemoveFailed = "Error in removing User"
)

// Envelope is the fixed-shape JSON reply of every user route.
//
// StatusCode is also used as the transport status. Data is omitted when nil,
// which is how pure acknowledgements (create, delete) are written. A typed nil
// (e.g. (*User)(nil)) is still serialized as null.
type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
}

// HTTPStatus returns the transport status for this envelope.
func (e Envelope) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusOK
	}
	return e.StatusCode
}

// NewEnvelope creates an envelope carrying data.
func NewEnvelope(status int, message string, data interface{}) Envelope {
	return Envelope{StatusCode: status, Message: message, Data: data}
}

// Ack creates an envelope without data.
func Ack(status int, message string) Envelope {
	return Envelope{StatusCode: status, Message: message}
}
