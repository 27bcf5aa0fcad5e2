package models

import (
	"net/http"
	"time"
)

// Version is the envelope version reported by every response.
const Version = 2

// ResponseModel Base response structure that can be reused
type ResponseModel struct {
	Code        int                 `json:"code"`
	CurrentTime int64               `json:"currentTime"`
	Data        interface{}         `json:"data"`
	Text        string              `json:"text"`
	Version     int                 `json:"version"`
	Error       string              `json:"error,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

// ResponseCurrentTime returns the current time in epoch milliseconds.
func ResponseCurrentTime() int64 {
	return time.Now().UnixMilli()
}

func NewResponse(code int, data interface{}, text string) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTime(),
		Data:        data,
		Text:        text,
		Version:     Version,
	}
}

func NewOKResponse(data interface{}) ResponseModel {
	return NewResponse(http.StatusOK, data, "OK")
}

// NewErrorResponse builds an error envelope carrying a machine readable code.
// data may be nil.
func NewErrorResponse(code int, errorCode, text string, suggestions []string, data interface{}) ResponseModel {
	response := NewResponse(code, data, text)
	response.Error = errorCode
	response.Suggestions = suggestions
	return response
}
