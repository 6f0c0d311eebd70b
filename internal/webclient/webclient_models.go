package webclient

import (
	"net/http"
	"time"
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	// FinalURL is the URL of the last request after redirects were followed.
	FinalURL  string
	FetchedAt time.Time
}
