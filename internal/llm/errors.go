package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrorKind tells the caller whether a failed call is worth retrying.
type ErrorKind string

const (
	KindQuota     ErrorKind = "quota"
	KindTransport ErrorKind = "transport"
	KindEmpty     ErrorKind = "empty"
)

var ErrEmptyResponse = errors.New("model returned empty response")

type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsQuota reports whether err is a rate-limit / quota error from any provider.
func IsQuota(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == KindQuota
	}
	return classifyKind(err) == KindQuota
}

// Classify wraps err into a *ProviderError, detecting quota errors from the
// provider SDKs.
func Classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Kind: classifyKind(err), Err: err}
}

func classifyKind(err error) ErrorKind {
	if errors.Is(err, ErrEmptyResponse) {
		return KindEmpty
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return KindQuota
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return KindQuota
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return KindQuota
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr.Code == http.StatusTooManyRequests {
		return KindQuota
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "rate limit") {
		return KindQuota
	}
	return KindTransport
}
