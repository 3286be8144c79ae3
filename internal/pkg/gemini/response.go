package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ResponseText concatenates the visible text parts of the first candidate.
func ResponseText(response *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, part := range candidateParts(response) {
		if part.Text != "" && !part.Thought {
			builder.WriteString(part.Text)
		}
	}
	return builder.String()
}

func FunctionCalls(response *genai.GenerateContentResponse) []*genai.FunctionCall {
	var calls []*genai.FunctionCall
	for _, part := range candidateParts(response) {
		if part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}

func candidateParts(response *genai.GenerateContentResponse) []*genai.Part {
	if response == nil || len(response.Candidates) == 0 {
		return nil
	}
	content := response.Candidates[0].Content
	if content == nil {
		return nil
	}

	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part != nil {
			parts = append(parts, part)
		}
	}
	return parts
}

// IsAuthorizationError reports whether err means the API key was rejected.
func IsAuthorizationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingAPIKey) {
		return true
	}

	var apiError genai.APIError
	if errors.As(err, &apiError) && isAuthorizationCode(apiError.Code) {
		return true
	}
	var apiErrorPointer *genai.APIError
	if errors.As(err, &apiErrorPointer) && apiErrorPointer != nil && isAuthorizationCode(apiErrorPointer.Code) {
		return true
	}

	message := err.Error()
	return strings.Contains(message, "403") ||
		strings.Contains(message, "API key") ||
		strings.Contains(message, "PERMISSION_DENIED")
}

func isAuthorizationCode(code int) bool {
	return code == http.StatusForbidden || code == http.StatusUnauthorized
}
