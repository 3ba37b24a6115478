package domain

import "time"

// VerificationResult is the outcome of one upstream verification call.
// Immutable once constructed; transport failures are captured here instead
// of being raised to the caller.
type VerificationResult struct {
	Email      string `json:"email"`
	Success    bool   `json:"success"`
	Body       string `json:"data,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
	IsTimeout  bool   `json:"isTimeout,omitempty"`
}

// SuccessResult wraps an upstream response. Any HTTP response counts as a
// proxy-level success, including non-2xx statuses from the upstream.
func SuccessResult(email string, statusCode int, body string) VerificationResult {
	return VerificationResult{
		Email:      email,
		Success:    true,
		StatusCode: statusCode,
		Body:       body,
	}
}

// FailureResult wraps a transport-level failure.
func FailureResult(email string, message string) VerificationResult {
	return VerificationResult{
		Email:   email,
		Success: false,
		Error:   message,
	}
}

// TimeoutResult wraps a deadline expiry on the upstream call.
func TimeoutResult(email string, message string) VerificationResult {
	return VerificationResult{
		Email:     email,
		Success:   false,
		Error:     message,
		IsTimeout: true,
	}
}

// BatchReport aggregates the outcome of a batch verification.
// Invariant: Successful + Failed == Total == len(Results).
type BatchReport struct {
	Total          int                  `json:"total"`
	Successful     int                  `json:"successful"`
	Failed         int                  `json:"failed"`
	ProcessingTime int64                `json:"processingTime"`
	Results        []VerificationResult `json:"results"`
}

// NewBatchReport tallies results in their given order.
func NewBatchReport(results []VerificationResult, elapsed time.Duration) *BatchReport {
	report := &BatchReport{
		Total:          len(results),
		ProcessingTime: elapsed.Milliseconds(),
		Results:        results,
	}

	for _, result := range results {
		if result.Success {
			report.Successful++
		} else {
			report.Failed++
		}
	}

	return report
}
