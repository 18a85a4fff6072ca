package githubapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	requestCompletedLogMessageConstant = "github api request"
	requestFailedLogMessageConstant    = "github api request failed"
	logFieldMethodConstant             = "method"
	logFieldURLConstant                = "url"
	logFieldStatusCodeConstant         = "status_code"
	logFieldDurationConstant           = "duration"
	logFieldRateLimitRemainingConstant = "rate_limit_remaining"
	rateLimitRemainingHeaderConstant   = "X-RateLimit-Remaining"
)

// loggingRoundTripper logs each REST exchange without exposing request headers.
type loggingRoundTripper struct {
	base   http.RoundTripper
	logger *zap.Logger
}

func newLoggingRoundTripper(base http.RoundTripper, logger *zap.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingRoundTripper{base: base, logger: logger}
}

// RoundTrip executes the request and records method, URL, status, and duration.
func (roundTripper *loggingRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	startTime := time.Now()
	response, roundTripError := roundTripper.base.RoundTrip(request)
	elapsed := time.Since(startTime)

	if roundTripError != nil {
		roundTripper.logger.Debug(
			requestFailedLogMessageConstant,
			zap.String(logFieldMethodConstant, request.Method),
			zap.String(logFieldURLConstant, request.URL.Redacted()),
			zap.Duration(logFieldDurationConstant, elapsed),
			zap.Error(roundTripError),
		)
		return nil, roundTripError
	}

	roundTripper.logger.Debug(
		requestCompletedLogMessageConstant,
		zap.String(logFieldMethodConstant, request.Method),
		zap.String(logFieldURLConstant, request.URL.Redacted()),
		zap.Int(logFieldStatusCodeConstant, response.StatusCode),
		zap.Duration(logFieldDurationConstant, elapsed),
		zap.String(logFieldRateLimitRemainingConstant, response.Header.Get(rateLimitRemainingHeaderConstant)),
	)
	return response, nil
}
