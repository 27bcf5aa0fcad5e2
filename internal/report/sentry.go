package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Setup initializes the global Sentry client. An empty dsn leaves reporting
// disabled and returns false.
func Setup(dsn, env, release string) (bool, error) {
	if dsn == "" {
		return false, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		Release:          release,
		AttachStacktrace: true,
	}); err != nil {
		return false, fmt.Errorf("sentry.Init: %w", err)
	}
	return true, nil
}

func Flush() {
	sentry.Flush(2 * time.Second)
}
