package service

import (
	"net/http"
	"strings"
	"time"
)

// platformHTTPTimeout bounds every outbound platform API call. A timed-out
// publish is treated like any other publish failure.
const platformHTTPTimeout = 15 * time.Second

func newPlatformClient() *http.Client {
	return &http.Client{Timeout: platformHTTPTimeout}
}

func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// NormalizeChannelHandle ensures a telegram channel handle carries the
// leading "@" the Bot API expects as chat_id.
func NormalizeChannelHandle(handle string) string {
	if strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}
