// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the scoreboard and email clients. The timeout
// bounds a hung external call — there is no per-step budget beyond this.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
