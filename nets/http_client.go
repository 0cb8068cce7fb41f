package nets

import (
	"net/http"
	"time"

	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/vars"
)

type HTTPClient = *http.Client

// HTTPTimeout bounds a whole oracle round trip, including reading the streamed body.
type HTTPTimeout time.Duration

func (Module) HTTPTimeout(
	loader configs.Loader,
) HTTPTimeout {
	return HTTPTimeout(vars.DurationOr(
		configs.First[string](loader, "http_timeout"),
		2*time.Minute,
	))
}

func (Module) HTTPClient(
	dialer Dialer,
	timeout HTTPTimeout,
) HTTPClient {
	return &http.Client{
		Timeout: time.Duration(timeout),
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}
}
