package nets

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/configs"
	"github.com/reusee/vague/modes"
)

func TestIsLocalAddr(t *testing.T) {
	dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		isLocalAddr IsLocalAddr,
	) {
		yes, err := isLocalAddr("127.0.0.1:10000")
		if err != nil {
			t.Fatal(err)
		}
		if !yes {
			t.Fatal()
		}
		yes, err = isLocalAddr("10.1.2.3")
		if err != nil {
			t.Fatal(err)
		}
		if !yes {
			t.Fatal()
		}
		yes, err = isLocalAddr("8.8.8.8:443")
		if err != nil {
			t.Fatal(err)
		}
		if yes {
			t.Fatal()
		}
	})
}

func TestHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	loader := configs.NewSourceLoader("", configs.Source{
		Name:    "test.cue",
		Content: []byte(`http_timeout: "3s"`),
	})

	dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(loader),
	).Call(func(
		client HTTPClient,
		timeout HTTPTimeout,
	) {
		if time.Duration(timeout) != 3*time.Second {
			t.Fatalf("got %v", timeout)
		}
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("got %v", resp.StatusCode)
		}
	})
}

func TestProxyAddrDisabledInDevelopment(t *testing.T) {
	t.Setenv("ALL_PROXY", "socks5://127.0.0.1:1080")
	dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Call(func(
		addr ProxyAddr,
		getDialer GetProxyDialer,
	) {
		if addr != "" {
			t.Fatalf("got %v", addr)
		}
		if _, err := getDialer(); err != nil {
			t.Fatal(err)
		}
	})
}
