// Command enforced runs the contract enforcement pipeline in front of a
// demo API handler, driven entirely by an OpenAPI/Swagger document and
// an optional YAML configuration file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kestrelapi/apigate"
	"github.com/kestrelapi/apigate/config"
	"github.com/kestrelapi/apigate/internal/obslog"
	"github.com/kestrelapi/apigate/specindex/oastypes"
	"github.com/kestrelapi/apigate/tokenauth"
)

func main() {
	specPath := flag.String("spec", "", "Path to an OpenAPI/Swagger document (required)")
	configPath := flag.String("config", "", "Path to a YAML configuration file (optional)")
	addr := flag.String("addr", ":8080", "Address to listen on")
	flag.Parse()

	if *specPath == "" {
		fmt.Fprintln(os.Stderr, "-spec is required")
		os.Exit(1)
	}

	if err := run(*specPath, *configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "enforced: %v\n", err)
		os.Exit(1)
	}
}

func run(specPath, configPath, addr string) error {
	p := oastypes.New()
	parsed, err := p.Parse(specPath)
	if err != nil {
		return fmt.Errorf("parsing spec: %w", err)
	}

	var cfg *config.Snapshot
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var keys *tokenauth.KeyCache
	if cfg.Security.EnableVerifyJWT {
		local, jwksURL := cfg.Security.JWT.ResolveKeys()
		var opts []tokenauth.Option
		if jwksURL != "" {
			opts = append(opts, tokenauth.WithJWKSURL(jwksURL))
		}
		keys, err = tokenauth.NewKeyCache(local, opts...)
		if err != nil {
			return fmt.Errorf("loading JWT keys: %w", err)
		}
	}

	logger := obslog.New(slog.Default())
	eng, err := enforcer.New(parsed, cfg, keys, logger)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(eng.Middleware())
	router.NotFound(demoHandler)
	router.MethodNotAllowed(demoHandler)
	router.HandleFunc("/*", demoHandler)

	slog.Info("enforced listening", "addr", addr, "spec", specPath)
	return http.ListenAndServe(addr, router)
}

// demoHandler stands in for the real application; a production deployment
// wires eng.Middleware() in front of its own router instead.
func demoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
