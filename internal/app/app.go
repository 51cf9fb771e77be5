package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"graphpipe/internal/catalog"
	"graphpipe/internal/config"
	"graphpipe/internal/extract"
	"graphpipe/internal/ledger"
)

// App owns the wired pipeline components. One instance per process,
// built in the root command and stashed in the command context.
type App struct {
	Config    *config.Config
	Client    *openai.Client
	Catalog   *catalog.Cache
	Ledger    *ledger.Ledger
	Extractor *extract.Extractor
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientCfg := openai.DefaultConfig(cfg.API.Key)
	clientCfg.BaseURL = cfg.API.BaseURL
	client := openai.NewClientWithConfig(clientCfg)

	lister := catalog.NewClient(cfg.API.BaseURL, cfg.API.Key)
	prober := catalog.NewProber(client)
	cache := catalog.NewCache(cfg.Cache.Path, cfg.CacheExpiry(), lister, prober)

	lgr := ledger.New(cfg.Ledger.Path, cfg.Pricing)

	extractor := extract.NewExtractor(client, cache, lgr, stdinConfirmer)

	log.Debug("Application initialization complete.")
	return &App{
		Config:    cfg,
		Client:    client,
		Catalog:   cache,
		Ledger:    lgr,
		Extractor: extractor,
	}, nil
}

// stdinConfirmer asks for interactive approval on the terminal.
func stdinConfirmer(prompt string) bool {
	fmt.Fprintf(os.Stderr, "\n%s (y/n): ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
