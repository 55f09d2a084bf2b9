package exchangerate

import (
	"net/http"

	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// BuildChain turns the configured providers into a priority-ordered chain.
// Providers that need a key and have none are left out.
func BuildChain(cfg config.ExchangeConfig, httpClient *http.Client, log logging.Logger) []currency.Provider {
	if log == nil {
		log = logging.NewNopLogger()
	}
	chain := make([]currency.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		if pc.RequiresKey && pc.APIKey == "" {
			log.Info("exchange rate provider skipped: no credentials", logging.String("provider", pc.Name))
			continue
		}
		p, err := NewHTTPProvider(pc,
			WithHTTPClient(httpClient),
			WithRequestsPerMinute(cfg.RequestsPerMinute),
			WithLogger(log.Named("fx."+pc.Name)),
		)
		if err != nil {
			log.Warn("exchange rate provider rejected", logging.String("provider", pc.Name), logging.Err(err))
			continue
		}
		chain = append(chain, p)
	}
	return chain
}

//Personal.AI order the ending
