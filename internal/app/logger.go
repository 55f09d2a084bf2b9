package app

import (
	"github.com/turtacn/StayLedger/internal/config"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	out := cfg.Output
	if out == "" {
		out = "stdout"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      []string{out},
		ErrorOutputPaths: []string{"stderr"},
	})
}

//Personal.AI order the ending
