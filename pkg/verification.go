package pkg

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/photo2card/hs2card/pkg/chara/format_ais"
	"github.com/photo2card/hs2card/pkg/logging"
)

// ValidateCardWithLogger validates a card record with a provided logger. The
// report is returned even when validation fails.
func ValidateCardWithLogger(cardPath string, deep bool, logger hclog.Logger) (*format_ais.ValidationReport, error) {
	reader := format_ais.NewReaderWithLogger(cardPath, logger)

	logger.Info("Validating card record", "path", cardPath, "deep", deep)

	report, err := reader.Validate(deep)
	if err != nil {
		logger.Error("Failed to load card", "error", err)
		return nil, err
	}

	for _, c := range report.Checks {
		if c.Passed {
			logger.Info("✓ "+c.Field, "value", c.Value)
		} else {
			logger.Error("✗ "+c.Field, "value", c.Value, "expect", c.Expect)
		}
	}
	if report.Error != "" {
		logger.Error("✗ Header walk stopped", "error", report.Error)
	}

	if report.OK {
		logger.Info("✓ Card validation passed", "base_position", report.BasePosition)
		return report, nil
	}

	failed := len(report.Failed())
	logger.Error("✗ Card validation failed", "failed_checks", failed)
	if report.Error != "" {
		return report, fmt.Errorf("card validation failed: %s", report.Error)
	}
	return report, fmt.Errorf("card validation failed: %d checks failed", failed)
}

// ValidateCard validates a card using default logger settings
func ValidateCard(cardPath string, deep bool) (*format_ais.ValidationReport, error) {
	logger := logging.NewLogger("hs2card-validate", logging.GetLogLevel(""), nil)
	return ValidateCardWithLogger(cardPath, deep, logger)
}
