package detector

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/skyward/deconflict/internal/detector"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
