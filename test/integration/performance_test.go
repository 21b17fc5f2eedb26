package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// generatedConfiguration builds n active properties with varied inputs.
func generatedConfiguration(n int) config.Configuration {
	conf := config.Configuration{}
	for i := 0; i < n; i++ {
		propertyType := "single"
		if i%2 == 1 {
			propertyType = "multi"
		}
		conf.Properties = append(conf.Properties, config.Property{
			Name:   fmt.Sprintf("generated %d", i),
			Active: true,
			Form: valuation.Form{
				PropertyType:   propertyType,
				Units:          2 + i%3,
				PurchasePrice:  200000 + float64(i)*1000,
				UnitRents:      []interface{}{1200 + i%500, 1100, 1300, 900},
				LoanTermYears:  []int{15, 30}[i%2],
				FHA:            i%3 == 0,
				VacancyRate:    float64(i % 15),
				ManagementRate: 8,
			},
		})
	}
	return conf
}

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	conf := generatedConfiguration(1000)

	start := time.Now()
	results, err := analysis.Run(zap.NewNop(), conf)
	duration := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1000)
	for _, result := range results {
		require.NotNil(t, result.Metrics, result.Name)
	}

	t.Logf("Evaluated %d properties in %v", len(results), duration)
	assert.Less(t, duration, 5*time.Second)
}

func TestDataConsistency(t *testing.T) {
	conf := generatedConfiguration(50)

	first, err := analysis.Run(zap.NewNop(), conf)
	require.NoError(t, err)

	for run := 1; run < 3; run++ {
		results, err := analysis.Run(zap.NewNop(), conf)
		require.NoError(t, err)
		assert.Equal(t, first, results, "run %d differs from the first run", run)
	}
}
