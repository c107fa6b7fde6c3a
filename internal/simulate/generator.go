package simulate

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/fastbreaklabs/fastbreak/internal/domain/model"
	"github.com/fastbreaklabs/fastbreak/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants for price generation ranges.
const (
	bargainMin   = 1.0
	bargainRange = 14.0
	marketMin    = 15.0
	marketRange  = 25.0
	starMin      = 40.0
	starRange    = 35.0
	// A handful of plans deliberately overspend so the run exercises
	// the insufficient-funds path.
	overspendPrice = 500.0
)

// Probabilities for plan shape.
const (
	skipSlotProbability  = 0.2
	starProbability      = 0.15
	bargainProbability   = 0.4
	overspendProbability = 0.05
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generatePlans creates registration and acquisition plans for the
// configured number of teams.
func generatePlans(ctx context.Context, config *Config) ([]teamPlan, error) {
	logger.Get().Info(ctx, "generating team plans", logger.Int("numTeams", config.NumTeams))

	plans := make([]teamPlan, config.NumTeams)
	for i := 0; i < config.NumTeams; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during plan generation: %w", ctx.Err())
		default:
		}
		plans[i] = generateSinglePlan(i)
	}

	logger.Get().Info(ctx, "team plans generated", logger.Int("plans", len(plans)))
	return plans, nil
}

// generateSinglePlan builds one team with a randomized shopping list.
func generateSinglePlan(index int) teamPlan {
	plan := teamPlan{
		ID:    uuid.New().String(),
		Owner: fmt.Sprintf("owner-%04d", index),
	}

	for _, slot := range model.Slots() {
		r := getRandomFloat()
		if r < skipSlotProbability {
			continue
		}

		price := marketMin + getRandomFloat()*marketRange
		switch {
		case r < skipSlotProbability+overspendProbability:
			price = overspendPrice
		case r < skipSlotProbability+overspendProbability+starProbability:
			price = starMin + getRandomFloat()*starRange
		case r < skipSlotProbability+overspendProbability+starProbability+bargainProbability:
			price = bargainMin + getRandomFloat()*bargainRange
		}

		plan.Acquisitions = append(plan.Acquisitions, acquisition{
			Slot:     string(slot),
			PlayerID: uuid.New().String(),
			Price:    price,
		})
	}

	return plan
}
