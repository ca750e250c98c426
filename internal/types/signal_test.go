package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validLongDecision() Decision {
	return Decision{
		Action:     ActionLong,
		Confidence: 85,
		EntryPrice: 950,
		StopLoss:   930,
		TakeProfit: 990,
		RRRatio:    2.0,
	}
}

func TestDecisionValidate(t *testing.T) {
	d := validLongDecision()
	assert.NoError(t, d.Validate())
}

func TestDecisionValidateRejectsConfidenceOutOfRange(t *testing.T) {
	d := validLongDecision()
	d.Confidence = 150
	assert.Error(t, d.Validate())
}

func TestDecisionValidateRejectsNonPositivePrices(t *testing.T) {
	d := validLongDecision()
	d.EntryPrice = 0
	assert.Error(t, d.Validate())

	d = validLongDecision()
	d.StopLoss = -5
	assert.Error(t, d.Validate())
}

func TestDecisionValidateRejectsUnknownAction(t *testing.T) {
	d := validLongDecision()
	d.Action = Action("YOLO")
	assert.Error(t, d.Validate())
}

func TestDecisionValidateAgainstRange(t *testing.T) {
	d := validLongDecision()
	assert.NoError(t, d.ValidateAgainstRange(920, 1000))

	// entry outside observed range
	assert.Error(t, d.ValidateAgainstRange(960, 1000))

	// LONG with inverted stop loss
	d = validLongDecision()
	d.StopLoss = 960
	assert.Error(t, d.ValidateAgainstRange(920, 1000))

	// SHORT rules mirror LONG
	s := Decision{
		Action:     ActionShort,
		Confidence: 70,
		EntryPrice: 950,
		StopLoss:   970,
		TakeProfit: 910,
		RRRatio:    2.0,
	}
	assert.NoError(t, s.ValidateAgainstRange(900, 1000))

	s.TakeProfit = 980
	assert.Error(t, s.ValidateAgainstRange(900, 1000))
}

func TestDecisionValidateAgainstRangeSkipsDirectionRulesForManagement(t *testing.T) {
	d := Decision{
		Action:     ActionHold,
		Confidence: 50,
		EntryPrice: 950,
		StopLoss:   970, // direction rules do not apply to HOLD
		TakeProfit: 940,
		RRRatio:    1.0,
	}
	assert.NoError(t, d.ValidateAgainstRange(900, 1000))
}

func TestActionClassification(t *testing.T) {
	assert.True(t, ActionLong.OpensPosition())
	assert.True(t, ActionShort.OpensPosition())
	assert.False(t, ActionHold.OpensPosition())

	assert.True(t, ActionClose.ManagesPosition())
	assert.True(t, ActionMoveSL.ManagesPosition())
	assert.False(t, ActionLong.ManagesPosition())
	assert.False(t, ActionWait.ManagesPosition())
}
