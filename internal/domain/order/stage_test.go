package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_Index(t *testing.T) {
	assert.Equal(t, 0, StageYarnReceived.Index())
	assert.Equal(t, 1, StageKnitting.Index())
	assert.Equal(t, 2, StageLinking.Index())
	assert.Equal(t, 3, StageWashingFinishing.Index())
	assert.Equal(t, 4, StageFinalQC.Index())
	assert.Equal(t, 5, StagePacking.Index())
	assert.Equal(t, 6, StageReadyToShip.Index())
	assert.Equal(t, -1, Stage("dyeing").Index())
	assert.Equal(t, -1, Stage("").Index())
}

func TestStage_IsValid(t *testing.T) {
	for _, s := range Stages() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Stage("DYEING").IsValid())
	assert.False(t, Stage("").IsValid())
}

func TestStage_Before(t *testing.T) {
	assert.True(t, StageYarnReceived.Before(StageKnitting))
	assert.True(t, StageKnitting.Before(StageReadyToShip))
	assert.False(t, StageReadyToShip.Before(StagePacking))
	assert.False(t, StageKnitting.Before(StageKnitting))
}

func TestStage_IsFinal(t *testing.T) {
	assert.True(t, StageReadyToShip.IsFinal())
	assert.False(t, StagePacking.IsFinal())
	assert.False(t, StageYarnReceived.IsFinal())
}

func TestStages_Order(t *testing.T) {
	stages := Stages()
	assert.Len(t, stages, 7)
	assert.Equal(t, StageYarnReceived, stages[0])
	assert.Equal(t, StageReadyToShip, stages[6])
	for i := 1; i < len(stages); i++ {
		assert.True(t, stages[i-1].Before(stages[i]))
	}
}

func TestStageProgress_Get(t *testing.T) {
	var p StageProgress
	assert.Equal(t, 0, p.Get(StageKnitting))

	p = StageProgress{StageKnitting: 45}
	assert.Equal(t, 45, p.Get(StageKnitting))
	assert.Equal(t, 0, p.Get(StageLinking))
}

func TestStageProgress_Clone(t *testing.T) {
	p := StageProgress{StageKnitting: 45, StageYarnReceived: 100}
	c := p.Clone()
	c[StageKnitting] = 90

	assert.Equal(t, 45, p.Get(StageKnitting))
	assert.Equal(t, 90, c.Get(StageKnitting))

	assert.Nil(t, StageProgress(nil).Clone())
}
