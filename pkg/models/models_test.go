package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerStatus(t *testing.T) {
	p := &Player{Activated: 1700000000}
	assert.True(t, p.IsActive())
	assert.False(t, p.IsBanned())

	p.Activated = -1
	assert.False(t, p.IsActive())
	assert.True(t, p.IsBanned())

	p.Activated = 0
	assert.False(t, p.IsActive())
	assert.False(t, p.IsBanned())
}

func TestFeatures(t *testing.T) {
	assert.Equal(t, UserOptions{Feature: FeatureBFS, Spread: 1, Reach: 1}, DefaultOptions())

	assert.True(t, FeatureBFS.IsPathing())
	assert.True(t, FeatureAStar.IsPathing())
	assert.False(t, FeatureLinear.IsPathing())
	assert.False(t, FeatureCircular.IsPathing())

	assert.True(t, FeatureCircular.Valid())
	assert.False(t, Feature(4).Valid())
	assert.False(t, Feature(-1).Valid())
	assert.Equal(t, "linear", FeatureLinear.String())
	assert.Equal(t, "feature(9)", Feature(9).String())
}
