package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocateSeatLabelsFromEmpty(t *testing.T) {
	labels := AllocateSeatLabels(nil, "vip", 3)
	assert.Equal(t, []string{"VIP-1", "VIP-2", "VIP-3"}, labels)
}

func TestAllocateSeatLabelsSkipsTaken(t *testing.T) {
	existing := []string{"VIP-1", "VIP-3"}
	labels := AllocateSeatLabels(existing, "vip", 3)
	assert.Equal(t, []string{"VIP-2", "VIP-4", "VIP-5"}, labels)
}

func TestAllocateSeatLabelsUppercasesCode(t *testing.T) {
	labels := AllocateSeatLabels(nil, "general", 1)
	assert.Equal(t, []string{"GENERAL-1"}, labels)
}

func TestAllocateSeatLabelsZeroQuantity(t *testing.T) {
	assert.Empty(t, AllocateSeatLabels([]string{"VIP-1"}, "vip", 0))
	assert.Empty(t, AllocateSeatLabels(nil, "vip", -2))
}

func TestAllocateSeatLabelsIgnoresOtherTypes(t *testing.T) {
	// Labels of a different type never collide since the prefix differs.
	existing := []string{"GENERAL-1", "GENERAL-2"}
	labels := AllocateSeatLabels(existing, "vip", 2)
	assert.Equal(t, []string{"VIP-1", "VIP-2"}, labels)
}
