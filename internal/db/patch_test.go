package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch_Empty(t *testing.T) {
	var p Patch
	assert.True(t, p.Empty())

	p.Set("name", "Blue Mug")
	assert.False(t, p.Empty())
}

func TestPatch_Assignments(t *testing.T) {
	var p Patch
	p.Set("name", "Blue Mug")
	p.Set("price", 9.99)
	p.Set("is_active", true)

	assignments, args := p.Assignments(3)

	assert.Equal(t, "name = $3, price = $4, is_active = $5", assignments)
	assert.Equal(t, []any{"Blue Mug", 9.99, true}, args)
}

func TestPatch_AssignmentsSingleColumn(t *testing.T) {
	var p Patch
	p.Set("notes", "updated")

	assignments, args := p.Assignments(1)

	assert.Equal(t, "notes = $1", assignments)
	assert.Equal(t, []any{"updated"}, args)
}
