package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MPA2620/DSML-Final-Project/internal/dynamo"
	"github.com/MPA2620/DSML-Final-Project/internal/energy"
	"github.com/MPA2620/DSML-Final-Project/internal/graph"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromMatrix([][]float64{
		{0, 2, 0},
		{2, 0, 3},
		{0, 3, 0},
	})
	require.NoError(t, err)
	return g
}

func TestNewProblem_Ising(t *testing.T) {
	g := triangle(t)
	p, err := NewProblem(g, []float64{0, 0, 0}, EncodingIsing)
	require.NoError(t, err)
	assert.Equal(t, EncodingIsing, p.Encoding)
	assert.Equal(t, 3, p.Size())

	cut, weight, err := p.Evaluate(energy.Assignment{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, cut)
	assert.Equal(t, 3.0, weight)
}

func TestNewProblem_MaxCut(t *testing.T) {
	g := triangle(t)
	p, err := NewProblem(g, nil, EncodingMaxCut)
	require.NoError(t, err)

	cut, weight, err := p.Evaluate(energy.Assignment{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, weight)
	assert.InDelta(t, weight, cut, 1e-12)
}

func TestNewProblem_Invalid(t *testing.T) {
	g := triangle(t)

	_, err := NewProblem(g, []float64{0}, EncodingIsing)
	assert.ErrorIs(t, err, dynamo.ErrShapeMismatch)

	_, err = NewProblem(g, nil, Encoding("qubo"))
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	_, err = NewProblem(nil, nil, EncodingIsing)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestTraceAccessors(t *testing.T) {
	tr := Trace{
		{Time: 0, State: dynamo.State{0.2, 0.9}, Energy: 0},
		{Time: 1, State: dynamo.State{0.7, 0.9}, Energy: -2},
	}
	assert.Equal(t, []float64{0, 1}, tr.Times())
	assert.Equal(t, []float64{0, -2}, tr.Energies())
	assert.Equal(t, []energy.Assignment{{0, 1}, {1, 1}}, tr.Assignments())
}
