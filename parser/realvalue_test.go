package parser

import (
	"strings"
	"testing"

	"github.com/ngcstream/gcode/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRealValue_Literal(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("-1.5"), false)
	rv, _, err := readRealValue(s, cfg, false)
	require.NoError(t, err)
	require.Equal(t, RVLiteral, rv.Kind)
	assert.InDelta(t, -1.5, rv.Literal.Number, 1e-9)
}

func TestReadRealValue_OptionalNone(t *testing.T) {
	cfg := config.DefaultDialect()
	cfg.OptionalValue = true
	s := NewByteSource(strings.NewReader("Y"), false)
	rv, _, err := readRealValue(s, cfg, true)
	require.NoError(t, err)
	assert.Equal(t, RVNone, rv.Kind)

	next, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, byte('Y'), next, "the triggering byte must be pushed back")
}

func TestReadRealValue_UnexpectedByteWhenNoneDisallowed(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("Y"), false)
	_, _, err := readRealValue(s, cfg, false)
	require.Error(t, err)
	perr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrUnexpectedByte, perr.Kind)
}

func TestReadParameterDereference_SingleHash(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("#3"), false)
	b, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, byte('#'), b)

	rv, _, err := readParameterDereference(s, cfg, s.Pos())
	require.NoError(t, err)
	require.Equal(t, RVExpression, rv.Kind)
	require.Len(t, rv.Expression, 2)
	assert.Equal(t, ExprLiteral, rv.Expression[0].Kind)
	assert.InDelta(t, 3.0, rv.Expression[0].Literal.Number, 1e-9)
	assert.Equal(t, ExprOperator, rv.Expression[1].Kind)
	assert.Equal(t, OpGetParameter, rv.Expression[1].Operator)
}

func TestReadParameterDereference_DoubleHash(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("##1"), false)
	b, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, byte('#'), b)

	rv, _, err := readParameterDereference(s, cfg, s.Pos())
	require.NoError(t, err)
	require.Len(t, rv.Expression, 3)
	assert.Equal(t, ExprLiteral, rv.Expression[0].Kind)
	assert.Equal(t, OpGetParameter, rv.Expression[1].Operator)
	assert.Equal(t, OpGetParameter, rv.Expression[2].Operator)
}

func TestReadParameterDereference_BracketedID(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("#[1+2]"), false)
	b, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, byte('#'), b)

	rv, _, err := readParameterDereference(s, cfg, s.Pos())
	require.NoError(t, err)
	// id is [1, 2, Add], followed by one GetParameter.
	require.Len(t, rv.Expression, 4)
	assert.Equal(t, OpAdd, rv.Expression[2].Operator)
	assert.Equal(t, OpGetParameter, rv.Expression[3].Operator)
}

func TestReadParameterDereference_NamedParameterRequiresDialectFlag(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("#<_x>"), false)
	b, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, byte('#'), b)

	rv, _, err := readParameterDereference(s, cfg, s.Pos())
	require.Error(t, err, "named parameters must be rejected when the dialect flag is off")
	_ = rv
}

func TestReadParameterDereference_NamedParameter(t *testing.T) {
	cfg := config.DefaultDialect()
	cfg.NamedParameters = true
	s := NewByteSource(strings.NewReader("#<_x>"), false)
	b, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, byte('#'), b)

	rv, _, err := readParameterDereference(s, cfg, s.Pos())
	require.NoError(t, err)
	require.Len(t, rv.Expression, 2)
	assert.Equal(t, ExprLiteral, rv.Expression[0].Kind)
	assert.Equal(t, LitString, rv.Expression[0].Literal.Kind)
	assert.Equal(t, "_x", string(rv.Expression[0].Literal.Str))
	assert.Equal(t, OpGetParameter, rv.Expression[1].Operator)
}

func TestReadFunctionRealValue_Unary(t *testing.T) {
	cfg := config.DefaultDialect()
	s := NewByteSource(strings.NewReader("cos[1]"), false)
	first, err := s.Next()
	require.NoError(t, err)

	rv, _, err := readFunctionRealValue(s, cfg, s.Pos(), first, false)
	require.NoError(t, err)
	require.Len(t, rv.Expression, 2)
	assert.Equal(t, ExprLiteral, rv.Expression[0].Kind)
	assert.Equal(t, OpCos, rv.Expression[1].Operator)
}

func TestReadFunctionRealValue_UnknownWordPushesBack(t *testing.T) {
	cfg := config.DefaultDialect()
	cfg.OptionalValue = true
	s := NewByteSource(strings.NewReader("garbage"), false)
	first, err := s.Next()
	require.NoError(t, err)

	rv, _, err := readFunctionRealValue(s, cfg, s.Pos(), first, true)
	require.NoError(t, err)
	assert.Equal(t, RVNone, rv.Kind)

	// every byte of "garbage" must be restored
	var got []byte
	for {
		b, err := s.Next()
		if err != nil {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, "garbage", string(got))
}
