package features

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() map[string]any {
	return map[string]any{
		"CRIM": 0.00632, "ZN": 18.0, "INDUS": 2.31, "CHAS": 0, "NOX": 0.538,
		"RM": 6.575, "AGE": 65.2, "DIS": 4.09, "RAD": 1, "TAX": 296.0,
		"PTRATIO": 15.3, "B": 396.9, "LSTAT": 4.98,
	}
}

func TestDefaultContractOrder(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		"CRIM", "ZN", "INDUS", "CHAS", "NOX", "RM", "AGE",
		"DIS", "RAD", "TAX", "PTRATIO", "B", "LSTAT",
	}, c.Names())

	rad, ok := c.Lookup("RAD")
	require.True(t, ok)
	assert.Equal(t, KindInt, rad.Kind)
	assert.False(t, rad.Required)
}

func TestNewContractRejectsDuplicates(t *testing.T) {
	_, err := NewContract([]Feature{{Name: "RM"}, {Name: "RM"}})
	assert.Error(t, err)
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	row, err := Default().Validate(validRequest())
	require.NoError(t, err)
	require.Len(t, row, 13)
	assert.InDelta(t, 0.00632, row[0], 1e-12)
	assert.InDelta(t, 4.98, row[12], 1e-12)
}

func TestValidateOptionalFeaturesDefaultToMissing(t *testing.T) {
	req := validRequest()
	delete(req, "ZN")
	req["CHAS"] = nil
	delete(req, "RAD")

	row, err := Default().Validate(req)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(row[1]))
	assert.True(t, math.IsNaN(row[3]))
	assert.True(t, math.IsNaN(row[8]))
}

func TestValidateCoercesNumericStrings(t *testing.T) {
	req := validRequest()
	req["RM"] = "6.5"
	req["RAD"] = "4"
	req["TAX"] = json.Number("311")

	row, err := Default().Validate(req)
	require.NoError(t, err)
	assert.Equal(t, 6.5, row[5])
	assert.Equal(t, 4.0, row[8])
	assert.Equal(t, 311.0, row[9])
}

func TestValidateIgnoresUnknownFields(t *testing.T) {
	req := validRequest()
	req["MEDV"] = 24.0
	req["comment"] = "hello"

	_, err := Default().Validate(req)
	assert.NoError(t, err)
}

func TestValidateCollectsAllViolations(t *testing.T) {
	req := validRequest()
	delete(req, "RM")
	req["LSTAT"] = nil
	req["AGE"] = "old"
	req["RAD"] = 2.5

	_, err := Default().Validate(req)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"RM", "AGE", "RAD", "LSTAT"}, verrs.Fields())

	var missing *MissingRequiredFeatureError
	require.True(t, errors.As(verrs[0], &missing))
	assert.Equal(t, "missing", verrs[0].Type())

	var mismatch *TypeMismatchError
	require.True(t, errors.As(verrs[2], &mismatch))
	assert.Equal(t, "int", mismatch.Expected)
	assert.Equal(t, "int_parsing", mismatch.Type())
	assert.Equal(t, "float_parsing", verrs[1].Type())
}

func TestValidateRejectsBoolAndNonFinite(t *testing.T) {
	req := validRequest()
	req["CRIM"] = true
	req["NOX"] = "NaN"

	_, err := Default().Validate(req)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"CRIM", "NOX"}, verrs.Fields())
}

func TestOnlyMissing(t *testing.T) {
	req := validRequest()
	delete(req, "RM")
	delete(req, "LSTAT")

	_, err := Default().Validate(req)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.OnlyMissing("RM", "LSTAT"))
	assert.False(t, verrs.OnlyMissing("RM"))

	req["AGE"] = "x"
	_, err = Default().Validate(req)
	require.True(t, errors.As(err, &verrs))
	assert.False(t, verrs.OnlyMissing("RM", "LSTAT"))
}

func TestCheckColumns(t *testing.T) {
	c := Default()
	assert.NoError(t, c.CheckColumns(c.Names()))

	reversed := c.Names()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.NoError(t, c.CheckColumns(reversed))

	assert.Error(t, c.CheckColumns(c.Names()[:12]))
	assert.Error(t, c.CheckColumns(append(c.Names(), "MEDV")))
}

func TestVectorReorders(t *testing.T) {
	c, err := NewContract([]Feature{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	require.NoError(t, err)

	out := c.Vector(Row{1, 2, 3}, []string{"C", "A", "X"})
	assert.Equal(t, 3.0, out[0])
	assert.Equal(t, 1.0, out[1])
	assert.True(t, math.IsNaN(out[2]))
}

func TestValidate_PartialRowOnError(t *testing.T) {
	req := validRequest()
	delete(req, "RM")
	delete(req, "LSTAT")

	c := Default()
	row, err := c.Validate(req)
	require.Error(t, err)
	require.Len(t, row, c.Len())

	for i, name := range c.Names() {
		if name == "RM" || name == "LSTAT" {
			assert.True(t, math.IsNaN(row[i]), name)
			continue
		}
		assert.False(t, math.IsNaN(row[i]), name)
	}
}
