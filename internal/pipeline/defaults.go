package pipeline

import (
	"encoding/gob"
	"time"
)

func init() {
	gob.Register(&MedianImputer{})
	gob.Register(&StandardScaler{})
	gob.Register(&AutoML{})
	gob.Register(&LinearRegression{})
	gob.Register(&Ridge{})
	gob.Register(&KNeighborsRegressor{})
	gob.Register(&DecisionTreeRegressor{})
	gob.Register(&GradientBoostingRegressor{})
}

// NewDefault builds the unfitted impute → scale → AutoML pipeline.
func NewDefault(columns []string, cfg AutoMLConfig) *Pipeline {
	p, _ := New(columns, &MedianImputer{}, &StandardScaler{}, NewAutoML(cfg))
	return p
}

// BudgetFromSeconds converts a fractional seconds budget.
func BudgetFromSeconds(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
